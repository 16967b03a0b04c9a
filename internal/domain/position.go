package domain

import "time"

// PositionStatus represents the lifecycle of a tracked position.
// OPEN → SETTLED is the only transition and it is irreversible.
type PositionStatus string

const (
	StatusOpen    PositionStatus = "OPEN"
	StatusSettled PositionStatus = "SETTLED"
)

// Side labels for a binary market.
const (
	SideYes = "Yes"
	SideNo  = "No"
)

// Position is a recorded hypothetical trade awaiting real-world settlement.
// Entry fields are immutable after opening; settlement fields stay nil until
// the underlying market reports a final resolution. Outcomes are never
// simulated — PnL exists only once the market actually settles.
type Position struct {
	ID         string    `json:"id"`
	OpenedAt   time.Time `json:"opened_at"`
	MarketID   string    `json:"market_id"`
	Question   string    `json:"question"`
	Side       string    `json:"side"`
	EntryPrice float64   `json:"entry_price"`
	Size       float64   `json:"position_size"`
	Shares     float64   `json:"shares"`
	Edge       float64   `json:"edge"`

	Status            PositionStatus `json:"status"`
	SettlementOutcome *string        `json:"settlement_outcome"`
	Won               *bool          `json:"won,omitempty"`
	PnL               *float64       `json:"pnl"`
	SettledAt         *time.Time     `json:"settled_at,omitempty"`
}

// NewPositionID derives a position id from the open timestamp.
// The 60s spacing between opens guarantees uniqueness within a run.
func NewPositionID(now time.Time) string {
	return "POS_" + now.UTC().Format("20060102_150405")
}

// IsOpen reports whether the position is still awaiting settlement.
func (p Position) IsOpen() bool {
	return p.Status == StatusOpen
}

// RealizedPnL returns the settled PnL, or 0 for open positions.
func (p Position) RealizedPnL() float64 {
	if p.PnL == nil {
		return 0
	}
	return *p.PnL
}

// TradeEventType distinguishes the two events a position emits to the trade log.
type TradeEventType string

const (
	EventOpened  TradeEventType = "OPENED"
	EventSettled TradeEventType = "SETTLED"
)

// TradeEvent is one line of the append-only trade log. A position appears
// twice — once OPENED, once SETTLED — so consumers must fold by position id
// and keep the latest event.
type TradeEvent struct {
	EventID  string         `json:"event_id"`
	Type     TradeEventType `json:"event"`
	LoggedAt time.Time      `json:"logged_at"`
	Position Position       `json:"position"`
}
