package domain

import "time"

// TrackerMode tags the persisted state file so external consumers can tell
// which program wrote it.
const TrackerMode = "REAL_SETTLEMENT_TRACKER"

// TrackerState is the full persisted snapshot of the ledger. It is written
// wholesale after every mutation; the durability unit is one snapshot, not
// an individual event.
type TrackerState struct {
	Mode                string     `json:"mode"`
	Capital             float64    `json:"capital"`
	AvailableCapital    float64    `json:"available_capital"`
	InitialCapital      float64    `json:"initial_capital"`
	RealizedPnL         float64    `json:"realized_pnl"`
	UnrealizedPositions float64    `json:"unrealized_positions"`
	OpenPositionsCount  int        `json:"open_positions_count"`
	SettledTradesCount  int        `json:"settled_trades_count"`
	Wins                int        `json:"wins"`
	Losses              int        `json:"losses"`
	StartTime           time.Time  `json:"start_time"`
	LastUpdate          time.Time  `json:"last_update"`
	OpenPositions       []Position `json:"open_positions"`
	RecentSettled       []Position `json:"recent_settled"`
	TradedMarketIDs     []string   `json:"traded_market_ids"`
}

// WinRate devuelve el porcentaje de trades ganados (0–100).
func (s TrackerState) WinRate() float64 {
	if s.SettledTradesCount == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.SettledTradesCount) * 100
}
