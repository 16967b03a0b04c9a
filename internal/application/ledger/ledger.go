package ledger

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sort"
	"time"

	"github.com/alejandrodnm/polytrack/internal/domain"
	"github.com/alejandrodnm/polytrack/internal/ports"
)

// Config holds the capital-accounting and rate-limit settings.
type Config struct {
	InitialCapital      float64
	MinTradeSpacing     time.Duration
	MaxTradesPerHour    int
	MinPositionSize     float64
	MaxPositionFraction float64
	KellyMultiplier     float64
	KellyCap            float64
}

// Ledger owns capital accounting, the open-position set, the settled-trade
// history and the traded-market exclusion set. It is single-writer: all
// mutations happen sequentially on the polling loop, so there is no locking.
//
// Accounting invariants, maintained after every settlement:
//
//	capital   = initial + Σ pnl(settled)
//	available = capital − Σ size(open)
//
// A position lives in exactly one of open/settled; OPEN → SETTLED is the
// only transition and it is irreversible.
type Ledger struct {
	cfg   Config
	store ports.StateStore
	log   ports.TradeLog

	capital   float64
	available float64
	open      []*domain.Position
	settled   []*domain.Position
	traded    map[string]bool

	startTime       time.Time
	lastTradeAt     time.Time
	hourlyTrades    int
	hourWindowStart time.Time
}

// New creates a ledger with the full initial capital available.
func New(cfg Config, store ports.StateStore, log ports.TradeLog, now time.Time) *Ledger {
	return &Ledger{
		cfg:             cfg,
		store:           store,
		log:             log,
		capital:         cfg.InitialCapital,
		available:       cfg.InitialCapital,
		traded:          make(map[string]bool),
		startTime:       now,
		hourWindowStart: now,
	}
}

// Restore applies a previously persisted snapshot. Capital comes from the
// file — zero is a legitimate balance, not an absent field; only a snapshot
// with no activity at all falls back to the initial configuration. Available
// is recomputed from capital minus the restored open sizes, so the
// accounting invariant holds by construction. The settled history comes
// from the archive when available; the snapshot itself only retains the
// last five. Rate-limit counters are not persisted and restart fresh.
func (l *Ledger) Restore(st *domain.TrackerState, settled []domain.Position) {
	if st == nil {
		return
	}

	l.open = l.open[:0]
	for i := range st.OpenPositions {
		pos := st.OpenPositions[i]
		l.open = append(l.open, &pos)
	}

	if len(settled) == 0 {
		settled = st.RecentSettled
	}
	l.settled = l.settled[:0]
	for i := range settled {
		pos := settled[i]
		l.settled = append(l.settled, &pos)
	}

	for _, id := range st.TradedMarketIDs {
		l.traded[id] = true
	}

	l.capital = st.Capital
	if st.Capital == 0 && st.SettledTradesCount == 0 && len(l.open) == 0 {
		// Snapshot without any activity: written before the first cycle.
		l.capital = l.cfg.InitialCapital
	}
	var locked float64
	for _, p := range l.open {
		locked += p.Size
	}
	l.available = domain.Round2(l.capital - locked)

	slog.Info("loaded state",
		"open", len(l.open),
		"settled", len(l.settled),
		"capital", l.capital,
		"available", l.available,
	)
}

// Open records a new position for the opportunity. Rejections (rate limits,
// sizing) return (nil, nil) — they are normal outcomes, not errors. A non-nil
// error means the position was opened but persisting it failed; the caller
// logs it and the next snapshot write repairs the file.
func (l *Ledger) Open(opp *domain.Opportunity, now time.Time) (*domain.Position, error) {
	// Rate limit: minimum spacing between opens.
	if !l.lastTradeAt.IsZero() && now.Sub(l.lastTradeAt) < l.cfg.MinTradeSpacing {
		return nil, nil
	}

	// Rolling hourly window.
	if now.Sub(l.hourWindowStart) > time.Hour {
		l.hourlyTrades = 0
		l.hourWindowStart = now
	}
	if l.hourlyTrades >= l.cfg.MaxTradesPerHour {
		return nil, nil
	}

	kelly := domain.KellyFraction(opp.Edge, l.cfg.KellyMultiplier, l.cfg.KellyCap)
	size := domain.Round2(domain.PositionSize(
		l.available, kelly, l.cfg.MinPositionSize, l.cfg.MaxPositionFraction))

	// Unreachable given the clamp above, checked anyway.
	if size > l.available {
		return nil, nil
	}

	pos := &domain.Position{
		ID:         domain.NewPositionID(now),
		OpenedAt:   now,
		MarketID:   opp.Market.ID,
		Question:   opp.Market.Question,
		Side:       opp.Side,
		EntryPrice: domain.Round4(opp.Price),
		Size:       size,
		Shares:     domain.Round4(size / opp.Price),
		Edge:       domain.Round4(opp.Edge),
		Status:     domain.StatusOpen,
	}

	l.available = domain.Round2(l.available - size)
	l.lastTradeAt = now
	l.hourlyTrades++
	l.traded[pos.MarketID] = true
	l.open = append(l.open, pos)

	slog.Info("position opened",
		"id", pos.ID,
		"side", pos.Side,
		"price", pos.EntryPrice,
		"size", pos.Size,
		"shares", pos.Shares,
		"edge", pos.Edge,
		"market", domain.TruncateQuestion(pos.Question, pos.MarketID, 50),
		"available", l.available,
	)

	return pos, errors.Join(l.Persist(now), l.log.Append(domain.EventOpened, *pos))
}

// CheckSettlements queries resolution status for every open position and
// settles the ones whose market has resolved. It iterates a stable snapshot
// of the open set taken up front, so settling mid-pass never skips a
// position. Failed or unresolved lookups leave the position untouched — it
// is retried on the next check, indefinitely. Returns the positions settled
// in this pass; the error aggregates persistence failures only.
func (l *Ledger) CheckSettlements(ctx context.Context, markets ports.MarketProvider, now time.Time) ([]*domain.Position, error) {
	if len(l.open) == 0 {
		return nil, nil
	}

	slog.Debug("checking open positions", "count", len(l.open))

	var settled []*domain.Position
	var errs []error
	for _, pos := range slices.Clone(l.open) {
		m, err := markets.GetMarketByID(ctx, pos.MarketID)
		if err != nil {
			slog.Debug("settlement lookup failed", "market_id", pos.MarketID, "err", err)
			continue
		}
		if m == nil || !m.Resolved || m.ResolvedOutcome == "" {
			continue
		}
		if err := l.settle(pos, m.ResolvedOutcome, now); err != nil {
			errs = append(errs, err)
		}
		settled = append(settled, pos)
	}
	return settled, errors.Join(errs...)
}

// settle resolves a position against the market's real outcome. A winning
// side pays out one unit per share; a loss pays nothing. An outcome label
// matching neither side settles as a loss — the label is deliberately not
// validated, mirroring how the market reports it.
func (l *Ledger) settle(pos *domain.Position, outcome string, now time.Time) error {
	won := pos.Side == outcome

	payout := 0.0
	if won {
		payout = pos.Shares
	}
	pnl := domain.Round2(payout - pos.Size)

	l.capital = domain.Round2(l.capital + pnl)
	l.available = domain.Round2(l.available + payout)

	outcomeCopy := outcome
	settledAt := now
	pos.Status = domain.StatusSettled
	pos.SettlementOutcome = &outcomeCopy
	pos.Won = &won
	pos.PnL = &pnl
	pos.SettledAt = &settledAt

	// The move open → settled is a single sequential step: the position is
	// never visible in both collections.
	l.open = slices.DeleteFunc(l.open, func(p *domain.Position) bool { return p == pos })
	l.settled = append(l.settled, pos)

	slog.Info("position settled",
		"id", pos.ID,
		"won", won,
		"side", pos.Side,
		"outcome", outcome,
		"pnl", pnl,
		"capital", l.capital,
		"market", domain.TruncateQuestion(pos.Question, pos.MarketID, 40),
	)

	return errors.Join(l.Persist(now), l.log.Append(domain.EventSettled, *pos))
}

// Persist writes the full state snapshot through the store.
func (l *Ledger) Persist(now time.Time) error {
	return l.store.Save(l.Snapshot(now))
}

// Snapshot builds the persisted view of the ledger.
func (l *Ledger) Snapshot(now time.Time) domain.TrackerState {
	var realized, unrealized float64
	wins, losses := 0, 0
	for _, p := range l.settled {
		pnl := p.RealizedPnL()
		realized += pnl
		switch {
		case pnl > 0:
			wins++
		case pnl < 0:
			losses++
		}
	}
	for _, p := range l.open {
		unrealized += p.Size
	}

	open := make([]domain.Position, len(l.open))
	for i, p := range l.open {
		open[i] = *p
	}

	recentFrom := 0
	if len(l.settled) > 5 {
		recentFrom = len(l.settled) - 5
	}
	recent := make([]domain.Position, 0, 5)
	for _, p := range l.settled[recentFrom:] {
		recent = append(recent, *p)
	}

	traded := make([]string, 0, len(l.traded))
	for id := range l.traded {
		traded = append(traded, id)
	}
	sort.Strings(traded)

	return domain.TrackerState{
		Mode:                domain.TrackerMode,
		Capital:             domain.Round2(l.capital),
		AvailableCapital:    domain.Round2(l.available),
		InitialCapital:      l.cfg.InitialCapital,
		RealizedPnL:         domain.Round2(realized),
		UnrealizedPositions: domain.Round2(unrealized),
		OpenPositionsCount:  len(l.open),
		SettledTradesCount:  len(l.settled),
		Wins:                wins,
		Losses:              losses,
		StartTime:           l.startTime,
		LastUpdate:          now,
		OpenPositions:       open,
		RecentSettled:       recent,
		TradedMarketIDs:     traded,
	}
}

// Capital returns the realized capital.
func (l *Ledger) Capital() float64 { return l.capital }

// Available returns the capital not locked in open positions.
func (l *Ledger) Available() float64 { return l.available }

// OpenPositions returns a copy of the open set in insertion order.
func (l *Ledger) OpenPositions() []domain.Position {
	out := make([]domain.Position, len(l.open))
	for i, p := range l.open {
		out[i] = *p
	}
	return out
}

// SettledTrades returns a copy of the settled history in settlement order.
func (l *Ledger) SettledTrades() []domain.Position {
	out := make([]domain.Position, len(l.settled))
	for i, p := range l.settled {
		out[i] = *p
	}
	return out
}

// TradedMarketIDs returns a copy of the exclusion set for the scanner.
func (l *Ledger) TradedMarketIDs() map[string]bool {
	out := make(map[string]bool, len(l.traded))
	for id := range l.traded {
		out[id] = true
	}
	return out
}
