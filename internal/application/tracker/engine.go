package tracker

import (
	"context"
	"log/slog"
	"time"

	"github.com/alejandrodnm/polytrack/internal/application/ledger"
	"github.com/alejandrodnm/polytrack/internal/domain"
	"github.com/alejandrodnm/polytrack/internal/ports"
)

// OpportunityFinder is the minimal interface the engine needs from the
// scanner. It decouples the loop from the concrete *scanner.Scanner.
type OpportunityFinder interface {
	Find(markets []domain.MarketSnapshot, excluded map[string]bool) *domain.Opportunity
}

// Config holds the loop timing settings.
type Config struct {
	PollInterval            time.Duration
	SettlementCheckInterval time.Duration
	StatusReportInterval    time.Duration
}

// Engine drives the polling loop: scan for one opportunity per cycle, check
// open positions for real-world settlement, persist, report. Every cycle
// error is logged and absorbed — only context cancellation or the session
// deadline stop the loop.
type Engine struct {
	markets  ports.MarketProvider
	scanner  OpportunityFinder
	ledger   *ledger.Ledger
	archive  ports.TradeArchive
	notifier ports.Notifier
	cfg      Config

	lastSettlementCheck time.Time
	lastStatusReport    time.Time
}

// New creates an engine. archive may be nil; archiving is best-effort.
func New(
	markets ports.MarketProvider,
	scanner OpportunityFinder,
	led *ledger.Ledger,
	archive ports.TradeArchive,
	notifier ports.Notifier,
	cfg Config,
) *Engine {
	return &Engine{
		markets:  markets,
		scanner:  scanner,
		ledger:   led,
		archive:  archive,
		notifier: notifier,
		cfg:      cfg,
	}
}

// Run executes the polling loop until the context is cancelled or the
// session duration elapses, then emits the final report. Open positions are
// left intact on exit; the next run restores and keeps settling them.
func (e *Engine) Run(ctx context.Context, duration time.Duration) error {
	start := time.Now()
	deadline := start.Add(duration)

	slog.Info("tracker started",
		"duration", duration,
		"poll_interval", e.cfg.PollInterval,
		"settlement_check", e.cfg.SettlementCheckInterval,
	)

	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	e.cycle(ctx, start)

	for {
		select {
		case <-ctx.Done():
			slog.Info("tracker stopped (signal)", "open_positions", len(e.ledger.OpenPositions()))
			e.finalReport(ctx)
			return nil
		case now := <-ticker.C:
			if now.After(deadline) {
				slog.Info("session duration reached", "elapsed", now.Sub(start).Round(time.Second))
				e.finalReport(ctx)
				return nil
			}
			e.cycle(ctx, now)
		}
	}
}

// cycle runs one poll: settlement check (rate-limited to its own interval),
// market scan, at most one open, snapshot persist, periodic status report.
func (e *Engine) cycle(ctx context.Context, now time.Time) {
	if e.lastSettlementCheck.IsZero() || now.Sub(e.lastSettlementCheck) >= e.cfg.SettlementCheckInterval {
		e.lastSettlementCheck = now
		settled, err := e.ledger.CheckSettlements(ctx, e.markets, now)
		if err != nil {
			slog.Warn("persisting settlements failed", "err", err)
		}
		for _, pos := range settled {
			e.archiveSettled(ctx, *pos)
			e.notifier.PositionSettled(*pos, e.ledger.Capital())
		}
	}

	markets, err := e.markets.ListActiveMarkets(ctx)
	if err != nil {
		// No data this cycle; the next tick retries.
		slog.Warn("market scan failed", "err", err)
	} else if opp := e.scanner.Find(markets, e.ledger.TradedMarketIDs()); opp != nil {
		pos, err := e.ledger.Open(opp, now)
		if err != nil {
			slog.Warn("persisting open position failed", "err", err)
		}
		if pos != nil {
			e.notifier.PositionOpened(*pos, e.ledger.Available())
		}
	}

	if err := e.ledger.Persist(now); err != nil {
		slog.Warn("state save failed", "err", err)
	}

	if e.lastStatusReport.IsZero() {
		e.lastStatusReport = now
	} else if now.Sub(e.lastStatusReport) >= e.cfg.StatusReportInterval {
		e.lastStatusReport = now
		e.notifier.StatusReport(e.ledger.Snapshot(now))
	}
}

// archiveSettled copies a settled trade into the durable archive. Failures
// only cost history depth; the state file still has the recent tail.
func (e *Engine) archiveSettled(ctx context.Context, pos domain.Position) {
	if e.archive == nil {
		return
	}
	if err := e.archive.SaveSettled(ctx, pos); err != nil {
		slog.Warn("archiving settled trade failed", "err", err, "id", pos.ID)
	}
}

func (e *Engine) finalReport(ctx context.Context) {
	now := time.Now()
	if err := e.ledger.Persist(now); err != nil {
		slog.Warn("final state save failed", "err", err)
	}
	e.notifier.FinalReport(e.ledger.Snapshot(now), e.ledger.SettledTrades())
}
