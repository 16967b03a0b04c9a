package notify_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alejandrodnm/polytrack/internal/adapters/notify"
	"github.com/alejandrodnm/polytrack/internal/domain"
)

func settledPosition(won bool, pnl float64) domain.Position {
	outcome := "No"
	if won {
		outcome = "Yes"
	}
	settledAt := time.Date(2026, 3, 14, 13, 0, 0, 0, time.UTC)
	return domain.Position{
		ID:                "POS_20260314_120000",
		OpenedAt:          time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
		MarketID:          "mkt-1",
		Question:          "Will BTC hit 100k?",
		Side:              domain.SideYes,
		EntryPrice:        0.30,
		Size:              10,
		Shares:            33.3333,
		Edge:              0.05,
		Status:            domain.StatusSettled,
		SettlementOutcome: &outcome,
		Won:               &won,
		PnL:               &pnl,
		SettledAt:         &settledAt,
	}
}

func TestConsole_PositionOpened(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	pos := settledPosition(false, 0)
	pos.Status = domain.StatusOpen
	n.PositionOpened(pos, 90.0)

	out := buf.String()
	assert.Contains(t, out, "OPEN POS_20260314_120000")
	assert.Contains(t, out, "Yes @ 0.3000")
	assert.Contains(t, out, "Will BTC hit 100k?")
	assert.Contains(t, out, "avail $90.00")
}

func TestConsole_PositionSettled(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	n.PositionSettled(settledPosition(true, 23.33), 123.33)

	out := buf.String()
	assert.Contains(t, out, "SETTLED POS_20260314_120000 WON")
	assert.Contains(t, out, "pnl $+23.33")
	assert.Contains(t, out, "capital $123.33")
}

func TestConsole_StatusReportCompact(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, false)

	n.StatusReport(domain.TrackerState{
		Capital:            123.33,
		AvailableCapital:   113.33,
		RealizedPnL:        23.33,
		OpenPositionsCount: 1,
		SettledTradesCount: 1,
		Wins:               1,
	})

	out := buf.String()
	assert.Contains(t, out, "STATUS cap $123.33")
	assert.Contains(t, out, "1 settled (1W/0L 100%)")
	assert.NotContains(t, out, "Entry") // sin tabla en modo compacto
}

func TestConsole_FinalReport(t *testing.T) {
	var buf bytes.Buffer
	n := notify.NewConsoleWriter(&buf, true)

	st := domain.TrackerState{
		Capital:            113.33,
		InitialCapital:     100,
		RealizedPnL:        13.33,
		SettledTradesCount: 2,
		Wins:               1,
		Losses:             1,
		StartTime:          time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
	settled := []domain.Position{settledPosition(true, 23.33), settledPosition(false, -10)}

	n.FinalReport(st, settled)

	out := buf.String()
	assert.Contains(t, out, "FINAL REPORT")
	assert.Contains(t, out, "$100.00 -> $113.33 (+13.3%)")
	assert.Contains(t, out, "50% win rate")
	assert.Contains(t, out, "WON")
	assert.Contains(t, out, "LOST")
}
