package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPositionID(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 30, 45, 0, time.UTC)
	assert.Equal(t, "POS_20240315_093045", NewPositionID(now))
}

func TestPosition_JSONNullsWhileOpen(t *testing.T) {
	p := Position{
		ID:         "POS_20240315_093045",
		MarketID:   "12345",
		Side:       SideYes,
		EntryPrice: 0.30,
		Size:       10,
		Shares:     33.3333,
		Status:     StatusOpen,
	}

	b, err := json.Marshal(p)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))

	// Settlement fields must serialize as null until the market resolves.
	assert.Nil(t, raw["settlement_outcome"])
	assert.Nil(t, raw["pnl"])
	assert.NotContains(t, raw, "settled_at")
	assert.Equal(t, "OPEN", raw["status"])
}

func TestPosition_RealizedPnL(t *testing.T) {
	p := Position{Status: StatusOpen}
	assert.Zero(t, p.RealizedPnL())
	assert.True(t, p.IsOpen())

	pnl := 23.33
	p.PnL = &pnl
	p.Status = StatusSettled
	assert.InDelta(t, 23.33, p.RealizedPnL(), 1e-9)
	assert.False(t, p.IsOpen())
}

func TestOpportunity_Score(t *testing.T) {
	a := Opportunity{Edge: 0.05, Market: MarketSnapshot{Volume: 100000}}
	b := Opportunity{Edge: 0.05, Market: MarketSnapshot{Volume: 3200000}}

	// Same edge, 32x the volume → exactly 2x the score (32^0.2 = 2).
	assert.InDelta(t, a.Score()*2, b.Score(), 1e-9)
}

func TestMarketSnapshot_PricePair(t *testing.T) {
	m := MarketSnapshot{OutcomePrices: []float64{0.30, 0.70}}
	yes, no, ok := m.PricePair()
	require.True(t, ok)
	assert.InDelta(t, 0.30, yes, 1e-9)
	assert.InDelta(t, 0.70, no, 1e-9)

	_, _, ok = MarketSnapshot{}.PricePair()
	assert.False(t, ok)

	_, _, ok = MarketSnapshot{OutcomePrices: []float64{0.5}}.PricePair()
	assert.False(t, ok)
}

func TestTruncateQuestion(t *testing.T) {
	assert.Equal(t, "short", TruncateQuestion("short", "id", 40))
	assert.Equal(t, "a very long question that keeps goin...",
		TruncateQuestion("a very long question that keeps going and going", "id", 39))
	assert.Equal(t, "0x123", TruncateQuestion("", "0x123", 40))
}
