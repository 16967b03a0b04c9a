package domain

import "math"

// Heuristic constants for the edge estimate. The edge is a proxy for
// mispricing magnitude derived from market inefficiency, not a calibrated
// probability.
const (
	baseEdge           = 0.02
	inefficiencyWeight = 0.05
	maxEdge            = 0.10
)

// MarketEfficiency returns min(liquidity/volume, 1). A market where the
// resting liquidity is small relative to traded volume is treated as less
// efficient, hence more likely to be mispriced.
func MarketEfficiency(liquidity, volume float64) float64 {
	if volume <= 0 {
		return 0
	}
	return math.Min(liquidity/volume, 1.0)
}

// EdgeEstimate computes the heuristic edge for a market, clamped to
// [minEdge, 0.10].
func EdgeEstimate(liquidity, volume, minEdge float64) float64 {
	edge := baseEdge + (1-MarketEfficiency(liquidity, volume))*inefficiencyWeight
	return math.Max(minEdge, math.Min(edge, maxEdge))
}

// KellyFraction returns the capped fraction of available capital to commit:
// min(edge * multiplier, cap).
func KellyFraction(edge, multiplier, cap float64) float64 {
	return math.Min(edge*multiplier, cap)
}

// PositionSize sizes a position from available capital and the kelly
// fraction, clamped to [minSize, available * maxFraction].
func PositionSize(available, kelly, minSize, maxFraction float64) float64 {
	size := available * kelly
	return math.Max(minSize, math.Min(size, available*maxFraction))
}

// Round2 rounds to cents — used for capital amounts and PnL.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round4 rounds to four decimals — used for prices, shares and edges.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
