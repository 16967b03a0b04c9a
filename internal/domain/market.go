package domain

// MarketSnapshot es la vista de un mercado binario tal como la devuelve Gamma.
// OutcomePrices queda nil si la API no devolvió precios parseables.
type MarketSnapshot struct {
	ID            string
	Question      string
	Volume        float64
	Liquidity     float64
	OutcomePrices []float64 // [yes, no]

	// Solo presentes en GetMarketByID.
	Resolved        bool
	ResolvedOutcome string
}

// PricePair devuelve los precios YES/NO del mercado.
// ok es false si faltan precios o no hay exactamente un par parseable.
func (m MarketSnapshot) PricePair() (yes, no float64, ok bool) {
	if len(m.OutcomePrices) < 2 {
		return 0, 0, false
	}
	return m.OutcomePrices[0], m.OutcomePrices[1], true
}

// TruncateQuestion devuelve la pregunta truncada a maxLen caracteres.
// Si la pregunta está vacía usa los primeros caracteres del market ID como fallback.
func TruncateQuestion(question, marketID string, maxLen int) string {
	q := question
	if q == "" {
		if len(marketID) > 20 {
			q = marketID[:20] + "..."
		} else {
			q = marketID
		}
	}
	if len(q) > maxLen {
		q = q[:maxLen-3] + "..."
	}
	return q
}
