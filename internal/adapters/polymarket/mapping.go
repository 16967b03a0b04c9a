package polymarket

import (
	"encoding/json"

	"github.com/alejandrodnm/polytrack/internal/domain"
)

// mapMarkets convierte los DTOs de Gamma a domain.MarketSnapshot.
func mapMarkets(raw []gammaMarket) []domain.MarketSnapshot {
	markets := make([]domain.MarketSnapshot, 0, len(raw))
	for _, r := range raw {
		markets = append(markets, mapMarket(r))
	}
	return markets
}

// mapMarket convierte un gammaMarket DTO a domain.MarketSnapshot.
// Los campos numéricos ilegibles ya quedaron en 0 al decodificar y los
// precios malformados quedan en nil — el scanner descarta esos mercados
// sin abortar el batch.
func mapMarket(r gammaMarket) domain.MarketSnapshot {
	return domain.MarketSnapshot{
		ID:              r.ID,
		Question:        r.Question,
		Volume:          float64(r.Volume),
		Liquidity:       float64(r.Liquidity),
		OutcomePrices:   parseOutcomePrices(r.OutcomePrices),
		Resolved:        r.Resolved,
		ResolvedOutcome: r.ResolvedOutcome,
	}
}

// parseOutcomePrices acepta los dos encodings que usa Gamma:
//
//	"[\"0.30\", \"0.70\"]"  — string con array JSON dentro
//	["0.30", "0.70"]        — array de strings (o de números)
//
// Devuelve nil si no hay al menos dos precios parseables.
func parseOutcomePrices(raw json.RawMessage) []float64 {
	if len(raw) == 0 {
		return nil
	}

	data := []byte(raw)
	var inner string
	if err := json.Unmarshal(raw, &inner); err == nil {
		data = []byte(inner)
	}

	var nums []json.Number
	if err := json.Unmarshal(data, &nums); err != nil {
		return nil
	}
	if len(nums) < 2 {
		return nil
	}

	prices := make([]float64, 0, len(nums))
	for _, n := range nums {
		v, err := n.Float64()
		if err != nil {
			return nil
		}
		prices = append(prices, v)
	}
	return prices
}
