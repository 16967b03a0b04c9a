package scanner

import (
	"github.com/alejandrodnm/polytrack/internal/domain"
)

// Config contiene los umbrales de filtrado del scanner.
type Config struct {
	MinEdge       float64
	VolumeFloor   float64
	PriceBandLow  float64
	PriceBandHigh float64
}

// Scanner filtra y rankea snapshots de mercados. Es una función pura sobre
// el batch y el set de exclusión: no tiene estado ni efectos.
type Scanner struct {
	cfg Config
}

// New crea un Scanner con los umbrales dados.
func New(cfg Config) *Scanner {
	return &Scanner{cfg: cfg}
}

// Find devuelve el mejor candidato del batch, o nil si ningún mercado pasa
// los filtros. El ranking es edge * volume^0.2; en caso de empate gana el
// primero en orden de iteración.
func (s *Scanner) Find(markets []domain.MarketSnapshot, excluded map[string]bool) *domain.Opportunity {
	var best *domain.Opportunity
	for _, m := range markets {
		if excluded[m.ID] {
			continue
		}
		opp := s.analyze(m)
		if opp == nil {
			continue
		}
		if best == nil || opp.Score() > best.Score() {
			best = opp
		}
	}
	return best
}

// analyze aplica los filtros en orden y calcula el edge de un mercado.
// Cualquier dato ausente o malformado descarta el mercado, nunca aborta
// el batch.
func (s *Scanner) analyze(m domain.MarketSnapshot) *domain.Opportunity {
	if m.Volume < s.cfg.VolumeFloor {
		return nil
	}

	yesPrice, noPrice, ok := m.PricePair()
	if !ok {
		return nil
	}

	// Cerca de 0 o de 1 el mercado ya decidió: el edge estimado no es fiable.
	if yesPrice <= s.cfg.PriceBandLow || yesPrice >= s.cfg.PriceBandHigh {
		return nil
	}

	edge := domain.EdgeEstimate(m.Liquidity, m.Volume, s.cfg.MinEdge)
	if edge < s.cfg.MinEdge {
		return nil
	}

	side, price := domain.SideYes, yesPrice
	if yesPrice >= 0.5 {
		side, price = domain.SideNo, noPrice
	}

	return &domain.Opportunity{
		Market: m,
		Side:   side,
		Price:  price,
		Edge:   edge,
	}
}
