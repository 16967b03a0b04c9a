package ports

import (
	"context"

	"github.com/alejandrodnm/polytrack/internal/domain"
)

// MarketProvider obtiene snapshots de mercados desde la API de Gamma.
type MarketProvider interface {
	// ListActiveMarkets devuelve los mercados abiertos actuales.
	// Un fallo de red o de payload se propaga como error; el caller lo
	// trata como "sin datos este ciclo", nunca como fatal.
	ListActiveMarkets(ctx context.Context) ([]domain.MarketSnapshot, error)

	// GetMarketByID devuelve un mercado concreto con su estado de
	// resolución, o nil si la API no lo conoce.
	GetMarketByID(ctx context.Context, id string) (*domain.MarketSnapshot, error)
}
