package ports

import (
	"context"

	"github.com/alejandrodnm/polytrack/internal/domain"
)

// TradeArchive guarda el histórico completo de trades liquidados.
// El state file solo retiene los últimos 5; el archive es la fuente
// duradera para el resto.
type TradeArchive interface {
	SaveSettled(ctx context.Context, pos domain.Position) error
	ListSettled(ctx context.Context) ([]domain.Position, error)
}
