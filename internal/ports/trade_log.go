package ports

import "github.com/alejandrodnm/polytrack/internal/domain"

// TradeLog es el event stream append-only de posiciones: cada posición
// aparece dos veces, una OPENED y una SETTLED.
type TradeLog interface {
	Append(t domain.TradeEventType, pos domain.Position) error
}
