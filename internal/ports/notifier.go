package ports

import "github.com/alejandrodnm/polytrack/internal/domain"

// Notifier presenta la actividad del tracker al usuario.
type Notifier interface {
	PositionOpened(pos domain.Position, available float64)
	PositionSettled(pos domain.Position, capital float64)
	StatusReport(st domain.TrackerState)
	FinalReport(st domain.TrackerState, settled []domain.Position)
}
