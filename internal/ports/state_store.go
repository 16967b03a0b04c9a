package ports

import "github.com/alejandrodnm/polytrack/internal/domain"

// StateStore persiste el snapshot completo del ledger.
type StateStore interface {
	// Save escribe el snapshot entero de forma síncrona.
	Save(st domain.TrackerState) error

	// Load devuelve el último snapshot. found es false si nunca se guardó.
	Load() (st *domain.TrackerState, found bool, err error)
}
