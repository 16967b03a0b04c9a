package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alejandrodnm/polytrack/internal/domain"
)

// StateFile implements ports.StateStore on a single JSON file. Every Save
// rewrites the whole snapshot; the temp-file rename keeps a crash from
// leaving a half-written state behind.
type StateFile struct {
	path string
}

// NewStateFile creates a store writing to path.
func NewStateFile(path string) *StateFile {
	return &StateFile{path: path}
}

// Save writes the full snapshot synchronously.
func (s *StateFile) Save(st domain.TrackerState) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("storage.StateFile.Save: mkdir: %w", err)
	}

	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("storage.StateFile.Save: marshal: %w", err)
	}
	b = append(b, '\n')

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("storage.StateFile.Save: write: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("storage.StateFile.Save: rename: %w", err)
	}
	return nil
}

// Load reads the last snapshot. found is false when no state was ever saved.
func (s *StateFile) Load() (*domain.TrackerState, bool, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("storage.StateFile.Load: read: %w", err)
	}

	var st domain.TrackerState
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, false, fmt.Errorf("storage.StateFile.Load: parse %q: %w", s.path, err)
	}
	return &st, true, nil
}
