// Package history records trusted command runs for later inspection.
// The backend is chosen by configuration: sqlite (default), a plain
// jsonl file, or disabled entirely.
package history

import (
	"path/filepath"

	"github.com/doeshing/trustgate/internal/domain"
	"github.com/doeshing/trustgate/internal/ports"
)

// NewStore returns the repository for the configured backend, rooted in
// the project data directory.
func NewStore(dataDir, backend string) ports.HistoryRepository {
	switch backend {
	case "off":
		return noopStore{}
	case "jsonl":
		return NewFileStore(filepath.Join(dataDir, "history.jsonl"))
	default:
		return NewSQLiteStore(filepath.Join(dataDir, "history.db"))
	}
}

// noopStore discards every record; used when history is disabled.
type noopStore struct{}

func (noopStore) Save(domain.ExecutionRecord) error { return nil }
func (noopStore) Records(int, bool) ([]domain.ExecutionRecord, error) {
	return nil, nil
}
func (noopStore) Path() string { return "" }
func (noopStore) Clear() error { return nil }

var _ ports.HistoryRepository = noopStore{}
