package history

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/trustgate/internal/domain"
	"github.com/doeshing/trustgate/internal/ports"
)

// SQLiteStore persists execution records in a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteStore creates (or opens) the database at path. When the
// database cannot be opened the store degrades to a jsonl file next to
// it rather than failing.
func NewSQLiteStore(path string) ports.HistoryRepository {
	_ = os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return NewFileStore(fallbackPath(path))
	}
	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		return NewFileStore(fallbackPath(path))
	}
	return store
}

func fallbackPath(dbPath string) string {
	return strings.TrimSuffix(dbPath, filepath.Ext(dbPath)) + ".jsonl"
}

func (s *SQLiteStore) init() error {
	if s.db == nil {
		return os.ErrInvalid
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT,
		intent TEXT,
		command TEXT,
		success INTEGER,
		exit_code INTEGER,
		duration_ms INTEGER,
		timed_out INTEGER
	);`)
	return err
}

// Save inserts a new record.
func (s *SQLiteStore) Save(record domain.ExecutionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`INSERT INTO runs
		(timestamp, intent, command, success, exit_code, duration_ms, timed_out)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.Timestamp.Format(time.RFC3339),
		record.Intent,
		record.Command,
		boolToInt(record.Success),
		record.ExitCode,
		record.DurationMS,
		boolToInt(record.TimedOut),
	)
	return err
}

// Records returns entries most recent first, optionally only failures.
func (s *SQLiteStore) Records(limit int, failuresOnly bool) ([]domain.ExecutionRecord, error) {
	builder := strings.Builder{}
	builder.WriteString("SELECT timestamp, intent, command, success, exit_code, duration_ms, timed_out FROM runs")
	var args []interface{}
	if failuresOnly {
		builder.WriteString(" WHERE success = 0")
	}
	builder.WriteString(" ORDER BY datetime(timestamp) DESC")
	if limit > 0 {
		builder.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	rows, err := s.db.Query(builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.ExecutionRecord
	for rows.Next() {
		var rec domain.ExecutionRecord
		var ts string
		var success, timedOut int
		if err := rows.Scan(&ts, &rec.Intent, &rec.Command, &success, &rec.ExitCode, &rec.DurationMS, &timedOut); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.Timestamp = t
		}
		rec.Success = success == 1
		rec.TimedOut = timedOut == 1
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Clear deletes all history entries.
func (s *SQLiteStore) Clear() error {
	_, err := s.db.Exec("DELETE FROM runs")
	return err
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var _ ports.HistoryRepository = (*SQLiteStore)(nil)
