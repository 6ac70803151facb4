package history_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/doeshing/trustgate/internal/domain"
	"github.com/doeshing/trustgate/internal/infrastructure/history"
)

func record(intent string, success bool, at time.Time) domain.ExecutionRecord {
	return domain.ExecutionRecord{
		Timestamp:  at,
		Intent:     intent,
		Command:    "pytest tests/",
		Success:    success,
		ExitCode:   0,
		DurationMS: 1200,
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := history.NewFileStore(filepath.Join(t.TempDir(), "history.jsonl"))
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if err := store.Save(record("TEST_CMD", i != 1, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	records, err := store.Records(0, false)
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if !records[0].Timestamp.After(records[2].Timestamp) {
		t.Error("records not ordered most recent first")
	}
}

func TestFileStoreFiltersFailures(t *testing.T) {
	store := history.NewFileStore(filepath.Join(t.TempDir(), "history.jsonl"))
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := store.Save(record("TEST_CMD", true, base)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save(record("LINT_CMD", false, base.Add(time.Minute))); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	records, err := store.Records(0, true)
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(records) != 1 || records[0].Intent != "LINT_CMD" {
		t.Errorf("failures = %+v, want only the failed lint run", records)
	}
}

func TestFileStoreHonorsLimit(t *testing.T) {
	store := history.NewFileStore(filepath.Join(t.TempDir(), "history.jsonl"))
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		if err := store.Save(record("TEST_CMD", true, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	records, err := store.Records(2, false)
	if err != nil {
		t.Fatalf("Records() error = %v", err)
	}
	if len(records) != 2 {
		t.Errorf("got %d records, want 2", len(records))
	}
}

func TestFileStoreEmptyAndCleared(t *testing.T) {
	store := history.NewFileStore(filepath.Join(t.TempDir(), "history.jsonl"))

	records, err := store.Records(0, false)
	if err != nil || records != nil {
		t.Errorf("Records() on empty store = %v, %v, want nil, nil", records, err)
	}

	if err := store.Save(record("TEST_CMD", true, time.Now())); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	records, err = store.Records(0, false)
	if err != nil || len(records) != 0 {
		t.Errorf("Records() after Clear = %v, %v, want empty", records, err)
	}
}

func TestNewStoreSelectsBackend(t *testing.T) {
	dir := t.TempDir()

	if got := history.NewStore(dir, "off").Path(); got != "" {
		t.Errorf("off backend Path() = %q, want empty", got)
	}
	if got := history.NewStore(dir, "jsonl").Path(); filepath.Base(got) != "history.jsonl" {
		t.Errorf("jsonl backend Path() = %q, want history.jsonl", got)
	}
	if got := history.NewStore(dir, "sqlite").Path(); filepath.Base(got) != "history.db" {
		t.Errorf("sqlite backend Path() = %q, want history.db", got)
	}
}
