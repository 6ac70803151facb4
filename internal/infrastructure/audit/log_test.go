package audit_test

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/doeshing/trustgate/internal/infrastructure/audit"
)

type noopLogger struct{}

func (noopLogger) Debug(string, map[string]interface{})        {}
func (noopLogger) Info(string, map[string]interface{})         {}
func (noopLogger) Warn(string, map[string]interface{})         {}
func (noopLogger) Error(string, error, map[string]interface{}) {}

func TestRecordAppendsOneLinePerEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	log := audit.NewLog(path, noopLogger{})

	log.Record("LEARN_CMD", map[string]interface{}{"type": "TEST_CMD", "command": "pytest"})
	log.Record("VERIFY_CMD", map[string]interface{}{"type": "TEST_CMD", "result": "passed"})

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open audit log: %v", err)
	}
	defer file.Close()

	var events []map[string]interface{}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry map[string]interface{}
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", len(events)+1, err)
		}
		events = append(events, entry)
	}

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0]["event"] != "LEARN_CMD" || events[1]["event"] != "VERIFY_CMD" {
		t.Errorf("events out of order: %v then %v", events[0]["event"], events[1]["event"])
	}
	for i, entry := range events {
		if entry["timestamp"] == "" || entry["timestamp"] == nil {
			t.Errorf("event %d missing timestamp", i)
		}
	}
	if events[0]["command"] != "pytest" {
		t.Errorf("event fields not preserved: %v", events[0])
	}
}

func TestRecordCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".trustgate", "audit.jsonl")
	log := audit.NewLog(path, noopLogger{})

	log.Record("CLEAR_CMD", map[string]interface{}{"type": "LINT_CMD"})

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("audit file not created: %v", err)
	}
}

func TestRecordNeverOverwritesExistingLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	log := audit.NewLog(path, noopLogger{})

	log.Record("LEARN_CMD", map[string]interface{}{"type": "TEST_CMD"})
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read audit log: %v", err)
	}

	log.Record("REJECT_CMD", map[string]interface{}{"command": "rm -rf /"})
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read audit log: %v", err)
	}

	if len(second) <= len(first) {
		t.Error("second event did not extend the log")
	}
	if string(second[:len(first)]) != string(first) {
		t.Error("existing audit lines were rewritten")
	}
}
