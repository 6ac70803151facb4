package ledger_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/doeshing/trustgate/internal/domain"
	"github.com/doeshing/trustgate/internal/infrastructure/ledger"
)

type recordedEvent struct {
	event  string
	fields map[string]interface{}
}

// spyAudit captures audit events in order.
type spyAudit struct {
	events []recordedEvent
}

func (s *spyAudit) Record(event string, fields map[string]interface{}) {
	s.events = append(s.events, recordedEvent{event: event, fields: fields})
}

func (s *spyAudit) names() []string {
	names := make([]string, 0, len(s.events))
	for _, e := range s.events {
		names = append(names, e.event)
	}
	return names
}

type noopLogger struct{}

func (noopLogger) Debug(string, map[string]interface{})        {}
func (noopLogger) Info(string, map[string]interface{})         {}
func (noopLogger) Warn(string, map[string]interface{})         {}
func (noopLogger) Error(string, error, map[string]interface{}) {}

func newStore(t *testing.T) (*ledger.Store, *spyAudit, string) {
	t.Helper()
	dir := t.TempDir()
	audit := &spyAudit{}
	store, err := ledger.NewStore(dir, audit, noopLogger{})
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return store, audit, dir
}

func TestLearnedCommandIsNotTrustedUntilVerified(t *testing.T) {
	store, audit, _ := newStore(t)

	if err := store.Learn(domain.IntentTest, "pytest tests/", "agent"); err != nil {
		t.Fatalf("Learn() error = %v", err)
	}

	if cmd, ok := store.Command(domain.IntentTest); ok {
		t.Fatalf("Command() = %q, want absent for unverified entry", cmd)
	}

	if err := store.MarkVerified(domain.IntentTest, "sandbox", nil); err != nil {
		t.Fatalf("MarkVerified() error = %v", err)
	}

	cmd, ok := store.Command(domain.IntentTest)
	if !ok || cmd != "pytest tests/" {
		t.Fatalf("Command() = %q, %v, want trusted command", cmd, ok)
	}

	want := []string{"LEARN_CMD", "VERIFY_CMD", "USE_LEARNED_CMD"}
	got := audit.names()
	if len(got) != len(want) {
		t.Fatalf("audit events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("audit event %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTrustGateMissLeavesNoAuditTrace(t *testing.T) {
	store, audit, _ := newStore(t)

	if _, ok := store.Command(domain.IntentLint); ok {
		t.Fatal("Command() = present, want absent for unknown intent")
	}
	if len(audit.events) != 0 {
		t.Errorf("audit events = %v, want none for a miss", audit.names())
	}
}

func TestMarkVerifiedFloorsConfidence(t *testing.T) {
	store, _, _ := newStore(t)

	if err := store.Learn(domain.IntentLint, "ruff check .", "agent"); err != nil {
		t.Fatalf("Learn() error = %v", err)
	}
	if err := store.MarkVerified(domain.IntentLint, "sandbox", map[string]interface{}{"duration_ms": 1200}); err != nil {
		t.Fatalf("MarkVerified() error = %v", err)
	}

	entry, ok := store.Entry(domain.IntentLint)
	if !ok {
		t.Fatal("Entry() missing after MarkVerified")
	}
	if entry.Confidence != domain.VerifiedConfidenceFloor {
		t.Errorf("Confidence = %v, want floor %v", entry.Confidence, domain.VerifiedConfidenceFloor)
	}
	if entry.Verification["method"] != "sandbox" {
		t.Errorf("Verification method = %v, want sandbox", entry.Verification["method"])
	}
}

func TestThreeSuccessesLiftInsufficientEvidencePenalty(t *testing.T) {
	store, _, _ := newStore(t)

	if err := store.Learn(domain.IntentTest, "pytest", "agent"); err != nil {
		t.Fatalf("Learn() error = %v", err)
	}
	if err := store.MarkVerified(domain.IntentTest, "sandbox", nil); err != nil {
		t.Fatalf("MarkVerified() error = %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := store.UpdateResult(domain.IntentTest, true, 900); err != nil {
			t.Fatalf("UpdateResult() error = %v", err)
		}
	}
	entry, _ := store.Entry(domain.IntentTest)
	if entry.Confidence != 0.5 {
		t.Errorf("Confidence after 2 successes = %v, want penalized 0.5", entry.Confidence)
	}

	if err := store.UpdateResult(domain.IntentTest, true, 900); err != nil {
		t.Fatalf("UpdateResult() error = %v", err)
	}
	entry, _ = store.Entry(domain.IntentTest)
	if entry.Confidence != domain.MaxConfidence {
		t.Errorf("Confidence after 3 successes = %v, want cap %v", entry.Confidence, domain.MaxConfidence)
	}
}

func TestUpdateResultUnknownIntentIsNoOp(t *testing.T) {
	store, audit, dir := newStore(t)

	if err := store.UpdateResult(domain.IntentCoverage, true, 100); err != nil {
		t.Fatalf("UpdateResult() error = %v", err)
	}
	if len(audit.events) != 0 {
		t.Errorf("audit events = %v, want none for no-op", audit.names())
	}
	if _, err := os.Stat(filepath.Join(dir, "ledger.json")); !os.IsNotExist(err) {
		t.Error("ledger was written by a no-op update")
	}
}

func TestRelearningResetsTrust(t *testing.T) {
	store, _, _ := newStore(t)

	if err := store.Learn(domain.IntentTest, "pytest", "agent"); err != nil {
		t.Fatalf("Learn() error = %v", err)
	}
	if err := store.MarkVerified(domain.IntentTest, "sandbox", nil); err != nil {
		t.Fatalf("MarkVerified() error = %v", err)
	}
	if err := store.UpdateResult(domain.IntentTest, true, 900); err != nil {
		t.Fatalf("UpdateResult() error = %v", err)
	}

	if err := store.Learn(domain.IntentTest, "go test ./...", "human"); err != nil {
		t.Fatalf("Learn() error = %v", err)
	}

	entry, ok := store.Entry(domain.IntentTest)
	if !ok {
		t.Fatal("Entry() missing after re-learn")
	}
	if entry.Verified || entry.Confidence != 0 || entry.SuccessCount != 0 {
		t.Errorf("re-learned entry = %+v, want fresh untrusted state", entry)
	}
	if _, ok := store.Command(domain.IntentTest); ok {
		t.Error("Command() = present immediately after re-learn, want absent")
	}
}

func TestClearForcesRelearning(t *testing.T) {
	store, audit, _ := newStore(t)

	if err := store.Learn(domain.IntentFormat, "black .", "agent"); err != nil {
		t.Fatalf("Learn() error = %v", err)
	}
	if err := store.Clear(domain.IntentFormat); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	if _, ok := store.Entry(domain.IntentFormat); ok {
		t.Error("Entry() present after Clear")
	}
	got := audit.names()
	if got[len(got)-1] != "CLEAR_CMD" {
		t.Errorf("last audit event = %q, want CLEAR_CMD", got[len(got)-1])
	}

	before := len(audit.events)
	if err := store.Clear(domain.IntentFormat); err != nil {
		t.Fatalf("Clear() of missing intent error = %v", err)
	}
	if len(audit.events) != before {
		t.Error("clearing a missing intent logged an audit event")
	}
}

func TestRejectionRingKeepsMostRecentFifty(t *testing.T) {
	store, _, _ := newStore(t)

	for i := 0; i < 51; i++ {
		if err := store.Reject(fmt.Sprintf("bad-%d", i), "agent", "failed verification"); err != nil {
			t.Fatalf("Reject() error = %v", err)
		}
	}

	doc := store.Snapshot()
	if len(doc.RejectedCommands) != domain.MaxRejectedCommands {
		t.Fatalf("len(RejectedCommands) = %d, want %d", len(doc.RejectedCommands), domain.MaxRejectedCommands)
	}
	if got := doc.RejectedCommands[0].Command; got != "bad-1" {
		t.Errorf("first retained rejection = %q, want bad-1 after evicting bad-0", got)
	}
	if got := doc.RejectedCommands[len(doc.RejectedCommands)-1].Command; got != "bad-50" {
		t.Errorf("last retained rejection = %q, want bad-50", got)
	}
}

func TestLedgerSurvivesProcessRestart(t *testing.T) {
	store, _, dir := newStore(t)

	if err := store.Learn(domain.IntentTest, "pytest", "agent"); err != nil {
		t.Fatalf("Learn() error = %v", err)
	}
	if err := store.MarkVerified(domain.IntentTest, "sandbox", nil); err != nil {
		t.Fatalf("MarkVerified() error = %v", err)
	}
	originalID := store.Snapshot().ProjectID

	reopened, err := ledger.NewStore(dir, &spyAudit{}, noopLogger{})
	if err != nil {
		t.Fatalf("NewStore() reopen error = %v", err)
	}

	cmd, ok := reopened.Command(domain.IntentTest)
	if !ok || cmd != "pytest" {
		t.Fatalf("reopened Command() = %q, %v, want persisted trust", cmd, ok)
	}
	if got := reopened.Snapshot().ProjectID; got != originalID {
		t.Errorf("ProjectID = %q, want stable %q", got, originalID)
	}
}

func TestCorruptLedgerStartsFresh(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("seed corrupt ledger: %v", err)
	}

	store, err := ledger.NewStore(dir, &spyAudit{}, noopLogger{})
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	doc := store.Snapshot()
	if doc.ProjectID == "" {
		t.Error("fresh ledger missing project id")
	}
	if len(doc.Commands) != 0 {
		t.Errorf("fresh ledger has %d commands, want 0", len(doc.Commands))
	}

	// The store must stay usable after recovery.
	if err := store.Learn(domain.IntentTest, "pytest", "agent"); err != nil {
		t.Fatalf("Learn() after recovery error = %v", err)
	}
}

func TestSetProjectFactsMergesPartialUpdates(t *testing.T) {
	store, _, _ := newStore(t)

	if err := store.SetProjectFacts(domain.ProjectFacts{Language: "python", PackageManager: "uv"}); err != nil {
		t.Fatalf("SetProjectFacts() error = %v", err)
	}
	if err := store.SetProjectFacts(domain.ProjectFacts{TestFramework: "pytest"}); err != nil {
		t.Fatalf("SetProjectFacts() error = %v", err)
	}

	facts := store.ProjectFacts()
	if facts.Language != "python" || facts.PackageManager != "uv" || facts.TestFramework != "pytest" {
		t.Errorf("ProjectFacts() = %+v, want merged fields", facts)
	}
}

func TestKnownCommandsUsesListingThreshold(t *testing.T) {
	store, _, _ := newStore(t)

	if err := store.Learn(domain.IntentTest, "pytest", "agent"); err != nil {
		t.Fatalf("Learn() error = %v", err)
	}
	if err := store.MarkVerified(domain.IntentTest, "sandbox", nil); err != nil {
		t.Fatalf("MarkVerified() error = %v", err)
	}
	if err := store.Learn(domain.IntentLint, "ruff check .", "agent"); err != nil {
		t.Fatalf("Learn() error = %v", err)
	}

	known := store.KnownCommands()
	if _, ok := known["TEST_CMD"]; !ok {
		t.Error("verified command missing from KnownCommands()")
	}
	if _, ok := known["LINT_CMD"]; ok {
		t.Error("unverified command listed in KnownCommands()")
	}
}
