// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and
// external adapters (infrastructure). Following the Ports and Adapters
// (Hexagonal) pattern, these interfaces allow the learning protocol to remain
// independent of specific implementations like the on-disk ledger, the shell
// executor, or the CLI framework.
package ports

import (
	"context"

	"github.com/doeshing/trustgate/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.trustgate/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// SafetyClassifier decides whether a command string matches a destructive
// pattern. It runs before everything else and cannot be bypassed.
type SafetyClassifier interface {
	Evaluate(command string) domain.SafetyVerdict
}

// IntentValidator checks a command against the static rule set for its
// declared intent. Purely syntactic; always precedes execution.
type IntentValidator interface {
	Validate(command string, intent domain.Intent) domain.ValidationResult
	RulesFor(intent domain.Intent) domain.IntentRule
}

// VerificationRunner executes a command in its inert dry-run form under the
// verification timeout and reports what it observed.
type VerificationRunner interface {
	Verify(ctx context.Context, command string, rules domain.IntentRule, projectRoot string) domain.VerificationResult
}

// CommandExecutor runs shell commands in the given working directory.
type CommandExecutor interface {
	Execute(ctx context.Context, command string, dir string) (domain.ExecutionResult, error)
}

// LedgerStore owns the durable per-project trust state. Every mutating
// method persists the whole document and appends one audit line.
type LedgerStore interface {
	// Command returns the stored command only when the entry passes the
	// trust gate; a hit is recorded in the audit log.
	Command(intent domain.Intent) (string, bool)
	Entry(intent domain.Intent) (domain.CommandEntry, bool)
	Learn(intent domain.Intent, command, source string) error
	UpdateResult(intent domain.Intent, success bool, durationMS int64) error
	MarkVerified(intent domain.Intent, method string, details map[string]interface{}) error
	Reject(command, source, reason string) error
	Clear(intent domain.Intent) error
	KnownCommands() map[string]string
	SetProjectFacts(facts domain.ProjectFacts) error
	ProjectFacts() domain.ProjectFacts
	Snapshot() domain.TrustLedger
	Path() string
}

// AuditLogger appends structured events to the write-only audit trail.
type AuditLogger interface {
	Record(event string, fields map[string]interface{})
}

// ProjectDetector sniffs a project root for language and toolchain facts.
type ProjectDetector interface {
	Detect(root string) domain.ProjectFacts
}

// CommandSource proposes candidate commands for an intent. Implementations
// may be heuristic tables, humans, or agents; the learning protocol stays
// source-agnostic.
type CommandSource interface {
	Name() string
	Propose(intent domain.Intent, facts domain.ProjectFacts) []string
}

// HistoryRepository records trusted runs for later inspection.
type HistoryRepository interface {
	Save(record domain.ExecutionRecord) error
	Records(limit int, failuresOnly bool) ([]domain.ExecutionRecord, error)
	Path() string
	Clear() error
}

// Logger provides structured logging abstraction for the application layer.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
