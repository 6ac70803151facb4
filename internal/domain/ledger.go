package domain

import "time"

// Audit event names, one per ledger mutation plus the trust-gate hit.
const (
	EventLearnCommand      = "LEARN_CMD"
	EventExecuteCommand    = "EXEC_CMD"
	EventVerifyCommand     = "VERIFY_CMD"
	EventRejectCommand     = "REJECT_CMD"
	EventClearCommand      = "CLEAR_CMD"
	EventUseLearnedCommand = "USE_LEARNED_CMD"
)

// TrustLedger is the root persisted document for one project.
type TrustLedger struct {
	Version          string                  `json:"version"`
	ProjectID        string                  `json:"project_id"`
	Created          time.Time               `json:"created"`
	LastUpdated      time.Time               `json:"last_updated"`
	LastUpdatedBy    string                  `json:"last_updated_by"`
	Detected         ProjectFacts            `json:"detected"`
	Commands         map[string]CommandEntry `json:"commands"`
	RejectedCommands []RejectedCommand       `json:"rejected_commands"`
	Environment      map[string]string       `json:"environment"`
}

// NewTrustLedger creates an empty document with a fresh project id.
func NewTrustLedger(projectID string, at time.Time) TrustLedger {
	return TrustLedger{
		Version:          LedgerFormatVersion,
		ProjectID:        projectID,
		Created:          at,
		LastUpdated:      at,
		Commands:         map[string]CommandEntry{},
		RejectedCommands: []RejectedCommand{},
		Environment:      map[string]string{},
	}
}

// EnsureMaps backfills nil collections after decoding an older or
// hand-edited document.
func (l *TrustLedger) EnsureMaps() {
	if l.Commands == nil {
		l.Commands = map[string]CommandEntry{}
	}
	if l.RejectedCommands == nil {
		l.RejectedCommands = []RejectedCommand{}
	}
	if l.Environment == nil {
		l.Environment = map[string]string{}
	}
}

// TrustedCommand returns the stored command for the intent only when it
// passes the trust gate.
func (l TrustLedger) TrustedCommand(intent Intent) (CommandEntry, bool) {
	entry, ok := l.Commands[intent.Key()]
	if !ok || !entry.Trusted() {
		return CommandEntry{}, false
	}
	return entry, true
}

// ListableCommands returns intent key to command for every entry above
// the listing threshold.
func (l TrustLedger) ListableCommands() map[string]string {
	known := map[string]string{}
	for key, entry := range l.Commands {
		if entry.Listable() {
			known[key] = entry.Command
		}
	}
	return known
}

// AppendRejection adds a rejection record, evicting the oldest entries
// beyond the ring capacity.
func (l *TrustLedger) AppendRejection(rejected RejectedCommand) {
	l.RejectedCommands = append(l.RejectedCommands, rejected)
	if overflow := len(l.RejectedCommands) - MaxRejectedCommands; overflow > 0 {
		l.RejectedCommands = l.RejectedCommands[overflow:]
	}
}

// Clone returns a copy whose collections are detached from the
// original, safe to hand to callers for display.
func (l TrustLedger) Clone() TrustLedger {
	out := l
	out.Commands = make(map[string]CommandEntry, len(l.Commands))
	for key, entry := range l.Commands {
		out.Commands[key] = entry
	}
	out.RejectedCommands = append([]RejectedCommand(nil), l.RejectedCommands...)
	out.Environment = make(map[string]string, len(l.Environment))
	for key, value := range l.Environment {
		out.Environment[key] = value
	}
	return out
}
