package domain

// ProtocolStatus is the discriminator every learning-protocol response
// carries so a caller can branch without parsing free text.
type ProtocolStatus string

const (
	StatusAlreadyKnown      ProtocolStatus = "already_known"
	StatusNeedAnswer        ProtocolStatus = "need_answer"
	StatusRejected          ProtocolStatus = "rejected"
	StatusInvalid           ProtocolStatus = "invalid"
	StatusLearned           ProtocolStatus = "learned"
	StatusUnknownCommand    ProtocolStatus = "unknown_command"
	StatusSuccess           ProtocolStatus = "success"
	StatusFailure           ProtocolStatus = "failure"
	StatusTimeout           ProtocolStatus = "timeout"
	StatusError             ProtocolStatus = "error"
	StatusAlreadyConfigured ProtocolStatus = "already_configured"
	StatusNeedTeaching      ProtocolStatus = "need_teaching"
)

// AskRequest asks whether a command for the intent is already trusted.
type AskRequest struct {
	Intent   string   `json:"intent"`
	Context  string   `json:"context,omitempty"`
	Tried    []string `json:"tried,omitempty"`
	Question string   `json:"question,omitempty"`
}

// AskResult answers an AskRequest.
type AskResult struct {
	Status      ProtocolStatus `json:"status"`
	Intent      string         `json:"intent"`
	Command     string         `json:"command,omitempty"`
	Question    string         `json:"question,omitempty"`
	Context     string         `json:"context,omitempty"`
	Suggestions []string       `json:"suggestions,omitempty"`
	Message     string         `json:"message,omitempty"`
}

// TeachRequest submits a candidate command for verification.
type TeachRequest struct {
	Intent  string `json:"intent"`
	Command string `json:"command"`
	Source  string `json:"source,omitempty"`
	Save    bool   `json:"save"`
}

// TeachResult reports the verification outcome for one taught command.
type TeachResult struct {
	Status       ProtocolStatus `json:"status"`
	Intent       string         `json:"intent"`
	Command      string         `json:"command,omitempty"`
	Verified     bool           `json:"verified"`
	Reason       string         `json:"reason,omitempty"`
	OutputSample string         `json:"output_sample,omitempty"`
	DurationMS   int64          `json:"duration_ms,omitempty"`
	Message      string         `json:"message,omitempty"`
}

// RunRequest executes an already-trusted command.
type RunRequest struct {
	Intent string `json:"intent"`
}

// RunResult reports a trusted run.
type RunResult struct {
	Status     ProtocolStatus `json:"status"`
	Intent     string         `json:"intent"`
	Command    string         `json:"command,omitempty"`
	ExitCode   int            `json:"exit_code"`
	Stdout     string         `json:"stdout,omitempty"`
	Stderr     string         `json:"stderr,omitempty"`
	DurationMS int64          `json:"duration_ms,omitempty"`
	Message    string         `json:"message,omitempty"`
}

// LearnProjectResult reports which intents still need teaching.
type LearnProjectResult struct {
	Status    ProtocolStatus    `json:"status"`
	Detected  ProjectFacts      `json:"detected"`
	Known     map[string]string `json:"known_commands,omitempty"`
	Needed    []string          `json:"needed,omitempty"`
	Questions map[string]string `json:"questions,omitempty"`
	Message   string            `json:"message,omitempty"`
}

// CommandSummary is the per-intent view in a memory status report.
type CommandSummary struct {
	Command    string  `json:"command"`
	Verified   bool    `json:"verified"`
	Confidence float64 `json:"confidence"`
	Successes  int     `json:"successes"`
	Failures   int     `json:"failures"`
}

// MemoryStatusResult is the read-only introspection response.
type MemoryStatusResult struct {
	ProjectID        string                    `json:"project_id"`
	LedgerPath       string                    `json:"ledger_path"`
	Detected         ProjectFacts              `json:"detected"`
	Commands         map[string]CommandSummary `json:"commands"`
	RejectedCount    int                       `json:"rejected_count"`
	RecentRejections []RejectedCommand         `json:"recent_rejections,omitempty"`
	LastUpdated      string                    `json:"last_updated,omitempty"`
	LastUpdatedBy    string                    `json:"last_updated_by,omitempty"`
}
