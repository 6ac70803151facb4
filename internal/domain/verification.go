package domain

// SafetyVerdict is the outcome of the destructive-pattern classifier.
type SafetyVerdict struct {
	Dangerous bool
	Pattern   string
	Message   string
}

// ValidationResult is the outcome of the syntactic intent check.
type ValidationResult struct {
	Valid  bool
	Reason string
}

// VerificationResult captures one verification attempt. It is transient:
// its fields fold into a CommandEntry update and an audit line, never
// persisted as-is.
type VerificationResult struct {
	Safe          bool   `json:"safe"`
	Valid         bool   `json:"valid"`
	Reason        string `json:"reason,omitempty"`
	OutputSample  string `json:"output_sample,omitempty"`
	DurationMS    int64  `json:"duration_ms,omitempty"`
	FilesModified int    `json:"files_modified"`
}
