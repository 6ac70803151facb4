package domain

import (
	"path/filepath"
	"time"
)

// VerificationTimeout returns the wall-clock bound for one sandboxed
// verification run.
func (c Config) VerificationTimeout() time.Duration {
	if c.Verification.TimeoutSeconds > 0 {
		return time.Duration(c.Verification.TimeoutSeconds) * time.Second
	}
	return DefaultVerificationTimeout
}

// ExecutionTimeout returns the wall-clock bound for one trusted run.
// Deliberately far more generous than the verification timeout.
func (c Config) ExecutionTimeout() time.Duration {
	if c.Execution.TimeoutSeconds > 0 {
		return time.Duration(c.Execution.TimeoutSeconds) * time.Second
	}
	return DefaultExecutionTimeout
}

// SampleLimit returns the byte cap for verification output samples.
func (c Config) SampleLimit() int {
	if c.Verification.OutputSampleBytes > 0 {
		return c.Verification.OutputSampleBytes
	}
	return DefaultOutputSampleBytes
}

// TailLimit returns the byte cap applied to each captured stream of a
// trusted run before it is returned to the caller.
func (c Config) TailLimit() int {
	if c.Execution.OutputTailBytes > 0 {
		return c.Execution.OutputTailBytes
	}
	return DefaultOutputTailBytes
}

// Shell resolves the configured shell; "auto" and empty defer to the
// executor's own detection.
func (c Config) Shell() string {
	if c.Execution.Shell == "" || c.Execution.Shell == "auto" {
		return ""
	}
	return c.Execution.Shell
}

// DataDirName returns the per-project data directory name.
func (c Config) DataDirName() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	return DefaultDataDirName
}

// DataDirFor resolves the data directory under a project root.
func (c Config) DataDirFor(projectRoot string) string {
	return filepath.Join(projectRoot, c.DataDirName())
}

// HistoryBackend returns the configured backend, defaulting to sqlite.
func (c Config) HistoryBackend() string {
	switch c.History.Backend {
	case "jsonl", "off":
		return c.History.Backend
	default:
		return "sqlite"
	}
}

// HistoryLimit returns the default listing size for history queries.
func (c Config) HistoryLimit() int {
	if c.History.Limit > 0 {
		return c.History.Limit
	}
	return DefaultHistoryLimit
}
