package domain

import "time"

// ExecutionResult wraps details from the command executor.
type ExecutionResult struct {
	Stdout     string
	Stderr     string
	ExitCode   int
	DurationMS int64
	TimedOut   bool
	Err        error
}

// Success reports whether the run completed cleanly.
func (r ExecutionResult) Success() bool {
	return r.Err == nil && r.ExitCode == 0 && !r.TimedOut
}

// ExecutionRecord captures one trusted run for the history store.
type ExecutionRecord struct {
	Timestamp  time.Time `json:"timestamp"`
	Intent     string    `json:"intent"`
	Command    string    `json:"command"`
	Success    bool      `json:"success"`
	ExitCode   int       `json:"exit_code"`
	DurationMS int64     `json:"duration_ms"`
	TimedOut   bool      `json:"timed_out"`
}
