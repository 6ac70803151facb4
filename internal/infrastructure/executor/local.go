// Package executor runs shell commands on the local machine.
package executor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/doeshing/trustgate/internal/domain"
	"github.com/doeshing/trustgate/internal/ports"
)

// LocalExecutor runs commands through the configured shell.
type LocalExecutor struct {
	shell string
}

var _ ports.CommandExecutor = (*LocalExecutor)(nil)

// NewLocalExecutor creates an executor. An empty shell resolves to $SHELL,
// falling back to /bin/sh.
func NewLocalExecutor(shell string) *LocalExecutor {
	return &LocalExecutor{shell: shell}
}

// Shell reports the shell binary the executor invokes.
func (e *LocalExecutor) Shell() string {
	if e.shell != "" {
		return e.shell
	}
	if env := os.Getenv("SHELL"); env != "" {
		return env
	}
	return "/bin/sh"
}

// Execute runs the command in dir and captures its output. The context
// bounds the run; on deadline the result is marked as timed out rather
// than returned as an error.
func (e *LocalExecutor) Execute(ctx context.Context, command string, dir string) (domain.ExecutionResult, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, e.Shell(), "-c", command)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	result := domain.ExecutionResult{
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		DurationMS: duration.Milliseconds(),
	}

	if ctx.Err() == context.DeadlineExceeded {
		result.TimedOut = true
		result.ExitCode = -1
		return result, nil
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		// The command never started, e.g. the shell binary is missing.
		result.ExitCode = -1
		result.Err = err
		return result, err
	}

	result.ExitCode = 0
	return result, nil
}
