package executor_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/doeshing/trustgate/internal/infrastructure/executor"
)

func TestExecuteCapturesOutputAndExitCode(t *testing.T) {
	exec := executor.NewLocalExecutor("/bin/sh")

	result, err := exec.Execute(context.Background(), "echo hello && echo oops >&2", t.TempDir())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := strings.TrimSpace(result.Stdout); got != "hello" {
		t.Errorf("Stdout = %q, want %q", got, "hello")
	}
	if got := strings.TrimSpace(result.Stderr); got != "oops" {
		t.Errorf("Stderr = %q, want %q", got, "oops")
	}
	if result.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", result.ExitCode)
	}
	if !result.Success() {
		t.Error("Success() = false, want true")
	}
}

func TestExecuteReportsNonZeroExit(t *testing.T) {
	exec := executor.NewLocalExecutor("/bin/sh")

	result, err := exec.Execute(context.Background(), "exit 3", t.TempDir())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", result.ExitCode)
	}
	if result.Success() {
		t.Error("Success() = true, want false")
	}
}

func TestExecuteRunsInDirectory(t *testing.T) {
	exec := executor.NewLocalExecutor("/bin/sh")
	dir := t.TempDir()

	result, err := exec.Execute(context.Background(), "pwd", dir)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := strings.TrimSpace(result.Stdout); !strings.HasSuffix(got, dir) && got != dir {
		t.Errorf("pwd = %q, want directory %q", got, dir)
	}
}

func TestExecuteMarksTimeout(t *testing.T) {
	exec := executor.NewLocalExecutor("/bin/sh")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	result, err := exec.Execute(ctx, "sleep 5", t.TempDir())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !result.TimedOut {
		t.Error("TimedOut = false, want true")
	}
	if result.Success() {
		t.Error("Success() = true, want false")
	}
}

func TestShellFallback(t *testing.T) {
	if got := executor.NewLocalExecutor("/bin/bash").Shell(); got != "/bin/bash" {
		t.Errorf("Shell() = %q, want %q", got, "/bin/bash")
	}
	t.Setenv("SHELL", "")
	if got := executor.NewLocalExecutor("").Shell(); got != "/bin/sh" {
		t.Errorf("Shell() with empty env = %q, want %q", got, "/bin/sh")
	}
}
