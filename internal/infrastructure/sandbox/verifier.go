// Package sandbox verifies that a candidate command behaves the way its
// intent promises before it is trusted. Verification runs the command
// once, rewritten to a dry-run form where possible, under a short
// timeout, and compares the observed output, file mutations, and
// duration against the intent's rules.
package sandbox

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/doeshing/trustgate/internal/domain"
	"github.com/doeshing/trustgate/internal/ports"
)

// Verifier runs sandboxed verification passes.
type Verifier struct {
	exec        ports.CommandExecutor
	timeout     time.Duration
	sampleLimit int
	logger      ports.Logger
}

var _ ports.VerificationRunner = (*Verifier)(nil)

// NewVerifier creates a verifier that executes commands through exec.
// timeout bounds a single verification run and sampleLimit caps the
// captured output excerpt in bytes.
func NewVerifier(exec ports.CommandExecutor, timeout time.Duration, sampleLimit int, logger ports.Logger) *Verifier {
	if timeout <= 0 {
		timeout = domain.DefaultVerificationTimeout
	}
	if sampleLimit <= 0 {
		sampleLimit = domain.DefaultOutputSampleBytes
	}
	return &Verifier{exec: exec, timeout: timeout, sampleLimit: sampleLimit, logger: logger}
}

// Verify executes command in projectRoot and checks it against rules.
// The caller is expected to have cleared the command through the safety
// classifier already, so every result reports Safe=true.
func (v *Verifier) Verify(ctx context.Context, command string, rules domain.IntentRule, projectRoot string) domain.VerificationResult {
	before := snapshot(projectRoot)

	rewritten := DryRunRewrite(command)
	if rewritten != command {
		v.logger.Debug("rewrote command for verification", map[string]interface{}{
			"command":   command,
			"rewritten": rewritten,
		})
	}

	runCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	execution, err := v.exec.Execute(runCtx, rewritten, projectRoot)
	if execution.TimedOut {
		return domain.VerificationResult{Safe: true, Reason: "timed out during verification"}
	}
	if err != nil {
		return domain.VerificationResult{Safe: true, Reason: fmt.Sprintf("error during verification: %v", err)}
	}

	output := execution.Stdout + execution.Stderr
	sample := output
	if len(sample) > v.sampleLimit {
		sample = sample[:v.sampleLimit]
	}

	after := snapshot(projectRoot)
	modified := symmetricDifference(before, after)

	if len(rules.OutputPatterns) > 0 && !matchesAny(output, rules.OutputPatterns) {
		return domain.VerificationResult{
			Safe:          true,
			Reason:        "output doesn't match expected patterns",
			OutputSample:  sample,
			DurationMS:    execution.DurationMS,
			FilesModified: modified,
		}
	}

	// Mutation is only checked one way: a command allowed to modify
	// files that happens not to is still valid.
	if !rules.ModifiesFiles && modified > 0 {
		return domain.VerificationResult{
			Safe:          true,
			Reason:        fmt.Sprintf("command modified %d files when it shouldn't", modified),
			DurationMS:    execution.DurationMS,
			FilesModified: modified,
		}
	}

	if execution.DurationMS < rules.MinDurationMS {
		return domain.VerificationResult{
			Safe:       true,
			Reason:     "command completed too quickly, might not be doing real work",
			DurationMS: execution.DurationMS,
		}
	}
	if execution.DurationMS > rules.MaxDurationMS {
		return domain.VerificationResult{
			Safe:       true,
			Reason:     "command took too long, might be stuck",
			DurationMS: execution.DurationMS,
		}
	}

	return domain.VerificationResult{
		Safe:          true,
		Valid:         true,
		OutputSample:  sample,
		DurationMS:    execution.DurationMS,
		FilesModified: modified,
	}
}

func matchesAny(output string, patterns []string) bool {
	for _, pattern := range patterns {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			continue
		}
		if re.MatchString(output) {
			return true
		}
	}
	return false
}
