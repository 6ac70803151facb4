package security

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/doeshing/trustgate/internal/domain"
	"github.com/doeshing/trustgate/internal/ports"
)

// Classifier implements the SafetyClassifier port. The built-in pattern
// list is always active; configuration can only extend it, never disable
// or replace it.
type Classifier struct {
	patterns []compiledPattern
}

type compiledPattern struct {
	re      *regexp.Regexp
	pattern string
	message string
}

type dangerRule struct {
	pattern string
	message string
}

// builtinRules covers catastrophic operations: recursive force-deletes,
// raw device writes, piping downloads into an interpreter, fork bombs,
// filesystem formatting, and writes into system configuration.
func builtinRules() []dangerRule {
	return []dangerRule{
		{pattern: `rm\s+-rf\s+/`, message: "recursive force-delete of the root directory"},
		{pattern: `rm\s+-rf\s+~`, message: "recursive force-delete of the home directory"},
		{pattern: `rm\s+-rf\s+\*`, message: "recursive force-delete of everything in place"},
		{pattern: `>\s*/dev/sd`, message: "raw write to a block device"},
		{pattern: `dd\s+if=.*of=/dev/`, message: "raw disk write via dd"},
		{pattern: `chmod\s+-R\s+777\s+/`, message: "recursive permission change from the root"},
		{pattern: `curl.*\|\s*sh`, message: "piping a remote download into a shell"},
		{pattern: `wget.*\|\s*bash`, message: "piping a remote download into bash"},
		{pattern: `:\(\)\s*\{\s*:\|\s*:&\s*\}\s*;\s*:`, message: "fork bomb"},
		{pattern: `mkfs\.`, message: "formatting a filesystem"},
		{pattern: `>\s*/etc/`, message: "write into system configuration"},
	}
}

// NewClassifier compiles the built-in rules plus any configured extras.
// An invalid extra pattern fails construction rather than being skipped.
func NewClassifier(extraPatterns []string) (*Classifier, error) {
	var compiled []compiledPattern
	for _, rule := range builtinRules() {
		re, err := regexp.Compile("(?i)" + rule.pattern)
		if err != nil {
			return nil, fmt.Errorf("compile built-in pattern %q: %w", rule.pattern, err)
		}
		compiled = append(compiled, compiledPattern{
			re:      re,
			pattern: rule.pattern,
			message: rule.message,
		})
	}
	for _, extra := range extraPatterns {
		if strings.TrimSpace(extra) == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + extra)
		if err != nil {
			return nil, fmt.Errorf("compile extra pattern %q: %w", extra, err)
		}
		compiled = append(compiled, compiledPattern{
			re:      re,
			pattern: extra,
			message: "matches a configured destructive pattern",
		})
	}
	return &Classifier{patterns: compiled}, nil
}

// Evaluate checks the command against every pattern in order; the first
// match short-circuits to a dangerous verdict.
func (c *Classifier) Evaluate(command string) domain.SafetyVerdict {
	command = strings.TrimSpace(command)
	for _, pattern := range c.patterns {
		if pattern.re.MatchString(command) {
			return domain.SafetyVerdict{
				Dangerous: true,
				Pattern:   pattern.pattern,
				Message:   pattern.message,
			}
		}
	}
	return domain.SafetyVerdict{}
}

// PatternCount reports how many patterns are active, for diagnostics.
func (c *Classifier) PatternCount() int {
	return len(c.patterns)
}

var _ ports.SafetyClassifier = (*Classifier)(nil)
