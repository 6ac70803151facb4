// Package intent holds the static per-intent rule table and the syntactic
// validator that runs before any command is executed.
package intent

import (
	"fmt"
	"strings"

	"github.com/doeshing/trustgate/internal/domain"
	"github.com/doeshing/trustgate/internal/ports"
)

// Validator implements the IntentValidator port against the built-in
// rule table.
type Validator struct {
	rules    map[domain.Intent]domain.IntentRule
	fallback domain.IntentRule
}

// NewValidator builds the validator with the built-in rules.
func NewValidator() *Validator {
	return &Validator{
		rules:    builtinRules(),
		fallback: defaultRule(),
	}
}

// RulesFor returns the rule set for the intent, falling back to the
// conservative default for unknown intents.
func (v *Validator) RulesFor(intent domain.Intent) domain.IntentRule {
	if rule, ok := v.rules[intent]; ok {
		return rule
	}
	return v.fallback
}

// Validate checks required and forbidden keywords. It never executes
// anything and never fails with an error; malformed input yields a
// structured negative result.
func (v *Validator) Validate(command string, intent domain.Intent) domain.ValidationResult {
	rule := v.RulesFor(intent)
	lowered := strings.ToLower(command)

	if len(rule.RequiredKeywords) > 0 && !containsAny(lowered, rule.RequiredKeywords) {
		return domain.ValidationResult{
			Reason: fmt.Sprintf("command does not look like a %s command (expected one of: %s)",
				intent, strings.Join(rule.RequiredKeywords, ", ")),
		}
	}

	for _, keyword := range rule.ForbiddenKeywords {
		if strings.Contains(lowered, keyword) {
			return domain.ValidationResult{
				Reason: fmt.Sprintf("command contains forbidden keyword %q", keyword),
			}
		}
	}

	return domain.ValidationResult{Valid: true}
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

var _ ports.IntentValidator = (*Validator)(nil)
