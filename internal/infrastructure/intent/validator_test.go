package intent_test

import (
	"strings"
	"testing"

	"github.com/doeshing/trustgate/internal/domain"
	"github.com/doeshing/trustgate/internal/infrastructure/intent"
)

// TestValidateKnownIntents tests required and forbidden keyword checks
func TestValidateKnownIntents(t *testing.T) {
	validator := intent.NewValidator()

	tests := []struct {
		name       string
		command    string
		intent     domain.Intent
		wantValid  bool
		wantReason string
	}{
		{
			name:      "test command with test keyword",
			command:   "pytest tests/ -v",
			intent:    domain.IntentTest,
			wantValid: true,
		},
		{
			name:      "jest runner accepted",
			command:   "npx jest --ci",
			intent:    domain.IntentTest,
			wantValid: true,
		},
		{
			name:       "test command missing evidence",
			command:    "echo hello",
			intent:     domain.IntentTest,
			wantValid:  false,
			wantReason: "does not look like a test command",
		},
		{
			name:       "test command with forbidden delete",
			command:    "pytest && delete old.log",
			intent:     domain.IntentTest,
			wantValid:  false,
			wantReason: "forbidden keyword",
		},
		{
			name:      "lint command accepted",
			command:   "eslint . --max-warnings=0",
			intent:    domain.IntentLint,
			wantValid: true,
		},
		{
			name:       "lint with install forbidden",
			command:    "npm install eslint && eslint .",
			intent:     domain.IntentLint,
			wantValid:  false,
			wantReason: "forbidden keyword",
		},
		{
			name:      "format command accepted",
			command:   "black .",
			intent:    domain.IntentFormat,
			wantValid: true,
		},
		{
			name:      "coverage command accepted",
			command:   "go test -cover ./...",
			intent:    domain.IntentCoverage,
			wantValid: true,
		},
		{
			name:      "build command accepted",
			command:   "tsc --project .",
			intent:    domain.IntentBuild,
			wantValid: true,
		},
		{
			name:       "build with sudo forbidden",
			command:    "sudo make build",
			intent:     domain.IntentBuild,
			wantValid:  false,
			wantReason: "forbidden keyword",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validator.Validate(tt.command, tt.intent)
			if result.Valid != tt.wantValid {
				t.Fatalf("Validate(%q, %s) valid = %v, want %v (reason %q)",
					tt.command, tt.intent, result.Valid, tt.wantValid, result.Reason)
			}
			if !tt.wantValid && !strings.Contains(result.Reason, tt.wantReason) {
				t.Errorf("reason = %q, want substring %q", result.Reason, tt.wantReason)
			}
		})
	}
}

// TestValidateUnknownIntentFallsBack tests the conservative default rule set
func TestValidateUnknownIntentFallsBack(t *testing.T) {
	validator := intent.NewValidator()
	deploy := domain.Intent("deploy")

	// No required keywords for unknown intents, so an arbitrary command passes.
	if result := validator.Validate("kubectl apply -f deploy.yaml", deploy); !result.Valid {
		t.Errorf("unknown intent rejected: %s", result.Reason)
	}

	// The small forbidden set still applies.
	if result := validator.Validate("sudo systemctl restart app", deploy); result.Valid {
		t.Error("sudo not caught by the default rule set")
	}

	rule := validator.RulesFor(deploy)
	if len(rule.RequiredKeywords) != 0 {
		t.Errorf("default rule has required keywords: %v", rule.RequiredKeywords)
	}
	if rule.MinDurationMS != 10 || rule.MaxDurationMS != 600000 {
		t.Errorf("default duration window = [%d, %d], want [10, 600000]", rule.MinDurationMS, rule.MaxDurationMS)
	}
	if rule.ModifiesFiles {
		t.Error("default rule expects file mutation")
	}
}

// TestRulesForKnownIntent tests table lookups carry the declared mutation flag
func TestRulesForKnownIntent(t *testing.T) {
	validator := intent.NewValidator()

	if rule := validator.RulesFor(domain.IntentFormat); !rule.ModifiesFiles {
		t.Error("format rule should declare file mutation")
	}
	if rule := validator.RulesFor(domain.IntentLint); rule.ModifiesFiles {
		t.Error("lint rule should not declare file mutation")
	}
	if rule := validator.RulesFor(domain.IntentTest); rule.MaxDurationMS != 300000 {
		t.Errorf("test rule max duration = %d, want 300000", rule.MaxDurationMS)
	}
}
