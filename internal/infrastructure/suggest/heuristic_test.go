package suggest_test

import (
	"testing"

	"github.com/doeshing/trustgate/internal/domain"
	"github.com/doeshing/trustgate/internal/infrastructure/suggest"
)

func TestProposeByLanguage(t *testing.T) {
	source := suggest.NewHeuristicSource()

	tests := []struct {
		name      string
		intent    domain.Intent
		facts     domain.ProjectFacts
		wantFirst string
	}{
		{
			name:      "python tests",
			intent:    domain.IntentTest,
			facts:     domain.ProjectFacts{Language: "python"},
			wantFirst: "pytest",
		},
		{
			name:      "poetry project prefers poetry run",
			intent:    domain.IntentTest,
			facts:     domain.ProjectFacts{Language: "python", PackageManager: "poetry"},
			wantFirst: "poetry run pytest",
		},
		{
			name:      "jest project prefers npx jest",
			intent:    domain.IntentTest,
			facts:     domain.ProjectFacts{Language: "javascript", TestFramework: "jest"},
			wantFirst: "npx jest",
		},
		{
			name:      "go coverage",
			intent:    domain.IntentCoverage,
			facts:     domain.ProjectFacts{Language: "go"},
			wantFirst: "go test -cover ./...",
		},
		{
			name:      "gradle build",
			intent:    domain.IntentBuild,
			facts:     domain.ProjectFacts{Language: "java", PackageManager: "gradle"},
			wantFirst: "gradle build",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := source.Propose(tt.intent, tt.facts)
			if len(got) == 0 {
				t.Fatal("Propose() returned no candidates")
			}
			if got[0] != tt.wantFirst {
				t.Errorf("Propose()[0] = %q, want %q", got[0], tt.wantFirst)
			}
		})
	}
}

func TestProposeUnknownLanguage(t *testing.T) {
	source := suggest.NewHeuristicSource()

	if got := source.Propose(domain.IntentTest, domain.ProjectFacts{Language: "unknown"}); got != nil {
		t.Errorf("Propose() = %v, want nil for unknown language", got)
	}
	if got := source.Propose(domain.IntentTest, domain.ProjectFacts{}); got != nil {
		t.Errorf("Propose() = %v, want nil for empty facts", got)
	}
}

func TestProposeUnknownIntentForKnownLanguage(t *testing.T) {
	source := suggest.NewHeuristicSource()

	got := source.Propose(domain.Intent("deploy"), domain.ProjectFacts{Language: "python"})
	if got != nil {
		t.Errorf("Propose() = %v, want nil for unmapped intent", got)
	}
}
