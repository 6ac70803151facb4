// Package suggest proposes candidate commands for an intent from
// detected project facts. Suggestions are starting points for teaching,
// not trusted commands; every candidate still goes through the full
// verification pipeline.
package suggest

import (
	"github.com/doeshing/trustgate/internal/domain"
	"github.com/doeshing/trustgate/internal/ports"
)

// HeuristicSource suggests commands from a static language table.
type HeuristicSource struct{}

var _ ports.CommandSource = (*HeuristicSource)(nil)

// NewHeuristicSource creates the offline suggestion source.
func NewHeuristicSource() *HeuristicSource {
	return &HeuristicSource{}
}

// Name identifies the source in ledger entries and audit lines.
func (s *HeuristicSource) Name() string {
	return "heuristic"
}

// Propose returns candidate commands for the intent, most likely first.
// Unknown language and intent combinations return nil.
func (s *HeuristicSource) Propose(intent domain.Intent, facts domain.ProjectFacts) []string {
	table, ok := languageCommands[facts.Language]
	if !ok {
		return nil
	}

	candidates := append([]string(nil), table[intent]...)
	if preferred := preferredCandidate(intent, facts); preferred != "" {
		candidates = prepend(candidates, preferred)
	}
	return candidates
}

var languageCommands = map[string]map[domain.Intent][]string{
	"python": {
		domain.IntentTest:     {"pytest", "python -m pytest"},
		domain.IntentLint:     {"ruff check .", "flake8"},
		domain.IntentFormat:   {"black .", "ruff format ."},
		domain.IntentCoverage: {"pytest --cov"},
		domain.IntentBuild:    {"python -m build"},
	},
	"javascript": {
		domain.IntentTest:     {"npm test"},
		domain.IntentLint:     {"npx eslint ."},
		domain.IntentFormat:   {"npx prettier --write ."},
		domain.IntentCoverage: {"npx jest --coverage"},
		domain.IntentBuild:    {"npm run build"},
	},
	"go": {
		domain.IntentTest:     {"go test ./..."},
		domain.IntentLint:     {"golangci-lint run"},
		domain.IntentFormat:   {"gofmt -l -w ."},
		domain.IntentCoverage: {"go test -cover ./..."},
		domain.IntentBuild:    {"go build ./..."},
	},
	"rust": {
		domain.IntentTest:     {"cargo test"},
		domain.IntentLint:     {"cargo check"},
		domain.IntentFormat:   {"cargo fmt"},
		domain.IntentCoverage: {"cargo llvm-cov"},
		domain.IntentBuild:    {"cargo build"},
	},
	"java": {
		domain.IntentTest:  {"mvn test"},
		domain.IntentLint:  {"mvn checkstyle:check"},
		domain.IntentBuild: {"mvn compile"},
	},
}

// preferredCandidate refines the generic table using the detected
// package manager or test framework.
func preferredCandidate(intent domain.Intent, facts domain.ProjectFacts) string {
	switch facts.Language {
	case "python":
		if intent == domain.IntentTest && facts.PackageManager == "poetry" {
			return "poetry run pytest"
		}
		if intent == domain.IntentTest && facts.PackageManager == "uv" {
			return "uv run pytest"
		}
	case "javascript":
		switch intent {
		case domain.IntentTest:
			switch facts.TestFramework {
			case "jest":
				return "npx jest"
			case "vitest":
				return "npx vitest run"
			case "mocha":
				return "npx mocha"
			}
		case domain.IntentBuild:
			if facts.PackageManager == "yarn" {
				return "yarn build"
			}
			if facts.PackageManager == "pnpm" {
				return "pnpm build"
			}
		}
	case "java":
		if facts.PackageManager == "gradle" {
			switch intent {
			case domain.IntentTest:
				return "gradle test"
			case domain.IntentLint:
				return "gradle check"
			case domain.IntentBuild:
				return "gradle build"
			}
		}
	}
	return ""
}

func prepend(list []string, head string) []string {
	for _, item := range list {
		if item == head {
			return list
		}
	}
	return append([]string{head}, list...)
}
