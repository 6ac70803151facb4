package intent

import "github.com/doeshing/trustgate/internal/domain"

// builtinRules is the static validation table. Keyword checks are
// case-insensitive substring matches; duration windows are what a
// verification run is expected to take, in milliseconds.
func builtinRules() map[domain.Intent]domain.IntentRule {
	return map[domain.Intent]domain.IntentRule{
		domain.IntentTest: {
			RequiredKeywords:  []string{"test", "spec", "check", "pytest", "jest", "mocha", "jasmine"},
			ForbiddenKeywords: []string{"rm", "delete", "format", "install"},
			MinDurationMS:     100,
			MaxDurationMS:     300000,
			ModifiesFiles:     false,
			OutputPatterns:    []string{"test", "pass", "fail", "ok", "error"},
		},
		domain.IntentLint: {
			RequiredKeywords:  []string{"lint", "check", "ruff", "flake", "eslint", "pylint", "rubocop"},
			ForbiddenKeywords: []string{"rm", "delete", "install"},
			MinDurationMS:     100,
			MaxDurationMS:     60000,
			ModifiesFiles:     false,
			OutputPatterns:    []string{"error", "warning", "found", "issue", "problem", "ok", "clean"},
		},
		domain.IntentFormat: {
			RequiredKeywords:  []string{"format", "black", "prettier", "fmt", "autopep", "standard"},
			ForbiddenKeywords: []string{"rm", "test", "install"},
			MinDurationMS:     100,
			MaxDurationMS:     60000,
			ModifiesFiles:     true,
			OutputPatterns:    []string{"reformat", "fixed", "changed", "modified"},
		},
		domain.IntentCoverage: {
			RequiredKeywords:  []string{"cov", "coverage", "cover"},
			ForbiddenKeywords: []string{"rm", "delete", "install"},
			MinDurationMS:     500,
			MaxDurationMS:     600000,
			ModifiesFiles:     false,
			OutputPatterns:    []string{`\d+%`, "coverage", "lines", "statements"},
		},
		domain.IntentBuild: {
			RequiredKeywords:  []string{"build", "compile", "bundle", "webpack", "rollup", "tsc"},
			ForbiddenKeywords: []string{"rm -rf", "sudo"},
			MinDurationMS:     500,
			MaxDurationMS:     600000,
			ModifiesFiles:     true,
			OutputPatterns:    []string{"built", "compiled", "bundle", "success", "complete"},
		},
	}
}

// defaultRule is the conservative fallback for intents outside the table:
// no required evidence, a small forbidden set, a wide duration window and
// no expected file mutation.
func defaultRule() domain.IntentRule {
	return domain.IntentRule{
		ForbiddenKeywords: []string{"rm", "delete", "sudo"},
		MinDurationMS:     10,
		MaxDurationMS:     600000,
		ModifiesFiles:     false,
	}
}
