package domain

import "strings"

// Intent is the declared purpose of a learned command.
type Intent string

const (
	IntentTest     Intent = "test"
	IntentLint     Intent = "lint"
	IntentFormat   Intent = "format"
	IntentCoverage Intent = "coverage"
	IntentBuild    Intent = "build"
)

// KnownIntents lists the intents the bootstrap flow asks about, in the
// order they are offered to an agent.
func KnownIntents() []Intent {
	return []Intent{IntentTest, IntentLint, IntentFormat, IntentCoverage, IntentBuild}
}

// ParseIntent normalizes free-form intent names. Both "test" and
// "TEST_CMD" map to IntentTest; unrecognized names are preserved
// lowercased so custom intents keep working with the default rule set.
func ParseIntent(value string) Intent {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.TrimSuffix(normalized, "_cmd")
	return Intent(normalized)
}

// Key returns the ledger key for the intent, e.g. "TEST_CMD".
func (i Intent) Key() string {
	return strings.ToUpper(string(i)) + "_CMD"
}

func (i Intent) String() string {
	return string(i)
}

// IntentRule is the static validation contract for one intent.
type IntentRule struct {
	// RequiredKeywords must match at least one substring of the command
	// (case-insensitive). Empty means no requirement.
	RequiredKeywords []string
	// ForbiddenKeywords must not appear anywhere in the command.
	ForbiddenKeywords []string
	// MinDurationMS and MaxDurationMS bound the expected wall-clock time
	// of a verification run.
	MinDurationMS int64
	MaxDurationMS int64
	// ModifiesFiles declares whether the intent is expected to change
	// files on disk. Only unexpected mutation is flagged.
	ModifiesFiles bool
	// OutputPatterns are regular expressions; at least one must match
	// the captured output when any are declared.
	OutputPatterns []string
}
