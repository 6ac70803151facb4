package domain

// ProjectFacts describes what detection learned about a project root.
// Stored under the ledger's "detected" map and used to key command
// suggestions by language.
type ProjectFacts struct {
	Language       string `json:"language,omitempty"`
	Framework      string `json:"framework,omitempty"`
	PackageManager string `json:"package_manager,omitempty"`
	TestFramework  string `json:"test_framework,omitempty"`
}

// Empty reports whether detection produced nothing useful yet.
func (f ProjectFacts) Empty() bool {
	return f.Language == "" || f.Language == "unknown"
}
