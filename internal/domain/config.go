package domain

// Config is the user-level configuration loaded from
// ~/.trustgate/config.yaml.
type Config struct {
	ConfigFormatVersion string               `yaml:"version" json:"version"`
	DataDir             string               `yaml:"data_dir" json:"data_dir"`
	Security            SecuritySettings     `yaml:"security" json:"security"`
	Verification        VerificationSettings `yaml:"verification" json:"verification"`
	Execution           ExecutionSettings    `yaml:"execution" json:"execution"`
	History             HistorySettings      `yaml:"history" json:"history"`
}

// SecuritySettings tunes the safety classifier. The built-in destructive
// patterns always apply; extra patterns only ever extend the list.
type SecuritySettings struct {
	ExtraPatterns []string `yaml:"extra_patterns" json:"extra_patterns"`
}

// VerificationSettings bounds sandboxed verification runs.
type VerificationSettings struct {
	TimeoutSeconds    int `yaml:"timeout_seconds" json:"timeout_seconds"`
	OutputSampleBytes int `yaml:"output_sample_bytes" json:"output_sample_bytes"`
}

// ExecutionSettings bounds trusted command runs.
type ExecutionSettings struct {
	TimeoutSeconds  int    `yaml:"timeout_seconds" json:"timeout_seconds"`
	OutputTailBytes int    `yaml:"output_tail_bytes" json:"output_tail_bytes"`
	Shell           string `yaml:"shell" json:"shell"`
}

// HistorySettings selects the execution-history backend.
type HistorySettings struct {
	// Backend is one of "sqlite", "jsonl" or "off".
	Backend string `yaml:"backend" json:"backend"`
	Limit   int    `yaml:"limit" json:"limit"`
}
