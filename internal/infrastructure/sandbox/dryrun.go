package sandbox

import "strings"

// rewriteRule maps a tool name to the flag that turns its invocation
// into an inert dry run.
type rewriteRule struct {
	tool string
	flag string
}

// Rewrite order matters: the first matching tool wins.
var rewriteRules = []rewriteRule{
	{tool: "pytest", flag: "--collect-only"},
	{tool: "ruff", flag: "--no-fix"},
	{tool: "black", flag: "--check"},
	{tool: "prettier", flag: "--check"},
	{tool: "eslint", flag: "--no-fix"},
	{tool: "npm test", flag: "-- --listTests"},
	{tool: "go test", flag: "-list=.*"},
	{tool: "make", flag: "-n"},
	{tool: "cargo", flag: "--dry-run"},
}

// DryRunRewrite returns an inert form of the command when a dry-run
// flag is known for the detected tool. Commands without a known
// mapping, or that already carry the flag, are returned unchanged.
func DryRunRewrite(command string) string {
	for _, rule := range rewriteRules {
		if !strings.Contains(command, rule.tool) || strings.Contains(command, rule.flag) {
			continue
		}
		if strings.Contains(command, " -- ") {
			// Keep pass-through arguments after the separator.
			return strings.Replace(command, " -- ", " "+rule.flag+" -- ", 1)
		}
		return command + " " + rule.flag
	}
	return command
}
