package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/doeshing/trustgate/internal/domain"
)

func printJSON(out io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(data))
	return nil
}

func renderAsk(out io.Writer, result domain.AskResult) {
	fmt.Fprintln(out, result.Message)
	if result.Status == domain.StatusAlreadyKnown {
		return
	}
	if len(result.Suggestions) > 0 {
		fmt.Fprintln(out, "Suggestions:")
		for _, suggestion := range result.Suggestions {
			fmt.Fprintf(out, "  %s\n", suggestion)
		}
	}
}

func renderTeach(out io.Writer, result domain.TeachResult) {
	fmt.Fprintln(out, result.Message)
	if result.Reason != "" {
		fmt.Fprintf(out, "Reason: %s\n", result.Reason)
	}
	if result.Status == domain.StatusLearned && result.DurationMS > 0 {
		fmt.Fprintf(out, "Verified in %dms\n", result.DurationMS)
	}
}

func renderTeachBatch(out io.Writer, results []domain.TeachResult) {
	for _, result := range results {
		line := fmt.Sprintf("%s: %s", result.Intent, result.Status)
		if result.Reason != "" {
			line += " (" + result.Reason + ")"
		}
		fmt.Fprintln(out, line)
	}
}

func renderRun(out io.Writer, result domain.RunResult) {
	if result.Status == domain.StatusUnknownCommand {
		fmt.Fprintln(out, result.Message)
		return
	}
	fmt.Fprintf(out, "$ %s\n", result.Command)
	writeStream(out, result.Stdout)
	writeStream(out, result.Stderr)
	switch result.Status {
	case domain.StatusSuccess:
		fmt.Fprintf(out, "Completed in %dms\n", result.DurationMS)
	case domain.StatusTimeout:
		fmt.Fprintln(out, result.Message)
	case domain.StatusError:
		fmt.Fprintf(out, "Error: %s\n", result.Message)
	default:
		fmt.Fprintf(out, "Exited with code %d after %dms\n", result.ExitCode, result.DurationMS)
	}
}

func writeStream(out io.Writer, stream string) {
	if stream == "" {
		return
	}
	fmt.Fprint(out, stream)
	if !strings.HasSuffix(stream, "\n") {
		fmt.Fprintln(out)
	}
}

func renderLearnProject(out io.Writer, result domain.LearnProjectResult) {
	if !result.Detected.Empty() {
		fmt.Fprintf(out, "Detected: %s\n", describeFacts(result.Detected))
	}
	if len(result.Known) > 0 {
		fmt.Fprintln(out, "Known commands:")
		for _, key := range sortedKeys(result.Known) {
			fmt.Fprintf(out, "  %s = %s\n", key, result.Known[key])
		}
	}
	fmt.Fprintln(out, result.Message)
	for _, intent := range result.Needed {
		fmt.Fprintf(out, "  %s\n", result.Questions[intent])
	}
}

func describeFacts(facts domain.ProjectFacts) string {
	parts := []string{facts.Language}
	for _, detail := range []string{facts.Framework, facts.PackageManager, facts.TestFramework} {
		if detail != "" {
			parts = append(parts, detail)
		}
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return fmt.Sprintf("%s (%s)", parts[0], strings.Join(parts[1:], ", "))
}

func renderStatus(out io.Writer, status domain.MemoryStatusResult) {
	fmt.Fprintf(out, "Project %s\n", status.ProjectID)
	fmt.Fprintf(out, "Ledger: %s\n", status.LedgerPath)
	if len(status.Commands) == 0 {
		fmt.Fprintln(out, "No commands learned yet.")
	} else {
		fmt.Fprintln(out, "Commands:")
		for _, key := range sortedKeys(status.Commands) {
			summary := status.Commands[key]
			state := "unverified"
			if summary.Verified {
				state = "verified"
			}
			fmt.Fprintf(out, "  %s = %s [%s, confidence %.2f, %d ok / %d failed]\n",
				key, summary.Command, state, summary.Confidence, summary.Successes, summary.Failures)
		}
	}
	if status.RejectedCount > 0 {
		fmt.Fprintf(out, "Rejected commands: %d\n", status.RejectedCount)
		for _, rejection := range status.RecentRejections {
			fmt.Fprintf(out, "  %s (%s): %s\n", rejection.Command, rejection.Source, rejection.Reason)
		}
	}
	if status.LastUpdated != "" {
		fmt.Fprintf(out, "Last updated %s by %s\n", status.LastUpdated, status.LastUpdatedBy)
	}
}

func renderHistory(out io.Writer, records []domain.ExecutionRecord) {
	if len(records) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return
	}
	for _, record := range records {
		status := "ok"
		switch {
		case record.TimedOut:
			status = "timeout"
		case !record.Success:
			status = "failed"
		}
		fmt.Fprintf(out, "%s | %-8s | %-7s | %6dms | %s\n",
			record.Timestamp.Format(time.RFC3339), record.Intent, status, record.DurationMS, record.Command)
	}
}

func renderDoctorReport(out io.Writer, report domain.HealthReport) {
	for _, check := range report.Checks {
		fmt.Fprintf(out, "[%s] %s - %s\n", strings.ToUpper(string(check.Status)), check.Name, check.Details)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
