package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/doeshing/trustgate/internal/domain"
	"github.com/doeshing/trustgate/internal/ports"
)

// DoctorService runs environment diagnostics.
type DoctorService struct {
	ConfigProvider ports.ConfigProvider
	ConfigPath     string
	Safety         ports.SafetyClassifier
	Validator      ports.IntentValidator
	Detector       ports.ProjectDetector
	Ledger         ports.LedgerStore
	History        ports.HistoryRepository
	Executor       ports.CommandExecutor
	DataDir        string
	AuditPath      string
	ProjectRoot    string
}

// Run executes checks and returns a report.
func (s *DoctorService) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("version %s at %s", cfg.ConfigFormatVersion, s.ConfigPath)))

	checks = append(checks, dataDirCheck(s.DataDir))
	checks = append(checks, s.shellCheck(ctx))
	checks = append(checks, s.safetyCheck())
	checks = append(checks, s.intentCheck())

	if s.Detector != nil {
		if facts := s.Detector.Detect(s.ProjectRoot); !facts.Empty() {
			checks = append(checks, ok("Project detection", fmt.Sprintf("language %s", facts.Language)))
		} else {
			checks = append(checks, warn("Project detection", "no project markers found"))
		}
	}

	if s.Ledger != nil {
		doc := s.Ledger.Snapshot()
		checks = append(checks, ok("Trust ledger", fmt.Sprintf("project %s, %d commands (%s)", doc.ProjectID, len(doc.Commands), s.Ledger.Path())))
	}

	if s.History != nil {
		if path := s.History.Path(); path != "" {
			checks = append(checks, ok("Run history", path))
		} else {
			checks = append(checks, warn("Run history", "disabled"))
		}
	}

	checks = append(checks, auditCheck(s.AuditPath))

	return domain.HealthReport{Checks: checks}, nil
}

func (s *DoctorService) shellCheck(ctx context.Context) domain.HealthCheck {
	if s.Executor == nil {
		return warn("Shell", "executor not initialized")
	}
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	result, err := s.Executor.Execute(probeCtx, "echo trustgate", s.ProjectRoot)
	if err != nil {
		return fail("Shell", err.Error())
	}
	if !result.Success() {
		return fail("Shell", fmt.Sprintf("probe exited with code %d", result.ExitCode))
	}
	return ok("Shell", fmt.Sprintf("probe completed in %dms", result.DurationMS))
}

func (s *DoctorService) safetyCheck() domain.HealthCheck {
	if s.Safety == nil {
		return fail("Safety patterns", "classifier not initialized")
	}
	if verdict := s.Safety.Evaluate("rm -rf /"); !verdict.Dangerous {
		return fail("Safety patterns", "classifier passed a known destructive command")
	}
	details := "destructive commands blocked"
	if counter, okCount := s.Safety.(interface{ PatternCount() int }); okCount {
		details = fmt.Sprintf("%d patterns loaded", counter.PatternCount())
	}
	return ok("Safety patterns", details)
}

func (s *DoctorService) intentCheck() domain.HealthCheck {
	if s.Validator == nil {
		return warn("Intent rules", "validator not initialized")
	}
	covered := 0
	for _, intent := range domain.KnownIntents() {
		if rules := s.Validator.RulesFor(intent); len(rules.RequiredKeywords) > 0 || len(rules.OutputPatterns) > 0 {
			covered++
		}
	}
	return ok("Intent rules", fmt.Sprintf("rules for %d of %d intents", covered, len(domain.KnownIntents())))
}

func dataDirCheck(dir string) domain.HealthCheck {
	if dir == "" {
		return warn("Data directory", "not configured")
	}
	if err := os.MkdirAll(dir, domain.DirectoryPermissions); err != nil {
		return fail("Data directory", err.Error())
	}
	probe := filepath.Join(dir, ".doctor-probe")
	if err := os.WriteFile(probe, []byte("ok"), domain.SecureFilePermissions); err != nil {
		return fail("Data directory", fmt.Sprintf("not writable: %v", err))
	}
	os.Remove(probe)
	return ok("Data directory", dir)
}

func auditCheck(path string) domain.HealthCheck {
	if path == "" {
		return warn("Audit log", "not configured")
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, domain.SecureFilePermissions)
	if err != nil {
		return fail("Audit log", fmt.Sprintf("not appendable: %v", err))
	}
	file.Close()
	return ok("Audit log", path)
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
