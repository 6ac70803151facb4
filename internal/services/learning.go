package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doeshing/trustgate/internal/domain"
	"github.com/doeshing/trustgate/internal/pkg/pool"
	"github.com/doeshing/trustgate/internal/ports"
)

// LearningService drives the ask/teach/run protocol against the trust
// ledger. It is the only component allowed to move a command from
// "suggested" to "trusted", and it always does so through the full
// safety, validation, and sandbox pipeline.
type LearningService struct {
	Ledger      ports.LedgerStore
	Safety      ports.SafetyClassifier
	Validator   ports.IntentValidator
	Sandbox     ports.VerificationRunner
	Executor    ports.CommandExecutor
	Detector    ports.ProjectDetector
	Sources     []ports.CommandSource
	History     ports.HistoryRepository
	Logger      ports.Logger
	Config      domain.Config
	ProjectRoot string
}

func (s *LearningService) ready() error {
	if s.Ledger == nil || s.Safety == nil || s.Validator == nil || s.Sandbox == nil ||
		s.Executor == nil || s.Logger == nil {
		return errors.New("services.LearningService dependencies not satisfied")
	}
	return nil
}

// Ask reports a trusted command for the intent when one exists, or
// returns suggestions for the caller to teach from.
func (s *LearningService) Ask(ctx context.Context, req domain.AskRequest) (domain.AskResult, error) {
	if err := s.ready(); err != nil {
		return domain.AskResult{}, err
	}
	intent := domain.ParseIntent(req.Intent)

	if command, ok := s.Ledger.Command(intent); ok {
		return domain.AskResult{
			Status:  domain.StatusAlreadyKnown,
			Intent:  string(intent),
			Command: command,
			Message: fmt.Sprintf("I already know to use: %s", command),
		}, nil
	}

	return domain.AskResult{
		Status:      domain.StatusNeedAnswer,
		Intent:      string(intent),
		Question:    req.Question,
		Context:     req.Context,
		Suggestions: s.suggestions(intent),
		Message:     "Please provide the command to use",
	}, nil
}

// Teach verifies a candidate command and, on success, learns it as
// verified. The pipeline order is fixed: safety classifier, intent
// validator, sandboxed execution. Any failure is recorded as a
// rejection and reported with its reason.
func (s *LearningService) Teach(ctx context.Context, req domain.TeachRequest) (domain.TeachResult, error) {
	if err := s.ready(); err != nil {
		return domain.TeachResult{}, err
	}
	intent := domain.ParseIntent(req.Intent)
	verification := s.verify(ctx, intent, req.Command)
	return s.applyTeaching(intent, req, verification)
}

// TeachBatch verifies many candidates concurrently, then applies ledger
// writes sequentially in input order so results stay deterministic.
func (s *LearningService) TeachBatch(ctx context.Context, reqs []domain.TeachRequest) ([]domain.TeachResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	type verified struct {
		intent domain.Intent
		result domain.VerificationResult
	}

	p := pool.New[domain.TeachRequest, verified](0)
	outcomes := p.Process(reqs, func(req domain.TeachRequest) (verified, error) {
		intent := domain.ParseIntent(req.Intent)
		return verified{intent: intent, result: s.verify(ctx, intent, req.Command)}, nil
	})

	results := make([]domain.TeachResult, len(reqs))
	for _, outcome := range outcomes {
		result, err := s.applyTeaching(outcome.Value.intent, reqs[outcome.Index], outcome.Value.result)
		if err != nil {
			return nil, err
		}
		results[outcome.Index] = result
	}
	return results, nil
}

// Run executes an already-trusted command under the execution timeout
// and folds the outcome back into the ledger and run history.
func (s *LearningService) Run(ctx context.Context, req domain.RunRequest) (domain.RunResult, error) {
	if err := s.ready(); err != nil {
		return domain.RunResult{}, err
	}
	intent := domain.ParseIntent(req.Intent)

	command, ok := s.Ledger.Command(intent)
	if !ok {
		return domain.RunResult{
			Status:  domain.StatusUnknownCommand,
			Intent:  string(intent),
			Message: fmt.Sprintf("I don't know how to %s yet. Please teach me first.", intent),
		}, nil
	}

	timeout := s.Config.ExecutionTimeout()
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	execution, err := s.Executor.Execute(runCtx, command, s.ProjectRoot)
	s.recordOutcome(intent, command, execution)

	result := domain.RunResult{
		Intent:     string(intent),
		Command:    command,
		ExitCode:   execution.ExitCode,
		DurationMS: execution.DurationMS,
	}

	switch {
	case execution.TimedOut:
		result.Status = domain.StatusTimeout
		result.Message = fmt.Sprintf("Command timed out after %s", timeout)
	case err != nil:
		result.Status = domain.StatusError
		result.Message = err.Error()
	case execution.Success():
		result.Status = domain.StatusSuccess
	default:
		result.Status = domain.StatusFailure
	}

	tail := s.Config.TailLimit()
	result.Stdout = tailOf(execution.Stdout, tail)
	result.Stderr = tailOf(execution.Stderr, tail)
	return result, nil
}

// LearnProject runs detection, stores the facts, and reports which
// intents still need teaching.
func (s *LearningService) LearnProject(ctx context.Context) (domain.LearnProjectResult, error) {
	if err := s.ready(); err != nil {
		return domain.LearnProjectResult{}, err
	}

	facts := s.Ledger.ProjectFacts()
	if s.Detector != nil {
		if detected := s.Detector.Detect(s.ProjectRoot); !detected.Empty() {
			if err := s.Ledger.SetProjectFacts(detected); err != nil {
				s.Logger.Warn("failed to store detection results", map[string]interface{}{
					"error": err.Error(),
				})
			}
			facts = s.Ledger.ProjectFacts()
		}
	}

	known := s.Ledger.KnownCommands()
	var needed []string
	for _, intent := range domain.KnownIntents() {
		if _, ok := known[intent.Key()]; !ok {
			needed = append(needed, string(intent))
		}
	}

	if len(needed) == 0 {
		return domain.LearnProjectResult{
			Status:   domain.StatusAlreadyConfigured,
			Detected: facts,
			Known:    known,
			Message:  "I already know all the commands for this project",
		}, nil
	}

	questions := make(map[string]string, len(needed))
	for _, name := range needed {
		questions[name] = fmt.Sprintf("What command should I use for %s?", name)
	}
	return domain.LearnProjectResult{
		Status:    domain.StatusNeedTeaching,
		Detected:  facts,
		Known:     known,
		Needed:    needed,
		Questions: questions,
		Message:   "Please teach me these commands for your project",
	}, nil
}

// MemoryStatus is the read-only introspection view of the ledger.
func (s *LearningService) MemoryStatus() (domain.MemoryStatusResult, error) {
	if err := s.ready(); err != nil {
		return domain.MemoryStatusResult{}, err
	}
	doc := s.Ledger.Snapshot()

	commands := make(map[string]domain.CommandSummary, len(doc.Commands))
	for key, entry := range doc.Commands {
		commands[key] = domain.CommandSummary{
			Command:    entry.Command,
			Verified:   entry.Verified,
			Confidence: entry.Confidence,
			Successes:  entry.SuccessCount,
			Failures:   entry.FailureCount,
		}
	}

	status := domain.MemoryStatusResult{
		ProjectID:        doc.ProjectID,
		LedgerPath:       s.Ledger.Path(),
		Detected:         doc.Detected,
		Commands:         commands,
		RejectedCount:    len(doc.RejectedCommands),
		RecentRejections: recentRejections(doc.RejectedCommands, 5),
		LastUpdatedBy:    doc.LastUpdatedBy,
	}
	if !doc.LastUpdated.IsZero() {
		status.LastUpdated = doc.LastUpdated.Format(domain.TimestampFormat)
	}
	return status, nil
}

// verify runs the fixed pipeline: classifier first, validator second,
// sandbox last. The classifier cannot be bypassed; a dangerous command
// never reaches execution.
func (s *LearningService) verify(ctx context.Context, intent domain.Intent, command string) domain.VerificationResult {
	verdict := s.Safety.Evaluate(command)
	if verdict.Dangerous {
		return domain.VerificationResult{
			Reason: fmt.Sprintf("command contains dangerous pattern: %s", verdict.Message),
		}
	}

	if validation := s.Validator.Validate(command, intent); !validation.Valid {
		return domain.VerificationResult{Safe: true, Reason: validation.Reason}
	}

	rules := s.Validator.RulesFor(intent)
	return s.Sandbox.Verify(ctx, command, rules, s.ProjectRoot)
}

func (s *LearningService) applyTeaching(intent domain.Intent, req domain.TeachRequest, verification domain.VerificationResult) (domain.TeachResult, error) {
	source := req.Source
	if source == "" {
		source = "agent"
	}

	if !verification.Safe {
		s.recordRejection(req.Command, source, verification.Reason)
		return domain.TeachResult{
			Status:  domain.StatusRejected,
			Intent:  string(intent),
			Reason:  verification.Reason,
			Message: "Command rejected for safety reasons",
		}, nil
	}

	if !verification.Valid {
		s.recordRejection(req.Command, source, verification.Reason)
		return domain.TeachResult{
			Status:       domain.StatusInvalid,
			Intent:       string(intent),
			Reason:       verification.Reason,
			OutputSample: verification.OutputSample,
			DurationMS:   verification.DurationMS,
			Message:      "Command doesn't appear to work correctly",
		}, nil
	}

	if req.Save {
		if err := s.Ledger.Learn(intent, req.Command, source); err != nil {
			return domain.TeachResult{}, fmt.Errorf("learn command: %w", err)
		}
		details := map[string]interface{}{"duration_ms": verification.DurationMS}
		if err := s.Ledger.MarkVerified(intent, "agent_provided", details); err != nil {
			return domain.TeachResult{}, fmt.Errorf("mark verified: %w", err)
		}
	}

	return domain.TeachResult{
		Status:       domain.StatusLearned,
		Intent:       string(intent),
		Command:      req.Command,
		Verified:     true,
		OutputSample: verification.OutputSample,
		DurationMS:   verification.DurationMS,
		Message:      fmt.Sprintf("Thanks! I'll use '%s' for %s", req.Command, intent),
	}, nil
}

func (s *LearningService) recordRejection(command, source, reason string) {
	if err := s.Ledger.Reject(command, source, reason); err != nil {
		s.Logger.Warn("failed to record rejection", map[string]interface{}{
			"command": command,
			"error":   err.Error(),
		})
	}
}

func (s *LearningService) recordOutcome(intent domain.Intent, command string, execution domain.ExecutionResult) {
	success := execution.Success()
	if err := s.Ledger.UpdateResult(intent, success, execution.DurationMS); err != nil {
		s.Logger.Warn("failed to update command result", map[string]interface{}{
			"intent": intent.Key(),
			"error":  err.Error(),
		})
	}

	if s.History == nil {
		return
	}
	record := domain.ExecutionRecord{
		Timestamp:  time.Now(),
		Intent:     intent.Key(),
		Command:    command,
		Success:    success,
		ExitCode:   execution.ExitCode,
		DurationMS: execution.DurationMS,
		TimedOut:   execution.TimedOut,
	}
	if err := s.History.Save(record); err != nil {
		s.Logger.Warn("failed to record run history", map[string]interface{}{
			"intent": intent.Key(),
			"error":  err.Error(),
		})
	}
}

// suggestions merges candidates from every source, preserving order and
// dropping duplicates.
func (s *LearningService) suggestions(intent domain.Intent) []string {
	facts := s.Ledger.ProjectFacts()
	if facts.Empty() && s.Detector != nil {
		facts = s.Detector.Detect(s.ProjectRoot)
	}

	var merged []string
	seen := map[string]bool{}
	for _, source := range s.Sources {
		for _, candidate := range source.Propose(intent, facts) {
			if seen[candidate] {
				continue
			}
			seen[candidate] = true
			merged = append(merged, candidate)
		}
	}
	return merged
}

func tailOf(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return s[len(s)-limit:]
}

// recentRejections returns up to limit entries from the end of the
// ring, most recent first.
func recentRejections(ring []domain.RejectedCommand, limit int) []domain.RejectedCommand {
	if len(ring) == 0 || limit <= 0 {
		return nil
	}
	if len(ring) < limit {
		limit = len(ring)
	}
	recent := make([]domain.RejectedCommand, 0, limit)
	for i := len(ring) - 1; i >= len(ring)-limit; i-- {
		recent = append(recent, ring[i])
	}
	return recent
}
