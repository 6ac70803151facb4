package domain

import "time"

// CommandEntry is the per-intent record of a learned command.
type CommandEntry struct {
	Command           string                 `json:"command"`
	LearnedAt         time.Time              `json:"learned_at"`
	LearnedFrom       string                 `json:"learned_from"`
	Verified          bool                   `json:"verified"`
	SuccessCount      int                    `json:"success_count"`
	FailureCount      int                    `json:"failure_count"`
	Confidence        float64                `json:"confidence"`
	NeedsVerification bool                   `json:"needs_verification"`
	Verification      map[string]interface{} `json:"verification,omitempty"`
	TypicalDurationMS int64                  `json:"typical_duration_ms,omitempty"`
	LastSuccess       *time.Time             `json:"last_success,omitempty"`
	LastFailure       *time.Time             `json:"last_failure,omitempty"`
}

// NewCommandEntry creates a fresh, untrusted entry. Teaching the same
// intent again always restarts trust from zero.
func NewCommandEntry(command, source string, at time.Time) CommandEntry {
	return CommandEntry{
		Command:           command,
		LearnedAt:         at,
		LearnedFrom:       source,
		Verified:          false,
		SuccessCount:      0,
		FailureCount:      0,
		Confidence:        0.0,
		NeedsVerification: true,
	}
}

// Trusted reports whether the entry passes the trust gate.
func (e CommandEntry) Trusted() bool {
	return e.Verified && e.Confidence >= TrustThreshold
}

// Listable reports whether the entry is shown in known-command listings,
// a looser bar than the trust gate.
func (e CommandEntry) Listable() bool {
	return e.Verified && e.Confidence > ListingThreshold
}

// RecordResult folds one execution outcome into the counters and
// recomputes confidence. The first success pins the typical duration.
func (e *CommandEntry) RecordResult(success bool, durationMS int64, at time.Time) {
	if success {
		e.SuccessCount++
		t := at
		e.LastSuccess = &t
		if e.TypicalDurationMS == 0 && durationMS > 0 {
			e.TypicalDurationMS = durationMS
		}
	} else {
		e.FailureCount++
		t := at
		e.LastFailure = &t
	}
	e.Confidence = ConfidenceScore(e.SuccessCount, e.FailureCount)
}

// MarkVerified flags the entry as independently verified and floors the
// confidence at the trust threshold. Confidence is never lowered here.
func (e *CommandEntry) MarkVerified(method string, details map[string]interface{}, at time.Time) {
	e.Verified = true
	e.NeedsVerification = false
	verification := map[string]interface{}{
		"method":      method,
		"verified_at": at.Format(TimestampFormat),
	}
	for key, value := range details {
		verification[key] = value
	}
	e.Verification = verification
	if e.Confidence < VerifiedConfidenceFloor {
		e.Confidence = VerifiedConfidenceFloor
	}
}

// ConfidenceScore derives the bounded empirical confidence from the
// success and failure counters. With no runs at all the score is zero;
// fewer than three successes halves the raw rate; the score is capped
// below full trust.
func ConfidenceScore(successes, failures int) float64 {
	total := successes + failures
	if total == 0 {
		return 0.0
	}
	score := float64(successes) / float64(total)
	if successes < MinSuccessesForFullRate {
		score *= 0.5
	}
	if score > MaxConfidence {
		return MaxConfidence
	}
	return score
}

// RejectedCommand is an immutable record of a command that failed
// verification.
type RejectedCommand struct {
	Command   string    `json:"command"`
	Source    string    `json:"source"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}
