// Package ledger persists per-project trust state as a JSON document.
//
// Every mutating call rewrites the whole document and appends one audit
// line. Writers from different processes are serialized through a
// sidecar flock; the document itself is replaced atomically so readers
// never observe a torn write.
package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/trustgate/internal/domain"
	"github.com/doeshing/trustgate/internal/ports"
)

const (
	ledgerFileName = "ledger.json"
	lockFileName   = "ledger.lock"
)

// Store owns the on-disk trust ledger for one project.
type Store struct {
	mu       sync.Mutex
	path     string
	lockPath string
	audit    ports.AuditLogger
	logger   ports.Logger
	doc      domain.TrustLedger
}

var _ ports.LedgerStore = (*Store)(nil)

// NewStore opens (or initializes) the ledger under dataDir. A missing
// document starts fresh with a new project id; a corrupt one is logged
// and also starts fresh rather than failing the whole system.
func NewStore(dataDir string, audit ports.AuditLogger, logger ports.Logger) (*Store, error) {
	if err := os.MkdirAll(dataDir, domain.DirectoryPermissions); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	s := &Store{
		path:     filepath.Join(dataDir, ledgerFileName),
		lockPath: filepath.Join(dataDir, lockFileName),
		audit:    audit,
		logger:   logger,
	}
	s.doc = s.read(time.Now())
	return s, nil
}

// Path reports the location of the persisted document.
func (s *Store) Path() string {
	return s.path
}

// Command returns the stored command for the intent when it passes the
// trust gate (verified and confidence at or above the threshold). Every
// hit is recorded in the audit trail.
func (s *Store) Command(intent domain.Intent) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.doc.TrustedCommand(intent)
	if !ok {
		return "", false
	}
	s.audit.Record(domain.EventUseLearnedCommand, map[string]interface{}{
		"type":       intent.Key(),
		"command":    entry.Command,
		"confidence": entry.Confidence,
	})
	return entry.Command, true
}

// Entry returns the raw entry for the intent regardless of trust.
func (s *Store) Entry(intent domain.Intent) (domain.CommandEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.doc.Commands[intent.Key()]
	return entry, ok
}

// Learn records a new command for the intent. Any previous entry is
// overwritten and trust restarts from zero.
func (s *Store) Learn(intent domain.Intent, command, source string) error {
	now := time.Now()
	err := s.mutate(source, now, func(doc *domain.TrustLedger) bool {
		doc.Commands[intent.Key()] = domain.NewCommandEntry(command, source, now)
		return true
	})
	if err != nil {
		return err
	}
	s.audit.Record(domain.EventLearnCommand, map[string]interface{}{
		"type":     intent.Key(),
		"command":  command,
		"source":   source,
		"verified": false,
	})
	return nil
}

// UpdateResult folds one execution outcome into the entry's counters
// and recomputes confidence. Unknown intents are a no-op.
func (s *Store) UpdateResult(intent domain.Intent, success bool, durationMS int64) error {
	now := time.Now()
	var updated domain.CommandEntry
	found := false

	err := s.mutate("unknown", now, func(doc *domain.TrustLedger) bool {
		entry, ok := doc.Commands[intent.Key()]
		if !ok {
			return false
		}
		entry.RecordResult(success, durationMS, now)
		doc.Commands[intent.Key()] = entry
		updated = entry
		found = true
		return true
	})
	if err != nil || !found {
		return err
	}

	result := "failure"
	if success {
		result = "success"
	}
	s.audit.Record(domain.EventExecuteCommand, map[string]interface{}{
		"type":        intent.Key(),
		"command":     updated.Command,
		"result":      result,
		"duration_ms": durationMS,
		"confidence":  updated.Confidence,
	})
	return nil
}

// MarkVerified flags the entry as verified and floors its confidence at
// the trust threshold. Unknown intents are a no-op.
func (s *Store) MarkVerified(intent domain.Intent, method string, details map[string]interface{}) error {
	now := time.Now()
	var updated domain.CommandEntry
	found := false

	err := s.mutate("unknown", now, func(doc *domain.TrustLedger) bool {
		entry, ok := doc.Commands[intent.Key()]
		if !ok {
			return false
		}
		entry.MarkVerified(method, details, now)
		doc.Commands[intent.Key()] = entry
		updated = entry
		found = true
		return true
	})
	if err != nil || !found {
		return err
	}

	s.audit.Record(domain.EventVerifyCommand, map[string]interface{}{
		"type":    intent.Key(),
		"command": updated.Command,
		"method":  method,
		"result":  "verified",
	})
	return nil
}

// Reject appends a rejection record to the bounded ring buffer.
func (s *Store) Reject(command, source, reason string) error {
	now := time.Now()
	err := s.mutate("unknown", now, func(doc *domain.TrustLedger) bool {
		doc.AppendRejection(domain.RejectedCommand{
			Command:   command,
			Source:    source,
			Reason:    reason,
			Timestamp: now,
		})
		return true
	})
	if err != nil {
		return err
	}
	s.audit.Record(domain.EventRejectCommand, map[string]interface{}{
		"command": command,
		"source":  source,
		"reason":  reason,
	})
	return nil
}

// Clear deletes the entry for the intent so it can be re-learned.
// Clearing an unknown intent is a no-op.
func (s *Store) Clear(intent domain.Intent) error {
	now := time.Now()
	cleared := false

	err := s.mutate("unknown", now, func(doc *domain.TrustLedger) bool {
		if _, ok := doc.Commands[intent.Key()]; !ok {
			return false
		}
		delete(doc.Commands, intent.Key())
		cleared = true
		return true
	})
	if err != nil || !cleared {
		return err
	}
	s.audit.Record(domain.EventClearCommand, map[string]interface{}{
		"type": intent.Key(),
	})
	return nil
}

// KnownCommands returns every verified command above the listing
// threshold, keyed by intent.
func (s *Store) KnownCommands() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.ListableCommands()
}

// SetProjectFacts merges detection results into the ledger. Empty
// fields leave the stored value untouched.
func (s *Store) SetProjectFacts(facts domain.ProjectFacts) error {
	now := time.Now()
	return s.mutate("unknown", now, func(doc *domain.TrustLedger) bool {
		if facts.Language != "" {
			doc.Detected.Language = facts.Language
		}
		if facts.Framework != "" {
			doc.Detected.Framework = facts.Framework
		}
		if facts.PackageManager != "" {
			doc.Detected.PackageManager = facts.PackageManager
		}
		if facts.TestFramework != "" {
			doc.Detected.TestFramework = facts.TestFramework
		}
		return true
	})
}

// ProjectFacts returns the stored detection results.
func (s *Store) ProjectFacts() domain.ProjectFacts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Detected
}

// Snapshot returns a detached copy of the whole document.
func (s *Store) Snapshot() domain.TrustLedger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// mutate runs fn against the freshest document under both the process
// mutex and the cross-process flock, then persists and adopts the
// result. When fn reports no change nothing is written.
func (s *Store) mutate(updatedBy string, now time.Time, fn func(doc *domain.TrustLedger) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, err := os.OpenFile(s.lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger lock: %w", err)
	}
	defer lock.Close()

	if err := syscall.Flock(int(lock.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("lock ledger: %w", err)
	}
	defer func() {
		_ = syscall.Flock(int(lock.Fd()), syscall.LOCK_UN)
	}()

	doc := s.read(now)
	if !fn(&doc) {
		return nil
	}

	doc.LastUpdated = now
	doc.LastUpdatedBy = updatedBy
	if err := s.write(doc); err != nil {
		return err
	}
	s.doc = doc
	return nil
}

// read loads the document from disk. A missing file keeps the current
// in-memory document (or initializes one); a corrupt file starts fresh.
func (s *Store) read(now time.Time) domain.TrustLedger {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if s.doc.ProjectID != "" {
			return s.doc
		}
		return s.fresh(now)
	}

	var doc domain.TrustLedger
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("could not parse ledger, starting fresh", map[string]interface{}{
			"path":  s.path,
			"error": err.Error(),
		})
		return s.fresh(now)
	}
	doc.EnsureMaps()
	return doc
}

func (s *Store) fresh(now time.Time) domain.TrustLedger {
	doc := domain.NewTrustLedger(uuid.NewString(), now)
	doc.LastUpdatedBy = "unknown"
	return doc
}

// write replaces the document atomically via a temp file rename so a
// concurrent reader never sees a partial write.
func (s *Store) write(doc domain.TrustLedger) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), domain.SecureFilePermissions); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}
