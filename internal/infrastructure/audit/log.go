// Package audit appends structured events to a per-project JSONL trail.
// The trail is write-only from this subsystem's point of view: lines are
// appended, never truncated or rewritten.
package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/doeshing/trustgate/internal/domain"
	"github.com/doeshing/trustgate/internal/ports"
)

// FileName is the audit trail's file name inside a project data directory.
const FileName = "audit.jsonl"

// Log writes one JSON object per line to an append-only file.
type Log struct {
	mu     sync.Mutex
	path   string
	logger ports.Logger
}

var _ ports.AuditLogger = (*Log)(nil)

// NewLog creates an audit log backed by the file at path. The file and
// its parent directory are created on first write.
func NewLog(path string, logger ports.Logger) *Log {
	return &Log{path: path, logger: logger}
}

// Path reports the location of the audit file.
func (l *Log) Path() string {
	return l.path
}

// Record appends one event line. Failures are logged and swallowed; an
// unwritable audit trail must never abort the operation it describes.
func (l *Log) Record(event string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := make(map[string]interface{}, len(fields)+2)
	for key, value := range fields {
		entry[key] = value
	}
	entry["timestamp"] = time.Now().Format(domain.TimestampFormat)
	entry["event"] = event

	line, err := json.Marshal(entry)
	if err != nil {
		l.logger.Warn("failed to encode audit event", map[string]interface{}{
			"event": event,
			"error": err.Error(),
		})
		return
	}

	if err := os.MkdirAll(filepath.Dir(l.path), domain.DirectoryPermissions); err != nil {
		l.logger.Warn("failed to create audit directory", map[string]interface{}{
			"path":  l.path,
			"error": err.Error(),
		})
		return
	}

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, domain.SecureFilePermissions)
	if err != nil {
		l.logger.Warn("failed to open audit log", map[string]interface{}{
			"path":  l.path,
			"error": err.Error(),
		})
		return
	}
	defer file.Close()

	if _, err := file.Write(append(line, '\n')); err != nil {
		l.logger.Warn("failed to append audit event", map[string]interface{}{
			"path":  l.path,
			"error": err.Error(),
		})
	}
}
