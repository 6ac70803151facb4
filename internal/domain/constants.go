package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Timeout constants
const (
	// DefaultVerificationTimeout bounds a sandboxed verification run
	DefaultVerificationTimeout = 10 * time.Second
	// DefaultExecutionTimeout bounds a trusted command run
	DefaultExecutionTimeout = 5 * time.Minute
)

// Trust model constants
const (
	// TrustThreshold is the minimum confidence for the trust gate
	TrustThreshold = 0.7
	// ListingThreshold is the looser bar for known-command listings
	ListingThreshold = 0.5
	// MaxConfidence caps the score so a command is never fully trusted
	MaxConfidence = 0.98
	// VerifiedConfidenceFloor is the bump applied after verification
	VerifiedConfidenceFloor = 0.7
	// MinSuccessesForFullRate is the run count below which the raw
	// success rate is halved for insufficient evidence
	MinSuccessesForFullRate = 3
	// MaxRejectedCommands bounds the rejection ring buffer
	MaxRejectedCommands = 50
)

// Output limit constants
const (
	// DefaultOutputSampleBytes caps verification output samples
	DefaultOutputSampleBytes = 500
	// DefaultOutputTailBytes caps each stream returned from a trusted run
	DefaultOutputTailBytes = 1000
)

// Storage constants
const (
	// LedgerFormatVersion is written into every persisted ledger
	LedgerFormatVersion = "1.0"
	// DefaultDataDirName is the per-project data directory
	DefaultDataDirName = ".trustgate"
	// DefaultHistoryLimit is the default number of history records to display
	DefaultHistoryLimit = 20
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)
