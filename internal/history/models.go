package history

import (
	"strings"
	"time"
)

// Attempt is one recorded invocation.
type Attempt struct {
	ID            int64
	RunID         string
	Title         string
	AssetPath     string
	StateReached  string
	Success       bool
	VideoURL      string
	ErrorKind     string
	ErrorMessage  string
	SnapshotPath  string
	SkippedFields []string
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Duration is the wall time the attempt took.
func (a Attempt) Duration() time.Duration {
	if a.StartedAt.IsZero() || a.FinishedAt.IsZero() {
		return 0
	}
	return a.FinishedAt.Sub(a.StartedAt)
}

// Status renders the attempt as a short label for tables.
func (a Attempt) Status() string {
	if a.Success {
		return "published"
	}
	if a.ErrorKind == "" {
		return "failed"
	}
	return strings.ToLower(strings.TrimSuffix(a.ErrorKind, "Error")) + " failure"
}
