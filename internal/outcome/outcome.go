// Package outcome builds and emits the single machine-readable record an
// invocation produces.
//
// The wire shape is fixed for the orchestrator that consumes it:
//
//	{"success":true,"video_url":"...","title":"...","uploaded_at":"2024-06-10T06:13:20.123Z"}
//	{"success":false,"error":"PublishError: publish failed at AssetUploaded: ..."}
//
// Everything else on Outcome (kind, state, snapshot path, run id) feeds the
// history ledger and stderr diagnostics, not stdout.
package outcome

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ugm616/news-automation-n8n/internal/failure"
)

// TimestampLayout matches JavaScript's Date.toISOString.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Outcome is the result of one invocation.
type Outcome struct {
	Success      bool
	VideoURL     string
	Title        string
	UploadedAt   time.Time
	Kind         failure.Kind
	Message      string
	State        string
	SnapshotPath string
	SnapshotErr  string
	RunID        string
	Skipped      []string
}

// Success builds a successful outcome.
func Success(title, videoURL string, uploadedAt time.Time) Outcome {
	return Outcome{
		Success:    true,
		VideoURL:   videoURL,
		Title:      title,
		UploadedAt: uploadedAt.UTC(),
	}
}

// Failure classifies err into a failed outcome.
func Failure(err error) Outcome {
	if err == nil {
		err = errors.New("unknown failure")
	}
	o := Outcome{
		Kind:    failure.KindOf(err),
		Message: strings.TrimSpace(err.Error()),
	}
	if state, ok := failure.StateOf(err); ok {
		o.State = state
	} else if phase, ok := failure.PhaseOf(err); ok {
		o.State = phase
	}
	return o
}

// WithSnapshot records the result of a failure capture.
func (o Outcome) WithSnapshot(path string, captureErr error) Outcome {
	o.SnapshotPath = path
	if captureErr != nil {
		o.SnapshotErr = captureErr.Error()
	}
	return o
}

// ErrorText is the failure string placed in the wire record.
func (o Outcome) ErrorText() string {
	if o.Success {
		return ""
	}
	if o.Kind == "" {
		return o.Message
	}
	return fmt.Sprintf("%s: %s", o.Kind, o.Message)
}

// ExitCode is 0 for success and 1 otherwise.
func (o Outcome) ExitCode() int {
	if o.Success {
		return 0
	}
	return 1
}

type successRecord struct {
	Success    bool   `json:"success"`
	VideoURL   string `json:"video_url"`
	Title      string `json:"title"`
	UploadedAt string `json:"uploaded_at"`
}

type failureRecord struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// MarshalJSON renders the wire record.
func (o Outcome) MarshalJSON() ([]byte, error) {
	if o.Success {
		return json.Marshal(successRecord{
			Success:    true,
			VideoURL:   o.VideoURL,
			Title:      o.Title,
			UploadedAt: o.UploadedAt.UTC().Format(TimestampLayout),
		})
	}
	return json.Marshal(failureRecord{Success: false, Error: o.ErrorText()})
}
