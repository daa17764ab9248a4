package outcome_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ugm616/news-automation-n8n/internal/failure"
	"github.com/ugm616/news-automation-n8n/internal/outcome"
)

func TestSuccessWireShape(t *testing.T) {
	at := time.Date(2024, 6, 10, 8, 13, 20, 123456789, time.FixedZone("CEST", 2*3600))
	o := outcome.Success("Breaking: Local Election Results", "https://rumble.com/v5abc.html", at)

	data, err := json.Marshal(o)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"success":true,"video_url":"https://rumble.com/v5abc.html","title":"Breaking: Local Election Results","uploaded_at":"2024-06-10T06:13:20.123Z"}`
	if string(data) != want {
		t.Fatalf("got %s\nwant %s", data, want)
	}
	if o.ExitCode() != 0 {
		t.Fatalf("exit code = %d", o.ExitCode())
	}
}

func TestFailureWireShapeAndClassification(t *testing.T) {
	cause := &failure.TimeoutError{Condition: `element input[name="title"]`, Timeout: 5 * time.Minute}
	o := outcome.Failure(&failure.PublishError{State: "AssetUploaded", Cause: cause}).
		WithSnapshot("/tmp/error_1.png", nil)

	if o.Kind != failure.KindPublish || o.State != "AssetUploaded" {
		t.Fatalf("unexpected classification: kind=%s state=%s", o.Kind, o.State)
	}
	data, err := json.Marshal(o)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded) != 2 || decoded["success"] != false {
		t.Fatalf("unexpected failure record: %s", data)
	}
	msg, _ := decoded["error"].(string)
	if !strings.HasPrefix(msg, "PublishError: ") || !strings.Contains(msg, "AssetUploaded") {
		t.Fatalf("error text = %q", msg)
	}
	if strings.Contains(string(data), "error_1.png") {
		t.Fatal("snapshot path belongs on stderr, not in the record")
	}
	if o.ExitCode() != 1 {
		t.Fatalf("exit code = %d", o.ExitCode())
	}
}

func TestFailureRecordsAuthPhase(t *testing.T) {
	o := outcome.Failure(&failure.AuthError{Phase: "await_form", Cause: errors.New("boom")})
	if o.Kind != failure.KindAuth || o.State != "await_form" {
		t.Fatalf("kind=%s state=%s", o.Kind, o.State)
	}
}

func TestReporterEmitsOnce(t *testing.T) {
	var stdout, stderr bytes.Buffer
	r := outcome.NewReporter(&stdout, &stderr)

	failed := outcome.Failure(failure.Wrap(failure.ErrValidation, "request", "validate", "title is required", nil)).
		WithSnapshot("", errors.New("no page"))
	if code := r.Emit(failed); code != 1 {
		t.Fatalf("exit code = %d", code)
	}
	if code := r.Emit(outcome.Success("x", "y", time.Now())); code != 0 {
		t.Fatalf("second emit exit code = %d", code)
	}

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected exactly one stdout line, got %q", stdout.String())
	}
	if !strings.Contains(lines[0], `"success":false`) || !strings.Contains(lines[0], "ValidationError") {
		t.Fatalf("unexpected record %q", lines[0])
	}
	if !strings.Contains(stderr.String(), "snapshot not captured: no page") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}

func TestReporterWritesSnapshotPathToStderr(t *testing.T) {
	var stdout, stderr bytes.Buffer
	o := outcome.Failure(&failure.PublishError{State: "Submitted", Cause: errors.New("x")}).WithSnapshot("/snaps/error_9.png", nil)
	outcome.NewReporter(&stdout, &stderr).Emit(o)

	if strings.Contains(stdout.String(), "error_9.png") {
		t.Fatal("snapshot path leaked into stdout")
	}
	if !strings.Contains(stderr.String(), "snapshot saved to /snaps/error_9.png") {
		t.Fatalf("stderr = %q", stderr.String())
	}
}
