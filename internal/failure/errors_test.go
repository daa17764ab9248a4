package failure_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ugm616/news-automation-n8n/internal/failure"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := failure.Wrap(failure.ErrSession, "browser", "launch", "chrome exited", base)
	if !errors.Is(err, failure.ErrSession) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"browser", "launch", "chrome exited"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := failure.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, failure.ErrPublish) {
		t.Fatalf("expected publish marker default, got %v", err)
	}
	if !strings.Contains(err.Error(), "workflow failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestKindOf(t *testing.T) {
	timeout := &failure.TimeoutError{Condition: "title field", Timeout: time.Second}
	tests := []struct {
		name string
		err  error
		want failure.Kind
	}{
		{"nil", nil, ""},
		{"validation", failure.Wrap(failure.ErrValidation, "request", "parse", "title missing", nil), failure.KindValidation},
		{"configuration", failure.Wrap(failure.ErrConfiguration, "config", "load", "bad", nil), failure.KindValidation},
		{"session", failure.Wrap(failure.ErrSession, "browser", "launch", "", errors.New("exec")), failure.KindSession},
		{"auth", &failure.AuthError{Phase: "await_form", Cause: timeout}, failure.KindAuth},
		{"publish wraps timeout", &failure.PublishError{State: "AssetUploaded", Cause: timeout}, failure.KindPublish},
		{"bare timeout", timeout, failure.KindTimeout},
		{"unknown", errors.New("mystery"), failure.KindPublish},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := failure.KindOf(tc.err); got != tc.want {
				t.Fatalf("KindOf = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestStructuredErrorsUnwrap(t *testing.T) {
	cause := &failure.TimeoutError{Condition: "upload", Timeout: 5 * time.Minute, Last: errors.New("context destroyed")}
	err := &failure.PublishError{State: "AssetUploaded", Cause: cause}

	if !errors.Is(err, failure.ErrPublish) {
		t.Fatal("expected publish marker")
	}
	if !errors.Is(err, failure.ErrTimeout) {
		t.Fatal("expected timeout cause to be reachable")
	}
	state, ok := failure.StateOf(err)
	if !ok || state != "AssetUploaded" {
		t.Fatalf("StateOf = %q, %v", state, ok)
	}
	if !strings.Contains(err.Error(), "AssetUploaded") || !strings.Contains(err.Error(), "context destroyed") {
		t.Fatalf("unexpected message %q", err.Error())
	}

	authErr := &failure.AuthError{Phase: "open_login", Cause: failure.ErrElementMissing}
	if !errors.Is(authErr, failure.ErrAuth) || !errors.Is(authErr, failure.ErrElementMissing) {
		t.Fatalf("auth error should match marker and cause: %v", authErr)
	}
	if phase, ok := failure.PhaseOf(authErr); !ok || phase != "open_login" {
		t.Fatalf("PhaseOf = %q, %v", phase, ok)
	}
}
