package failure

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrValidation     = errors.New("validation error")
	ErrConfiguration  = errors.New("configuration error")
	ErrSession        = errors.New("session error")
	ErrAuth           = errors.New("auth error")
	ErrPublish        = errors.New("publish error")
	ErrTimeout        = errors.New("timeout")
	ErrElementMissing = errors.New("element missing")
)

// Kind names the outcome classification reported for a failed invocation.
type Kind string

const (
	KindValidation Kind = "ValidationError"
	KindSession    Kind = "SessionError"
	KindAuth       Kind = "AuthError"
	KindPublish    Kind = "PublishError"
	KindTimeout    Kind = "TimeoutError"
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrPublish
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// AuthError reports a failed login phase.
type AuthError struct {
	Phase string
	Cause error
}

func (e *AuthError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("auth failed during %s", e.Phase)
	}
	return fmt.Sprintf("auth failed during %s: %v", e.Phase, e.Cause)
}

func (e *AuthError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrAuth}
	}
	return []error{ErrAuth, e.Cause}
}

// PublishError reports a failed transition into State.
type PublishError struct {
	State string
	Cause error
}

func (e *PublishError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("publish failed at %s", e.State)
	}
	return fmt.Sprintf("publish failed at %s: %v", e.State, e.Cause)
}

func (e *PublishError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrPublish}
	}
	return []error{ErrPublish, e.Cause}
}

// TimeoutError reports a bounded wait that expired before its condition held.
// Last carries the most recent check error, if any, for diagnosis.
type TimeoutError struct {
	Condition string
	Timeout   time.Duration
	Last      error
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("timed out after %s waiting for %s", e.Timeout, e.Condition)
	if e.Last != nil {
		msg += fmt.Sprintf(" (last check error: %v)", e.Last)
	}
	return msg
}

func (e *TimeoutError) Unwrap() []error {
	if e.Last == nil {
		return []error{ErrTimeout}
	}
	return []error{ErrTimeout, e.Last}
}

// KindOf classifies err into the outcome kind reported to the caller. Auth
// and publish errors win over their causes so a timeout inside a publish step
// is still reported as a publish failure. Unclassified errors count as
// publish failures because they can only arise once the workflow has started.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return KindAuth
	}
	var publishErr *PublishError
	if errors.As(err, &publishErr) {
		return KindPublish
	}
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConfiguration):
		return KindValidation
	case errors.Is(err, ErrSession):
		return KindSession
	case errors.Is(err, ErrAuth):
		return KindAuth
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	default:
		return KindPublish
	}
}

// StateOf returns the publish state recorded on err, if any.
func StateOf(err error) (string, bool) {
	var publishErr *PublishError
	if errors.As(err, &publishErr) {
		return publishErr.State, true
	}
	return "", false
}

// PhaseOf returns the auth phase recorded on err, if any.
func PhaseOf(err error) (string, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Phase, true
	}
	return "", false
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "workflow failure"
	}
	return strings.Join(parts, ": ")
}
