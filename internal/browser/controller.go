package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/ugm616/news-automation-n8n/internal/failure"
	"github.com/ugm616/news-automation-n8n/internal/logging"
)

// FailureHook inspects a still-open session after the workflow failed.
type FailureHook func(ctx context.Context, page Page, err error)

// Controller scopes a session to one workflow call.
type Controller struct {
	launcher  Launcher
	logger    *slog.Logger
	onFailure FailureHook
}

// NewController builds a controller around launcher.
func NewController(launcher Launcher, logger *slog.Logger) *Controller {
	return &Controller{launcher: launcher, logger: logging.NewComponentLogger(logger, "browser")}
}

// OnFailure registers a hook run at most once per Do, before release, when
// the workflow returns an error or panics.
func (c *Controller) OnFailure(hook FailureHook) *Controller {
	c.onFailure = hook
	return c
}

// Do acquires a session, runs fn, and releases the session exactly once on
// every exit path. A launch failure is returned as-is (marked ErrSession)
// and fn is never called. A panic inside fn is converted into an error.
// The failure hook never runs for launch failures since there is no page.
func (c *Controller) Do(ctx context.Context, fn func(context.Context, Session) error) (err error) {
	if c == nil || c.launcher == nil {
		return failure.Wrap(failure.ErrSession, "browser", "launch", "no launcher configured", nil)
	}

	session, err := c.launcher.Launch(ctx)
	if err != nil {
		if !errors.Is(err, failure.ErrSession) {
			err = failure.Wrap(failure.ErrSession, "browser", "launch", "start remote browser", err)
		}
		c.logger.ErrorContext(ctx, "browser launch failed",
			logging.String(logging.FieldEventType, "session_launch_failed"),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run `rumble-uploader doctor` to check the browser install"),
		)
		return err
	}
	c.logger.DebugContext(ctx, "browser session opened", logging.String(logging.FieldEventType, "session_opened"))

	var once sync.Once
	release := func() {
		once.Do(func() {
			if closeErr := session.Close(); closeErr != nil {
				logging.WarnWithContext(c.logger, "browser teardown failed", "session_close_failed",
					logging.Error(closeErr),
					logging.String(logging.FieldImpact, "a browser process may be left running"),
					logging.String(logging.FieldErrorHint, "check for stray chrome processes"),
				)
				return
			}
			c.logger.DebugContext(ctx, "browser session closed", logging.String(logging.FieldEventType, "session_closed"))
		})
	}
	defer release()

	defer func() {
		if r := recover(); r != nil {
			c.logger.ErrorContext(ctx, "workflow panicked",
				logging.String(logging.FieldEventType, "workflow_panic"),
				logging.Any("panic", r),
				logging.String("stack", string(debug.Stack())),
			)
			err = failure.Wrap(failure.ErrPublish, "browser", "workflow", fmt.Sprintf("panic: %v", r), nil)
		}
		if err != nil && c.onFailure != nil {
			c.onFailure(ctx, session, err)
		}
	}()

	return fn(ctx, session)
}
