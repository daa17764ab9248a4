// Package wait implements the bounded readiness polling every publish phase
// relies on. AwaitReady is the only place the workflow suspends.
package wait

import (
	"context"
	"fmt"
	"time"

	"github.com/ugm616/news-automation-n8n/internal/failure"
)

// DefaultPollInterval is used when an Engine is built with a non-positive interval.
const DefaultPollInterval = 250 * time.Millisecond

// Condition is a named readiness predicate. Check must return promptly; a
// check error is treated as "not ready yet" and retried.
type Condition struct {
	Name  string
	Check func(ctx context.Context) (bool, error)
}

// Timeouts groups the tiered wait budgets.
type Timeouts struct {
	Element  time.Duration
	PageLoad time.Duration
	Upload   time.Duration
	Submit   time.Duration
}

// Engine polls conditions at a fixed interval.
type Engine struct {
	interval time.Duration
}

// NewEngine builds an engine polling every interval.
func NewEngine(interval time.Duration) *Engine {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Engine{interval: interval}
}

// AwaitReady blocks until cond holds, timeout elapses, or ctx ends. The
// condition is checked immediately, then once per poll interval. On expiry it
// returns a *failure.TimeoutError carrying the last check error; when ctx
// itself ends first, ctx.Err() is returned.
func (e *Engine) AwaitReady(ctx context.Context, cond Condition, timeout time.Duration) error {
	if cond.Check == nil {
		return fmt.Errorf("wait for %s: condition has no check", cond.Name)
	}
	if timeout <= 0 {
		return fmt.Errorf("wait for %s: timeout must be positive", cond.Name)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	var lastErr error
	for {
		ready, err := cond.Check(waitCtx)
		if err == nil && ready {
			return nil
		}
		if err != nil && waitCtx.Err() == nil {
			lastErr = err
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &failure.TimeoutError{Condition: cond.Name, Timeout: timeout, Last: lastErr}
		case <-ticker.C:
		}
	}
}

// Bound runs one page action with timeout applied. An action still running
// at the deadline is abandoned and a *failure.TimeoutError naming action is
// returned; when ctx itself ends first, ctx.Err() is returned.
func (e *Engine) Bound(ctx context.Context, action string, timeout time.Duration, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fmt.Errorf("%s: timeout must be positive", action)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	actionCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- fn(actionCtx)
	}()

	select {
	case err := <-done:
		if err != nil && actionCtx.Err() != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &failure.TimeoutError{Condition: action, Timeout: timeout, Last: err}
		}
		return err
	case <-actionCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &failure.TimeoutError{Condition: action, Timeout: timeout}
	}
}
