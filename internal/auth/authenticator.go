package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ugm616/news-automation-n8n/internal/browser"
	"github.com/ugm616/news-automation-n8n/internal/config"
	"github.com/ugm616/news-automation-n8n/internal/failure"
	"github.com/ugm616/news-automation-n8n/internal/logging"
	"github.com/ugm616/news-automation-n8n/internal/wait"
)

// Login phases, in order.
const (
	PhaseOpenSite          = "open_site"
	PhaseOpenLogin         = "open_login"
	PhaseAwaitForm         = "await_form"
	PhaseSubmitCredentials = "submit_credentials"
	PhaseAwaitSession      = "await_session"
	PhaseVerifySession     = "verify_session"
)

var errCredentialsRejected = errors.New("login form still shown after submit; credentials rejected")

// Options configures the authenticator.
type Options struct {
	BaseURL   string
	Selectors config.Selectors
	Timeouts  wait.Timeouts
}

// Authenticator performs the one login attempt of an invocation.
type Authenticator struct {
	engine *wait.Engine
	opts   Options
	logger *slog.Logger
}

// New builds an authenticator.
func New(engine *wait.Engine, opts Options, logger *slog.Logger) *Authenticator {
	return &Authenticator{engine: engine, opts: opts, logger: logging.NewComponentLogger(logger, "auth")}
}

// Authenticate moves page from anonymous to authenticated. Any failure is a
// *failure.AuthError naming the phase that broke.
func (a *Authenticator) Authenticate(ctx context.Context, page browser.Page, creds Credentials) error {
	sel := a.opts.Selectors
	t := a.opts.Timeouts

	steps := []struct {
		phase string
		run   func(ctx context.Context) error
	}{
		{PhaseOpenSite, func(ctx context.Context) error {
			a.logger.InfoContext(ctx, "opening site", logging.String("url", a.opts.BaseURL))
			if err := a.engine.Bound(ctx, "navigate to site", t.PageLoad, func(ctx context.Context) error {
				return page.Navigate(ctx, a.opts.BaseURL)
			}); err != nil {
				return err
			}
			return a.engine.AwaitReady(ctx, wait.NavigationSettled(page), t.PageLoad)
		}},
		{PhaseOpenLogin, func(ctx context.Context) error {
			if err := a.engine.AwaitReady(ctx, wait.ElementPresent(page, sel.LoginLink), t.Element); err != nil {
				return err
			}
			return a.act(ctx, "click login link", func(ctx context.Context) error {
				return page.Click(ctx, sel.LoginLink)
			})
		}},
		{PhaseAwaitForm, func(ctx context.Context) error {
			a.logger.InfoContext(ctx, "waiting for login form")
			return a.engine.AwaitReady(ctx, wait.ElementPresent(page, sel.IdentityInput), t.Element)
		}},
		{PhaseSubmitCredentials, func(ctx context.Context) error {
			if err := a.act(ctx, "type identity", func(ctx context.Context) error {
				return page.Type(ctx, sel.IdentityInput, creds.Identity)
			}); err != nil {
				return err
			}
			if err := a.engine.AwaitReady(ctx, wait.ElementPresent(page, sel.SecretInput), t.Element); err != nil {
				return err
			}
			if err := a.act(ctx, "type secret", func(ctx context.Context) error {
				return page.Type(ctx, sel.SecretInput, creds.Secret)
			}); err != nil {
				return err
			}
			if err := a.act(ctx, "mark document", page.MarkDocument); err != nil {
				return err
			}
			a.logger.InfoContext(ctx, "submitting credentials",
				logging.Bool("identity_set", creds.Identity != ""),
				logging.Bool("secret_set", creds.Secret != ""),
			)
			return a.act(ctx, "click login submit", func(ctx context.Context) error {
				return page.Click(ctx, sel.LoginSubmit)
			})
		}},
		{PhaseAwaitSession, func(ctx context.Context) error {
			return a.engine.AwaitReady(ctx, wait.NavigationSettled(page), t.PageLoad)
		}},
		{PhaseVerifySession, func(ctx context.Context) error {
			var stillShown bool
			err := a.act(ctx, "check login form", func(ctx context.Context) error {
				var checkErr error
				stillShown, checkErr = page.Exists(ctx, sel.SecretInput)
				return checkErr
			})
			if err != nil {
				return err
			}
			if stillShown {
				return errCredentialsRejected
			}
			return nil
		}},
	}

	for _, step := range steps {
		phaseCtx := logging.WithPhase(ctx, step.phase)
		if err := step.run(phaseCtx); err != nil {
			if ctx.Err() != nil {
				err = ctx.Err()
			}
			a.logger.ErrorContext(phaseCtx, "login failed",
				logging.String(logging.FieldEventType, "auth_failed"),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check credentials and site.selectors login entries"),
			)
			return &failure.AuthError{Phase: step.phase, Cause: err}
		}
	}
	a.logger.InfoContext(ctx, "logged in", logging.String(logging.FieldEventType, "auth_completed"))
	return nil
}

// act bounds a single page action by the element tier.
func (a *Authenticator) act(ctx context.Context, action string, fn func(context.Context) error) error {
	return a.engine.Bound(ctx, action, a.opts.Timeouts.Element, fn)
}
