package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ugm616/news-automation-n8n/internal/auth"
	"github.com/ugm616/news-automation-n8n/internal/config"
	"github.com/ugm616/news-automation-n8n/internal/failure"
	"github.com/ugm616/news-automation-n8n/internal/logging"
	"github.com/ugm616/news-automation-n8n/internal/testsupport"
	"github.com/ugm616/news-automation-n8n/internal/wait"
)

var testCreds = auth.Credentials{Identity: "editor@example.com", Secret: "hunter2"}

func newAuthenticator(site config.Site) *auth.Authenticator {
	timeouts := wait.Timeouts{
		Element:  50 * time.Millisecond,
		PageLoad: 100 * time.Millisecond,
		Upload:   100 * time.Millisecond,
		Submit:   100 * time.Millisecond,
	}
	return auth.New(wait.NewEngine(5*time.Millisecond), auth.Options{
		BaseURL:   site.BaseURL,
		Selectors: site.Selectors,
		Timeouts:  timeouts,
	}, logging.NewNop())
}

func TestAuthenticateHappyPath(t *testing.T) {
	site := config.Default().Site
	page := testsupport.NewSite(site, "https://rumble.com/v1-clip.html")

	if err := newAuthenticator(site).Authenticate(context.Background(), page, testCreds); err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if got := page.Typed(site.Selectors.IdentityInput); got != testCreds.Identity {
		t.Fatalf("identity typed = %q", got)
	}
	if got := page.Typed(site.Selectors.SecretInput); got != testCreds.Secret {
		t.Fatal("secret was not typed into the secret field")
	}
	calls := page.Calls()
	want := []string{
		"navigate " + site.BaseURL,
		"click " + site.Selectors.LoginLink,
		"type " + site.Selectors.IdentityInput,
		"type " + site.Selectors.SecretInput,
		"click " + site.Selectors.LoginSubmit,
	}
	if len(calls) != len(want) {
		t.Fatalf("calls = %q, want %q", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("call %d = %q, want %q", i, calls[i], want[i])
		}
	}
}

func TestAuthenticateReportsFailingPhase(t *testing.T) {
	site := config.Default().Site
	tests := []struct {
		name      string
		opts      []testsupport.SiteOption
		wantPhase string
		wantCause error
	}{
		{"no login link", []testsupport.SiteOption{testsupport.WithoutLoginLink()}, auth.PhaseOpenLogin, failure.ErrTimeout},
		{"navigation never settles", []testsupport.SiteOption{testsupport.WithStalledLogin()}, auth.PhaseAwaitSession, failure.ErrTimeout},
		{"credentials rejected", []testsupport.SiteOption{testsupport.WithRejectedLogin()}, auth.PhaseVerifySession, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := testsupport.NewSite(site, "https://rumble.com/v1-clip.html", tt.opts...)
			err := newAuthenticator(site).Authenticate(context.Background(), page, testCreds)

			var authErr *failure.AuthError
			if !errors.As(err, &authErr) {
				t.Fatalf("expected AuthError, got %v", err)
			}
			if authErr.Phase != tt.wantPhase {
				t.Fatalf("phase = %q, want %q", authErr.Phase, tt.wantPhase)
			}
			if tt.wantCause != nil && !errors.Is(err, tt.wantCause) {
				t.Fatalf("expected cause %v, got %v", tt.wantCause, err)
			}
			if failure.KindOf(err) != failure.KindAuth {
				t.Fatalf("kind = %s", failure.KindOf(err))
			}
		})
	}
}

func TestAuthenticateFormNeverAppears(t *testing.T) {
	site := config.Default().Site
	page := testsupport.NewSite(site, "")
	page.OnClick[site.Selectors.LoginLink] = func(*testsupport.FakePage) {}

	err := newAuthenticator(site).Authenticate(context.Background(), page, testCreds)
	phase, ok := failure.PhaseOf(err)
	if !ok || phase != auth.PhaseAwaitForm {
		t.Fatalf("expected await_form failure, got %v", err)
	}
}

func TestAuthenticateStopsOnCancellation(t *testing.T) {
	site := config.Default().Site
	page := testsupport.NewSite(site, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newAuthenticator(site).Authenticate(ctx, page, testCreds)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation cause, got %v", err)
	}
}
