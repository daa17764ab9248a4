package publish_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"slices"
	"testing"
	"time"

	"github.com/ugm616/news-automation-n8n/internal/auth"
	"github.com/ugm616/news-automation-n8n/internal/browser"
	"github.com/ugm616/news-automation-n8n/internal/config"
	"github.com/ugm616/news-automation-n8n/internal/failure"
	"github.com/ugm616/news-automation-n8n/internal/logging"
	"github.com/ugm616/news-automation-n8n/internal/publish"
	"github.com/ugm616/news-automation-n8n/internal/request"
	"github.com/ugm616/news-automation-n8n/internal/testsupport"
	"github.com/ugm616/news-automation-n8n/internal/wait"
)

const publishedURL = "https://rumble.com/v5abc-breaking-local-election-results.html"

var creds = auth.Credentials{Identity: "editor@example.com", Secret: "hunter2"}

var testTimeouts = wait.Timeouts{
	Element:  40 * time.Millisecond,
	PageLoad: 80 * time.Millisecond,
	Upload:   120 * time.Millisecond,
	Submit:   120 * time.Millisecond,
}

func newDriver(site config.Site) *publish.Driver {
	engine := wait.NewEngine(5 * time.Millisecond)
	authenticator := auth.New(engine, auth.Options{
		BaseURL:   site.BaseURL,
		Selectors: site.Selectors,
		Timeouts:  testTimeouts,
	}, logging.NewNop())
	return publish.NewDriver(engine, authenticator, publish.Options{
		UploadURL:     site.UploadURL,
		TagSeparator:  site.TagSeparator,
		Selectors:     site.Selectors,
		LicenseValues: site.LicenseValues,
		Timeouts:      testTimeouts,
	}, logging.NewNop())
}

func newRequest(t *testing.T) request.UploadRequest {
	t.Helper()
	asset := filepath.Join(t.TempDir(), "election.mp4")
	testsupport.WriteAsset(t, asset, 1024)
	return request.UploadRequest{
		AssetPath: asset,
		Title:     "Breaking: Local Election Results",
		Tags:      []string{"news", "local"},
		License:   request.LicenseRestrictive,
	}
}

func TestRunHappyPath(t *testing.T) {
	site := config.Default().Site
	page := testsupport.NewSite(site, publishedURL)
	driver := newDriver(site)

	var transitions []string
	driver.OnTransition(func(from, to publish.State) {
		transitions = append(transitions, fmt.Sprintf("%s->%s", from, to))
	})

	req := newRequest(t)
	result, err := driver.Run(context.Background(), page, req, creds)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.URL != publishedURL {
		t.Fatalf("URL = %q", result.URL)
	}
	if driver.State() != publish.StateConfirmed {
		t.Fatalf("state = %s", driver.State())
	}
	wantTransitions := []string{
		"Anonymous->Authenticated",
		"Authenticated->AssetUploaded",
		"AssetUploaded->MetadataFilled",
		"MetadataFilled->Submitted",
		"Submitted->Confirmed",
	}
	if !reflect.DeepEqual(transitions, wantTransitions) {
		t.Fatalf("transitions = %q", transitions)
	}

	sel := site.Selectors
	if got := page.Attached(sel.FileInput); len(got) != 1 || got[0] != req.AssetPath {
		t.Fatalf("attached = %q", got)
	}
	if got := page.Typed(sel.TitleInput); got != req.Title {
		t.Fatalf("title typed = %q", got)
	}
	if got := page.Typed(sel.TagsInput); got != "news, local" {
		t.Fatalf("tags typed = %q", got)
	}
	if got := page.Typed(sel.DescriptionInput); got != "" {
		t.Fatalf("description should be left alone when not provided, got %q", got)
	}
	if got := page.Selected(sel.LicenseSelect); got != "rumble_only" {
		t.Fatalf("license selected = %q", got)
	}
	if len(result.Skipped) != 0 {
		t.Fatalf("nothing should be skipped, got %q", result.Skipped)
	}
}

func TestRunSkipsMissingOptionalControls(t *testing.T) {
	site := config.Default().Site
	page := testsupport.NewSite(site, publishedURL, testsupport.WithoutOptionalFields())
	req := newRequest(t)
	req.Description = "Results from tonight's count."

	result, err := newDriver(site).Run(context.Background(), page, req, creds)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if want := []string{"description", "tags", "license"}; !reflect.DeepEqual(result.Skipped, want) {
		t.Fatalf("skipped = %q, want %q", result.Skipped, want)
	}
}

func TestRunSkipsUnconfiguredOptionalSelectors(t *testing.T) {
	site := config.Default().Site
	site.Selectors.TagsInput = ""
	page := testsupport.NewSite(site, publishedURL)

	result, err := newDriver(site).Run(context.Background(), page, newRequest(t), creds)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !slices.Equal(result.Skipped, []string{"tags"}) {
		t.Fatalf("skipped = %q", result.Skipped)
	}
}

func TestRunUploadTimeoutFailsAtAssetUploaded(t *testing.T) {
	site := config.Default().Site
	page := testsupport.NewSite(site, publishedURL, testsupport.WithStalledUpload())
	driver := newDriver(site)

	_, err := driver.Run(context.Background(), page, newRequest(t), creds)

	var publishErr *failure.PublishError
	if !errors.As(err, &publishErr) {
		t.Fatalf("expected PublishError, got %v", err)
	}
	if publishErr.State != "AssetUploaded" {
		t.Fatalf("state = %q", publishErr.State)
	}
	var timeoutErr *failure.TimeoutError
	if !errors.As(err, &timeoutErr) || timeoutErr.Timeout != testTimeouts.Upload {
		t.Fatalf("expected upload-tier timeout cause, got %v", err)
	}
	if driver.State() != publish.StateAuthenticated {
		t.Fatalf("driver should stop at Authenticated, got %s", driver.State())
	}
	if failure.KindOf(err) != failure.KindPublish {
		t.Fatalf("kind = %s", failure.KindOf(err))
	}
	for _, call := range page.Calls() {
		if call == "type "+site.Selectors.TitleInput {
			t.Fatal("metadata must not be attempted after an upload failure")
		}
	}
}

func TestRunFailureStates(t *testing.T) {
	site := config.Default().Site
	sel := site.Selectors
	tests := []struct {
		name      string
		script    func(p *testsupport.FakePage)
		wantState string
		wantAt    publish.State
	}{
		{
			name: "file input missing",
			script: func(p *testsupport.FakePage) {
				base := p.OnNavigate
				p.OnNavigate = func(p *testsupport.FakePage, url string) {
					if url == site.UploadURL {
						return
					}
					base(p, url)
				}
			},
			wantState: "AssetUploaded",
			wantAt:    publish.StateAuthenticated,
		},
		{
			name: "submit button missing",
			script: func(p *testsupport.FakePage) {
				p.OnAttach = func(p *testsupport.FakePage, _ string, _ []string) {
					p.Show(sel.TitleInput)
				}
			},
			wantState: "Submitted",
			wantAt:    publish.StateMetadataFilled,
		},
		{
			name: "submit never navigates",
			script: func(p *testsupport.FakePage) {
				p.OnClick[sel.PublishSubmit] = func(p *testsupport.FakePage) { p.StallNavigation() }
			},
			wantState: "Submitted",
			wantAt:    publish.StateMetadataFilled,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := testsupport.NewSite(site, publishedURL)
			tt.script(page)
			driver := newDriver(site)

			_, err := driver.Run(context.Background(), page, newRequest(t), creds)
			state, ok := failure.StateOf(err)
			if !ok || state != tt.wantState {
				t.Fatalf("expected failure at %s, got %v", tt.wantState, err)
			}
			if driver.State() != tt.wantAt {
				t.Fatalf("driver state = %s, want %s", driver.State(), tt.wantAt)
			}
		})
	}
}

func TestRunAuthFailureIsTerminal(t *testing.T) {
	site := config.Default().Site
	page := testsupport.NewSite(site, publishedURL, testsupport.WithoutLoginLink())
	driver := newDriver(site)

	_, err := driver.Run(context.Background(), page, newRequest(t), creds)
	var authErr *failure.AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %v", err)
	}
	if _, ok := failure.StateOf(err); ok {
		t.Fatal("auth failure must not be reported as a publish state failure")
	}
	if driver.State() != publish.StateAnonymous {
		t.Fatalf("state = %s", driver.State())
	}
	for _, call := range page.Calls() {
		if call == "navigate "+site.UploadURL {
			t.Fatal("upload page must not be opened after auth failure")
		}
	}
}

type stubAuth struct{ calls int }

func (s *stubAuth) Authenticate(context.Context, browser.Page, auth.Credentials) error {
	s.calls++
	return nil
}

func TestDriverIsSingleUse(t *testing.T) {
	site := config.Default().Site
	page := testsupport.NewSite(site, publishedURL)
	page.Show(site.Selectors.LoginLink)
	stub := &stubAuth{}
	driver := publish.NewDriver(wait.NewEngine(5*time.Millisecond), stub, publish.Options{
		UploadURL: site.UploadURL,
		Selectors: site.Selectors,
		Timeouts:  testTimeouts,
	}, nil)

	if _, err := driver.Run(context.Background(), page, newRequest(t), creds); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if _, err := driver.Run(context.Background(), page, newRequest(t), creds); err == nil {
		t.Fatal("expected second Run to be rejected")
	}
	if stub.calls != 1 {
		t.Fatalf("authenticate calls = %d", stub.calls)
	}
}

func TestRunSubmitClickThatHangsFailsWithinElementTier(t *testing.T) {
	site := config.Default().Site
	page := testsupport.NewSite(site, publishedURL)
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	page.OnClick[site.Selectors.PublishSubmit] = func(*testsupport.FakePage) {
		<-release
	}
	driver := newDriver(site)

	start := time.Now()
	_, err := driver.Run(context.Background(), page, newRequest(t), creds)
	elapsed := time.Since(start)

	var publishErr *failure.PublishError
	if !errors.As(err, &publishErr) {
		t.Fatalf("expected PublishError, got %v", err)
	}
	if publishErr.State != "Submitted" {
		t.Fatalf("state = %q", publishErr.State)
	}
	var timeoutErr *failure.TimeoutError
	if !errors.As(err, &timeoutErr) || timeoutErr.Timeout != testTimeouts.Element {
		t.Fatalf("expected element-tier timeout cause, got %v", err)
	}
	if elapsed > time.Second {
		t.Fatalf("Run blocked for %s on a hung click", elapsed)
	}
	if driver.State() != publish.StateMetadataFilled {
		t.Fatalf("driver should stop at MetadataFilled, got %s", driver.State())
	}
}
