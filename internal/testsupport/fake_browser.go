package testsupport

import (
	"context"
	"fmt"
	"sync"

	"github.com/ugm616/news-automation-n8n/internal/browser"
	"github.com/ugm616/news-automation-n8n/internal/config"
	"github.com/ugm616/news-automation-n8n/internal/failure"
)

// FakePage is a scripted in-memory browser.Session. Navigation lands
// instantly unless stalled; hooks mutate the visible element set to mimic the
// remote site reacting to clicks and uploads.
type FakePage struct {
	mu       sync.Mutex
	url      string
	elements map[string]bool
	marked   bool
	stalled  bool

	OnNavigate func(p *FakePage, url string)
	OnClick    map[string]func(p *FakePage)
	OnAttach   func(p *FakePage, selector string, paths []string)

	ScreenshotData []byte
	ScreenshotErr  error
	CloseErr       error
	PanicOnClick   string

	calls       []string
	typed       map[string]string
	attached    map[string][]string
	selected    map[string]string
	screenshots int
	closes      int
}

var _ browser.Session = (*FakePage)(nil)

// NewFakePage returns an empty page at about:blank.
func NewFakePage() *FakePage {
	return &FakePage{
		url:            "about:blank",
		elements:       map[string]bool{},
		OnClick:        map[string]func(*FakePage){},
		typed:          map[string]string{},
		attached:       map[string][]string{},
		selected:       map[string]string{},
		ScreenshotData: []byte("\x89PNG\r\n\x1a\nfake"),
	}
}

// Show makes selectors match.
func (p *FakePage) Show(selectors ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, sel := range selectors {
		if sel != "" {
			p.elements[sel] = true
		}
	}
}

// Hide makes selectors stop matching.
func (p *FakePage) Hide(selectors ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, sel := range selectors {
		delete(p.elements, sel)
	}
}

// Land completes a navigation to url with an empty document.
func (p *FakePage) Land(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.land(url)
}

func (p *FakePage) land(url string) {
	if p.stalled {
		return
	}
	p.url = url
	p.marked = false
	p.elements = map[string]bool{}
}

// StallNavigation makes every later navigation hang forever.
func (p *FakePage) StallNavigation() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stalled = true
}

func (p *FakePage) record(format string, args ...any) {
	p.calls = append(p.calls, fmt.Sprintf(format, args...))
}

func (p *FakePage) Navigate(_ context.Context, url string) error {
	p.mu.Lock()
	p.record("navigate %s", url)
	p.marked = true
	p.land(url)
	hook := p.OnNavigate
	stalled := p.stalled
	p.mu.Unlock()
	if hook != nil && !stalled {
		hook(p, url)
	}
	return nil
}

func (p *FakePage) MarkDocument(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.marked = true
	return nil
}

func (p *FakePage) DocumentReplaced(context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.marked, nil
}

func (p *FakePage) Exists(_ context.Context, selector string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.elements[selector], nil
}

func (p *FakePage) Click(_ context.Context, selector string) error {
	p.mu.Lock()
	if !p.elements[selector] {
		p.mu.Unlock()
		return fmt.Errorf("%w: %s", failure.ErrElementMissing, selector)
	}
	p.record("click %s", selector)
	hook := p.OnClick[selector]
	panicky := p.PanicOnClick == selector
	p.mu.Unlock()
	if panicky {
		panic("scripted panic clicking " + selector)
	}
	if hook != nil {
		hook(p)
	}
	return nil
}

func (p *FakePage) Type(_ context.Context, selector, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.elements[selector] {
		return fmt.Errorf("%w: %s", failure.ErrElementMissing, selector)
	}
	p.record("type %s", selector)
	p.typed[selector] = value
	return nil
}

func (p *FakePage) AttachFiles(_ context.Context, selector string, paths []string) error {
	p.mu.Lock()
	if !p.elements[selector] {
		p.mu.Unlock()
		return fmt.Errorf("%w: %s", failure.ErrElementMissing, selector)
	}
	p.record("attach %s", selector)
	p.attached[selector] = append([]string(nil), paths...)
	hook := p.OnAttach
	p.mu.Unlock()
	if hook != nil {
		hook(p, selector, paths)
	}
	return nil
}

func (p *FakePage) SelectOption(_ context.Context, selector, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.elements[selector] {
		return fmt.Errorf("%w: %s", failure.ErrElementMissing, selector)
	}
	p.record("select %s", selector)
	p.selected[selector] = value
	return nil
}

func (p *FakePage) Location(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url, nil
}

func (p *FakePage) Screenshot(context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.screenshots++
	if p.ScreenshotErr != nil {
		return nil, p.ScreenshotErr
	}
	return append([]byte(nil), p.ScreenshotData...), nil
}

func (p *FakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closes++
	return p.CloseErr
}

// Calls returns the recorded operations, e.g. "click #submit". Typed values
// are never recorded.
func (p *FakePage) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

// Typed returns the value typed into selector.
func (p *FakePage) Typed(selector string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.typed[selector]
}

// Attached returns the files attached to selector.
func (p *FakePage) Attached(selector string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.attached[selector]...)
}

// Selected returns the option chosen on selector.
func (p *FakePage) Selected(selector string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected[selector]
}

// Screenshots returns how many screenshots were taken.
func (p *FakePage) Screenshots() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.screenshots
}

// Closes returns how many times the session was closed.
func (p *FakePage) Closes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closes
}

// FakeLauncher hands out one FakePage and counts launches.
type FakeLauncher struct {
	mu       sync.Mutex
	Page     *FakePage
	Err      error
	launches int
}

var _ browser.Launcher = (*FakeLauncher)(nil)

func (l *FakeLauncher) Launch(context.Context) (browser.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.launches++
	if l.Err != nil {
		return nil, l.Err
	}
	if l.Page == nil {
		l.Page = NewFakePage()
	}
	return l.Page, nil
}

// Launches returns how many sessions were requested.
func (l *FakeLauncher) Launches() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.launches
}

// SiteOption adjusts the scripted site built by NewSite.
type SiteOption func(*siteScript)

type siteScript struct {
	hideLoginLink   bool
	rejectLogin     bool
	stallUpload     bool
	optionalFields  bool
	stallAfterLogin bool
}

// WithoutLoginLink removes the login entry point from the landing page.
func WithoutLoginLink() SiteOption { return func(s *siteScript) { s.hideLoginLink = true } }

// WithRejectedLogin keeps the login form on screen after submit.
func WithRejectedLogin() SiteOption { return func(s *siteScript) { s.rejectLogin = true } }

// WithStalledUpload never shows the metadata form after the file is attached.
func WithStalledUpload() SiteOption { return func(s *siteScript) { s.stallUpload = true } }

// WithoutOptionalFields renders only the required metadata controls.
func WithoutOptionalFields() SiteOption { return func(s *siteScript) { s.optionalFields = false } }

// WithStalledLogin never finishes the post-login navigation.
func WithStalledLogin() SiteOption { return func(s *siteScript) { s.stallAfterLogin = true } }

// NewSite scripts a FakePage that behaves like the publish site for the
// configured selectors and URLs. A successful submit lands on publishedURL.
func NewSite(site config.Site, publishedURL string, opts ...SiteOption) *FakePage {
	script := &siteScript{optionalFields: true}
	for _, opt := range opts {
		opt(script)
	}
	sel := site.Selectors
	page := NewFakePage()

	page.OnNavigate = func(p *FakePage, url string) {
		switch url {
		case site.BaseURL:
			if !script.hideLoginLink {
				p.Show(sel.LoginLink)
			}
		case site.UploadURL:
			p.Show(sel.FileInput)
		}
	}
	page.OnClick[sel.LoginLink] = func(p *FakePage) {
		p.Show(sel.IdentityInput, sel.SecretInput, sel.LoginSubmit)
	}
	page.OnClick[sel.LoginSubmit] = func(p *FakePage) {
		if script.stallAfterLogin {
			p.StallNavigation()
			return
		}
		p.Land(site.BaseURL + "/")
		if script.rejectLogin {
			p.Show(sel.IdentityInput, sel.SecretInput, sel.LoginSubmit)
		}
	}
	page.OnAttach = func(p *FakePage, _ string, _ []string) {
		if script.stallUpload {
			return
		}
		p.Show(sel.TitleInput, sel.PublishSubmit)
		if script.optionalFields {
			p.Show(sel.DescriptionInput, sel.TagsInput, sel.LicenseSelect)
		}
	}
	page.OnClick[sel.PublishSubmit] = func(p *FakePage) {
		p.Land(publishedURL)
	}
	return page
}
