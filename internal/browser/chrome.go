package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/ugm616/news-automation-n8n/internal/config"
	"github.com/ugm616/news-automation-n8n/internal/failure"
	"github.com/ugm616/news-automation-n8n/internal/logging"
)

// navigationMarker is set on a document before leaving it; its absence means
// a new document has been committed.
const navigationMarker = "__rumbleUploaderNav"

// LaunchOptions configures the remote browser.
type LaunchOptions struct {
	Headless        bool
	ExecPath        string
	Width           int
	Height          int
	NoSandbox       bool
	UserAgent       string
	ActionTimeout   time.Duration
	TeardownTimeout time.Duration
}

// LaunchOptionsFromConfig maps the [browser] and [timeouts] sections.
func LaunchOptionsFromConfig(cfg *config.Config) LaunchOptions {
	return LaunchOptions{
		Headless:        cfg.Browser.Headless,
		ExecPath:        cfg.Browser.ExecPath,
		Width:           cfg.Browser.ViewportWidth,
		Height:          cfg.Browser.ViewportHeight,
		NoSandbox:       cfg.Browser.NoSandbox,
		UserAgent:       cfg.Browser.UserAgent,
		ActionTimeout:   cfg.Timeouts.ElementTimeout(),
		TeardownTimeout: cfg.Browser.TeardownTimeoutDuration(),
	}
}

// ChromeLauncher starts Chrome or Chromium through chromedp.
type ChromeLauncher struct {
	opts   LaunchOptions
	logger *slog.Logger
}

// NewChromeLauncher builds a launcher.
func NewChromeLauncher(opts LaunchOptions, logger *slog.Logger) *ChromeLauncher {
	if opts.ActionTimeout <= 0 {
		opts.ActionTimeout = 10 * time.Second
	}
	if opts.TeardownTimeout <= 0 {
		opts.TeardownTimeout = 10 * time.Second
	}
	return &ChromeLauncher{opts: opts, logger: logging.NewComponentLogger(logger, "chrome")}
}

// launchFlags lists the switches passed to Chrome on top of chromedp's
// defaults.
func (l *ChromeLauncher) launchFlags() map[string]any {
	flags := map[string]any{
		"headless":              l.opts.Headless,
		"disable-dev-shm-usage": true,
		"window-size":           fmt.Sprintf("%d,%d", l.opts.Width, l.opts.Height),
	}
	if l.opts.NoSandbox {
		flags["no-sandbox"] = true
		flags["disable-setuid-sandbox"] = true
	}
	if l.opts.UserAgent != "" {
		flags["user-agent"] = l.opts.UserAgent
	}
	return flags
}

func (l *ChromeLauncher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	for name, value := range l.launchFlags() {
		opts = append(opts, chromedp.Flag(name, value))
	}
	if l.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(l.opts.ExecPath))
	}
	return opts
}

// Launch starts the browser and opens its first tab. The browser's lifetime
// is independent of ctx; ctx only bounds the launch itself.
func (l *ChromeLauncher) Launch(ctx context.Context) (Session, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), l.allocatorOptions()...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			l.logger.Debug(fmt.Sprintf(format, args...))
		}),
		chromedp.WithErrorf(func(format string, args ...any) {
			l.logger.Debug(fmt.Sprintf(format, args...), logging.String(logging.FieldEventType, "cdp_error"))
		}),
	)

	// A JavaScript dialog blocks every later evaluation until it is answered.
	chromedp.ListenTarget(tabCtx, func(ev any) {
		if opening, ok := ev.(*page.EventJavascriptDialogOpening); ok {
			go func() {
				if err := chromedp.Run(tabCtx, page.HandleJavaScriptDialog(false)); err != nil {
					l.logger.Debug("dismiss dialog failed", logging.Error(err))
					return
				}
				l.logger.Debug("dismissed dialog", logging.String("dialog_type", string(opening.Type)))
			}()
		}
	})

	stop := context.AfterFunc(ctx, tabCancel)
	// The first Run allocates the browser and must use the tab context itself.
	// Sessions always start signed out.
	err := chromedp.Run(tabCtx,
		network.ClearBrowserCookies(),
		chromedp.EmulateViewport(int64(l.opts.Width), int64(l.opts.Height)),
	)
	stop()
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		tabCancel()
		allocCancel()
		return nil, failure.Wrap(failure.ErrSession, "browser", "launch", "start remote browser", err)
	}

	l.logger.InfoContext(ctx, "browser launched",
		logging.Bool("headless", l.opts.Headless),
		logging.Int("viewport_width", l.opts.Width),
		logging.Int("viewport_height", l.opts.Height),
	)
	return &chromePage{
		tabCtx:          tabCtx,
		tabCancel:       tabCancel,
		allocCancel:     allocCancel,
		actionTimeout:   l.opts.ActionTimeout,
		teardownTimeout: l.opts.TeardownTimeout,
	}, nil
}

type chromePage struct {
	tabCtx          context.Context
	tabCancel       context.CancelFunc
	allocCancel     context.CancelFunc
	actionTimeout   time.Duration
	teardownTimeout time.Duration
}

// run executes actions on the tab. Every call is bounded by the action
// timeout as well as by ctx, so a wedged page cannot stall the caller.
func (p *chromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	deadline := time.Now().Add(p.actionTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	runCtx, cancel := context.WithDeadline(p.tabCtx, deadline)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil && runCtx.Err() != nil {
		return fmt.Errorf("page action exceeded %s: %w", p.actionTimeout, err)
	}
	return err
}

func (p *chromePage) Navigate(ctx context.Context, url string) error {
	script := fmt.Sprintf(`(() => { window[%s] = true; window.location.assign(%s); return true; })()`,
		jsString(navigationMarker), jsString(url))
	var ok bool
	if err := p.run(ctx, chromedp.Evaluate(script, &ok)); err != nil {
		return fmt.Errorf("navigate to %s: %w", url, err)
	}
	return nil
}

func (p *chromePage) MarkDocument(ctx context.Context) error {
	var ok bool
	script := fmt.Sprintf(`(() => { window[%s] = true; return true; })()`, jsString(navigationMarker))
	return p.run(ctx, chromedp.Evaluate(script, &ok))
}

func (p *chromePage) DocumentReplaced(ctx context.Context) (bool, error) {
	var replaced bool
	script := fmt.Sprintf(`!window[%s] && document.readyState === "complete"`, jsString(navigationMarker))
	if err := p.run(ctx, chromedp.Evaluate(script, &replaced)); err != nil {
		return false, err
	}
	return replaced, nil
}

func (p *chromePage) Exists(ctx context.Context, selector string) (bool, error) {
	var found bool
	script := fmt.Sprintf(`document.querySelector(%s) !== null`, jsString(selector))
	if err := p.run(ctx, chromedp.Evaluate(script, &found)); err != nil {
		return false, err
	}
	return found, nil
}

func (p *chromePage) Click(ctx context.Context, selector string) error {
	var clicked bool
	script := fmt.Sprintf(`(() => {
		const el = document.querySelector(%s);
		if (!el) { return false; }
		el.scrollIntoView({block: "center"});
		el.click();
		return true;
	})()`, jsString(selector))
	if err := p.run(ctx, chromedp.Evaluate(script, &clicked)); err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	if !clicked {
		return missing(selector)
	}
	return nil
}

func (p *chromePage) Type(ctx context.Context, selector, value string) error {
	var cleared bool
	script := fmt.Sprintf(`(() => {
		const el = document.querySelector(%s);
		if (!el) { return false; }
		el.focus();
		el.value = "";
		return true;
	})()`, jsString(selector))
	if err := p.run(ctx, chromedp.Evaluate(script, &cleared)); err != nil {
		return fmt.Errorf("focus %s: %w", selector, err)
	}
	if !cleared {
		return missing(selector)
	}
	if err := p.run(ctx, chromedp.SendKeys(selector, value, chromedp.ByQuery, chromedp.NodeReady)); err != nil {
		// The value may be a credential; never echo it.
		return fmt.Errorf("type into %s: %w", selector, err)
	}
	return nil
}

func (p *chromePage) AttachFiles(ctx context.Context, selector string, paths []string) error {
	if err := p.run(ctx, chromedp.SetUploadFiles(selector, paths, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("attach files to %s: %w", selector, err)
	}
	return nil
}

func (p *chromePage) SelectOption(ctx context.Context, selector, value string) error {
	var result string
	script := fmt.Sprintf(`(() => {
		const el = document.querySelector(%[1]s);
		if (!el) { return "missing"; }
		const option = Array.from(el.options || []).find((o) => o.value === %[2]s);
		if (!option) { return "no-option"; }
		el.value = %[2]s;
		el.dispatchEvent(new Event("input", {bubbles: true}));
		el.dispatchEvent(new Event("change", {bubbles: true}));
		return "ok";
	})()`, jsString(selector), jsString(value))
	if err := p.run(ctx, chromedp.Evaluate(script, &result)); err != nil {
		return fmt.Errorf("select %s: %w", selector, err)
	}
	switch result {
	case "ok":
		return nil
	case "missing":
		return missing(selector)
	default:
		return fmt.Errorf("select %s: option %q not offered", selector, value)
	}
}

func (p *chromePage) Location(ctx context.Context) (string, error) {
	var location string
	if err := p.run(ctx, chromedp.Location(&location)); err != nil {
		return "", fmt.Errorf("read location: %w", err)
	}
	return location, nil
}

func (p *chromePage) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := p.run(ctx, chromedp.FullScreenshot(&buf, 100)); err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	return buf, nil
}

// Close shuts the browser down gracefully, then force-kills the process if
// that takes longer than the teardown timeout.
func (p *chromePage) Close() error {
	done := make(chan error, 1)
	go func() {
		done <- chromedp.Cancel(p.tabCtx)
	}()

	var err error
	timer := time.NewTimer(p.teardownTimeout)
	defer timer.Stop()
	select {
	case err = <-done:
	case <-timer.C:
		err = fmt.Errorf("browser did not close within %s", p.teardownTimeout)
	}
	p.tabCancel()
	p.allocCancel()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func missing(selector string) error {
	return fmt.Errorf("%w: %s", failure.ErrElementMissing, selector)
}

func jsString(value string) string {
	encoded, err := json.Marshal(value)
	if err != nil {
		return `""`
	}
	return strings.ReplaceAll(string(encoded), "</", `<\/`)
}
