package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/ugm616/news-automation-n8n/internal/auth"
	"github.com/ugm616/news-automation-n8n/internal/browser"
	"github.com/ugm616/news-automation-n8n/internal/config"
	"github.com/ugm616/news-automation-n8n/internal/failure"
	"github.com/ugm616/news-automation-n8n/internal/logging"
	"github.com/ugm616/news-automation-n8n/internal/request"
	"github.com/ugm616/news-automation-n8n/internal/wait"
)

// Authenticator moves a page from anonymous to authenticated.
type Authenticator interface {
	Authenticate(ctx context.Context, page browser.Page, creds auth.Credentials) error
}

// Options configures the driver.
type Options struct {
	UploadURL     string
	TagSeparator  string
	Selectors     config.Selectors
	LicenseValues config.LicenseValues
	Timeouts      wait.Timeouts
}

// OptionsFromConfig maps the [site] and [timeouts] sections.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		UploadURL:     cfg.Site.UploadURL,
		TagSeparator:  cfg.Site.TagSeparator,
		Selectors:     cfg.Site.Selectors,
		LicenseValues: cfg.Site.LicenseValues,
		Timeouts:      TimeoutsFromConfig(cfg),
	}
}

// TimeoutsFromConfig converts the [timeouts] section into wait tiers.
func TimeoutsFromConfig(cfg *config.Config) wait.Timeouts {
	return wait.Timeouts{
		Element:  cfg.Timeouts.ElementTimeout(),
		PageLoad: cfg.Timeouts.PageLoadTimeout(),
		Upload:   cfg.Timeouts.UploadTimeout(),
		Submit:   cfg.Timeouts.SubmitTimeout(),
	}
}

// Result describes a confirmed publication.
type Result struct {
	URL     string
	Skipped []string
}

// Driver runs one publish attempt. It is not reusable.
type Driver struct {
	engine       *wait.Engine
	auth         Authenticator
	opts         Options
	logger       *slog.Logger
	state        State
	skipped      []string
	onTransition func(from, to State)
}

// NewDriver builds a driver.
func NewDriver(engine *wait.Engine, authenticator Authenticator, opts Options, logger *slog.Logger) *Driver {
	if opts.TagSeparator == "" {
		opts.TagSeparator = ", "
	}
	return &Driver{
		engine: engine,
		auth:   authenticator,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "publish"),
		state:  StateAnonymous,
	}
}

// OnTransition registers an observer called after every state change.
func (d *Driver) OnTransition(fn func(from, to State)) {
	d.onTransition = fn
}

// State returns the last state reached.
func (d *Driver) State() State {
	return d.state
}

// Skipped lists optional controls that were not filled because the page did
// not offer them.
func (d *Driver) Skipped() []string {
	return append([]string(nil), d.skipped...)
}

// Run drives page from Anonymous to Confirmed.
func (d *Driver) Run(ctx context.Context, page browser.Page, req request.UploadRequest, creds auth.Credentials) (Result, error) {
	if d.state != StateAnonymous {
		return Result{}, fmt.Errorf("publish driver already used (state %s)", d.state)
	}

	var finalURL string
	transitions := []struct {
		to  State
		run func(context.Context) error
	}{
		{StateAuthenticated, func(ctx context.Context) error {
			return d.auth.Authenticate(ctx, page, creds)
		}},
		{StateAssetUploaded, func(ctx context.Context) error {
			return d.uploadAsset(ctx, page, req)
		}},
		{StateMetadataFilled, func(ctx context.Context) error {
			return d.fillMetadata(ctx, page, req)
		}},
		{StateSubmitted, func(ctx context.Context) error {
			return d.submit(ctx, page)
		}},
		{StateConfirmed, func(ctx context.Context) error {
			url, err := d.confirm(ctx, page)
			finalURL = url
			return err
		}},
	}

	for _, tr := range transitions {
		stepCtx := logging.WithPhase(ctx, tr.to.String())
		if err := tr.run(stepCtx); err != nil {
			return Result{}, d.fail(stepCtx, tr.to, err)
		}
		if err := d.advance(stepCtx, tr.to); err != nil {
			return Result{}, err
		}
	}
	if !d.state.Terminal() {
		return Result{}, fmt.Errorf("publish sequence ended at %s", d.state)
	}

	return Result{URL: finalURL, Skipped: d.Skipped()}, nil
}

func (d *Driver) fail(ctx context.Context, target State, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
		err = fmt.Errorf("%w: %w", ctxErr, err)
	}
	var authErr *failure.AuthError
	if errors.As(err, &authErr) {
		return authErr
	}
	d.logger.ErrorContext(ctx, "publish step failed",
		logging.String(logging.FieldEventType, "publish_failed"),
		logging.String(logging.FieldState, target.String()),
		logging.String("reached", d.state.String()),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "inspect the failure snapshot and site.selectors"),
	)
	return &failure.PublishError{State: target.String(), Cause: err}
}

// advance moves forward by exactly one state.
func (d *Driver) advance(ctx context.Context, to State) error {
	next, ok := d.state.Next()
	if !ok || next != to {
		return fmt.Errorf("illegal publish transition %s -> %s", d.state, to)
	}
	from := d.state
	d.state = to
	d.logger.InfoContext(ctx, "state advanced",
		logging.String(logging.FieldEventType, "state_advanced"),
		logging.String("from", from.String()),
		logging.String(logging.FieldState, to.String()),
	)
	if d.onTransition != nil {
		d.onTransition(from, to)
	}
	return nil
}

func (d *Driver) uploadAsset(ctx context.Context, page browser.Page, req request.UploadRequest) error {
	sel := d.opts.Selectors
	t := d.opts.Timeouts

	d.logger.InfoContext(ctx, "navigating to upload page", logging.String("url", d.opts.UploadURL))
	if err := d.engine.Bound(ctx, "navigate to upload page", t.PageLoad, func(ctx context.Context) error {
		return page.Navigate(ctx, d.opts.UploadURL)
	}); err != nil {
		return err
	}
	if err := d.engine.AwaitReady(ctx, wait.NavigationSettled(page), t.PageLoad); err != nil {
		return err
	}
	if err := d.engine.AwaitReady(ctx, wait.ElementPresent(page, sel.FileInput), t.Element); err != nil {
		return err
	}

	assetPath, err := filepath.Abs(req.AssetPath)
	if err != nil {
		return fmt.Errorf("resolve asset path: %w", err)
	}
	d.logger.InfoContext(ctx, "attaching asset", logging.String("asset", filepath.Base(assetPath)))
	if err := d.act(ctx, "attach asset", func(ctx context.Context) error {
		return page.AttachFiles(ctx, sel.FileInput, []string{assetPath})
	}); err != nil {
		return err
	}

	d.logger.InfoContext(ctx, "waiting for upload to complete", logging.Duration("timeout", t.Upload))
	return d.engine.AwaitReady(ctx, wait.ElementPresent(page, sel.TitleInput), t.Upload)
}

func (d *Driver) fillMetadata(ctx context.Context, page browser.Page, req request.UploadRequest) error {
	sel := d.opts.Selectors

	if err := d.act(ctx, "type title", func(ctx context.Context) error {
		return page.Type(ctx, sel.TitleInput, req.Title)
	}); err != nil {
		return err
	}
	if req.HasDescription() {
		if err := d.fillOptional(ctx, page, "description", sel.DescriptionInput, func(ctx context.Context) error {
			return page.Type(ctx, sel.DescriptionInput, req.Description)
		}); err != nil {
			return err
		}
	}
	if req.HasTags() {
		if err := d.fillOptional(ctx, page, "tags", sel.TagsInput, func(ctx context.Context) error {
			return page.Type(ctx, sel.TagsInput, req.JoinTags(d.opts.TagSeparator))
		}); err != nil {
			return err
		}
	}
	return d.fillOptional(ctx, page, "license", sel.LicenseSelect, func(ctx context.Context) error {
		return page.SelectOption(ctx, sel.LicenseSelect, d.licenseValue(req.License))
	})
}

// fillOptional fills a control only when the page offers it.
func (d *Driver) fillOptional(ctx context.Context, page browser.Page, field, selector string, fill func(context.Context) error) error {
	if selector == "" {
		d.skip(ctx, field, "selector not configured")
		return nil
	}
	var present bool
	err := d.act(ctx, "check "+field+" field", func(ctx context.Context) error {
		var checkErr error
		present, checkErr = page.Exists(ctx, selector)
		return checkErr
	})
	if err != nil {
		return fmt.Errorf("check %s field: %w", field, err)
	}
	if !present {
		d.skip(ctx, field, "control not rendered")
		return nil
	}
	if err := d.act(ctx, "fill "+field, fill); err != nil {
		return fmt.Errorf("fill %s: %w", field, err)
	}
	return nil
}

func (d *Driver) skip(ctx context.Context, field, reason string) {
	d.skipped = append(d.skipped, field)
	attrs := logging.DecisionAttrs("optional_field", "skipped", reason)
	attrs = append(attrs, logging.String("field", field))
	d.logger.InfoContext(ctx, "optional field skipped", logging.Args(attrs...)...)
}

// act bounds a single page action by the element tier.
func (d *Driver) act(ctx context.Context, action string, fn func(context.Context) error) error {
	return d.engine.Bound(ctx, action, d.opts.Timeouts.Element, fn)
}

func (d *Driver) licenseValue(mode request.LicenseMode) string {
	if mode == request.LicenseRestrictive {
		return d.opts.LicenseValues.Restrictive
	}
	return d.opts.LicenseValues.Permissive
}

func (d *Driver) submit(ctx context.Context, page browser.Page) error {
	sel := d.opts.Selectors
	t := d.opts.Timeouts

	if err := d.engine.AwaitReady(ctx, wait.ElementPresent(page, sel.PublishSubmit), t.Element); err != nil {
		return err
	}
	if err := d.act(ctx, "mark document", page.MarkDocument); err != nil {
		return err
	}
	d.logger.InfoContext(ctx, "submitting")
	if err := d.act(ctx, "click submit", func(ctx context.Context) error {
		return page.Click(ctx, sel.PublishSubmit)
	}); err != nil {
		return err
	}
	return d.engine.AwaitReady(ctx, wait.NavigationSettled(page), t.Submit)
}

func (d *Driver) confirm(ctx context.Context, page browser.Page) (string, error) {
	var location string
	err := d.act(ctx, "read location", func(ctx context.Context) error {
		var readErr error
		location, readErr = page.Location(ctx)
		return readErr
	})
	if err != nil {
		return "", err
	}
	if location == "" || location == "about:blank" {
		return "", fmt.Errorf("no published page location (got %q)", location)
	}
	d.logger.InfoContext(ctx, "published", logging.String("url", location))
	return location, nil
}
