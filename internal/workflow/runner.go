package workflow

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ugm616/news-automation-n8n/internal/auth"
	"github.com/ugm616/news-automation-n8n/internal/browser"
	"github.com/ugm616/news-automation-n8n/internal/config"
	"github.com/ugm616/news-automation-n8n/internal/history"
	"github.com/ugm616/news-automation-n8n/internal/logging"
	"github.com/ugm616/news-automation-n8n/internal/notifications"
	"github.com/ugm616/news-automation-n8n/internal/outcome"
	"github.com/ugm616/news-automation-n8n/internal/publish"
	"github.com/ugm616/news-automation-n8n/internal/request"
	"github.com/ugm616/news-automation-n8n/internal/snapshot"
	"github.com/ugm616/news-automation-n8n/internal/wait"
)

// Invocation is the input of one Execute call.
type Invocation struct {
	// RawRequest is the JSON-encoded upload request.
	RawRequest []byte
	// LookupEnv resolves credential variables; os.LookupEnv in production.
	LookupEnv auth.LookupFunc
}

// Recorder persists finished attempts.
type Recorder interface {
	Record(ctx context.Context, attempt history.Attempt) (*history.Attempt, error)
}

// Runner executes invocations against one configuration.
type Runner struct {
	cfg      *config.Config
	launcher browser.Launcher
	logger   *slog.Logger
	notifier notifications.Service
	recorder Recorder
	newRunID func() string
	now      func() time.Time
}

// Option configures optional Runner behavior.
type Option func(*Runner)

// WithNotifier replaces the notifier derived from config.
func WithNotifier(svc notifications.Service) Option {
	return func(r *Runner) {
		if svc != nil {
			r.notifier = svc
		}
	}
}

// WithRecorder records every attempt, e.g. into a *history.Store.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// WithRunIDs overrides the run id generator.
func WithRunIDs(fn func() string) Option {
	return func(r *Runner) {
		if fn != nil {
			r.newRunID = fn
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRunner builds a runner.
func NewRunner(cfg *config.Config, launcher browser.Launcher, logger *slog.Logger, opts ...Option) *Runner {
	r := &Runner{
		cfg:      cfg,
		launcher: launcher,
		logger:   logging.NewComponentLogger(logger, "workflow"),
		notifier: notifications.NewService(cfg),
		newRunID: uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// attempt accumulates what one invocation did, for history.
type attempt struct {
	runID   string
	started time.Time
	req     request.UploadRequest
	state   publish.State
	skipped []string
	browsed bool
}

// Execute runs one invocation and returns its outcome. It never panics and
// never returns without an outcome.
func (r *Runner) Execute(ctx context.Context, inv Invocation) outcome.Outcome {
	run := &attempt{runID: r.newRunID(), started: r.now()}
	ctx = logging.WithRunID(ctx, run.runID)

	result := r.execute(ctx, inv, run)
	result.RunID = run.runID

	r.record(ctx, run, result)
	r.notify(ctx, run, result)
	return result
}

func (r *Runner) execute(ctx context.Context, inv Invocation, run *attempt) outcome.Outcome {
	req, err := request.Parse(inv.RawRequest)
	if err != nil {
		return r.rejected(ctx, "request rejected", err)
	}
	run.req = req

	creds, err := auth.CredentialsFromEnv(inv.LookupEnv, r.cfg.Credentials.IdentityEnv, r.cfg.Credentials.SecretEnv)
	if err != nil {
		return r.rejected(ctx, "credentials unavailable", err)
	}

	r.logger.InfoContext(ctx, "publish started",
		logging.String(logging.FieldEventType, "publish_started"),
		logging.String("title", req.Title),
		logging.String("asset", filepath.Base(req.AssetPath)),
		logging.String("license_mode", string(req.License)),
		logging.Int("tags", len(req.Tags)),
		logging.Bool("identity_set", creds.Identity != ""),
		logging.Bool("secret_set", creds.Secret != ""),
	)
	r.pruneSnapshots(ctx)

	return r.publish(ctx, req, creds, run)
}

func (r *Runner) publish(ctx context.Context, req request.UploadRequest, creds auth.Credentials, run *attempt) outcome.Outcome {
	engine := wait.NewEngine(r.cfg.Timeouts.PollInterval())
	authenticator := auth.New(engine, auth.Options{
		BaseURL:   r.cfg.Site.BaseURL,
		Selectors: r.cfg.Site.Selectors,
		Timeouts:  publish.TimeoutsFromConfig(r.cfg),
	}, r.logger)
	driver := publish.NewDriver(engine, authenticator, publish.OptionsFromConfig(r.cfg), r.logger)

	run.browsed = true
	var (
		snapshotPath string
		snapshotErr  error
	)
	controller := browser.NewController(r.launcher, r.logger).
		OnFailure(func(ctx context.Context, page browser.Page, _ error) {
			snapshotPath, snapshotErr = r.capture(ctx, page)
		})

	var result publish.Result
	err := controller.Do(ctx, func(ctx context.Context, session browser.Session) error {
		res, err := driver.Run(ctx, session, req, creds)
		result = res
		return err
	})
	run.state = driver.State()
	run.skipped = driver.Skipped()

	if err != nil {
		failed := outcome.Failure(err).WithSnapshot(snapshotPath, snapshotErr)
		failed.Skipped = run.skipped
		logging.ErrorWithContext(logging.WithContext(ctx, r.logger), "publish failed", "publish_failed",
			logging.String("error_kind", string(failed.Kind)),
			logging.String(logging.FieldState, failed.State),
			logging.String("reached", run.state.String()),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, hintFor(failed)),
		)
		return failed
	}

	published := outcome.Success(req.Title, result.URL, r.now())
	published.State = run.state.String()
	published.Skipped = result.Skipped
	r.logger.InfoContext(ctx, "publish confirmed",
		logging.String(logging.FieldEventType, "publish_confirmed"),
		logging.String("video_url", result.URL),
		logging.Duration("elapsed", r.now().Sub(run.started)),
	)
	return published
}

func (r *Runner) rejected(ctx context.Context, msg string, err error) outcome.Outcome {
	failed := outcome.Failure(err)
	logging.ErrorWithContext(logging.WithContext(ctx, r.logger), msg, "invocation_rejected",
		logging.String("error_kind", string(failed.Kind)),
		logging.Error(err),
		logging.String(logging.FieldImpact, "no browser session was opened"),
		logging.String(logging.FieldErrorHint, hintFor(failed)),
	)
	return failed
}

func (r *Runner) capture(ctx context.Context, page browser.Page) (string, error) {
	if !r.cfg.Snapshots.Enabled {
		return "", nil
	}
	path, err := snapshot.NewCapturer(r.cfg.Paths.SnapshotDir, r.logger).Capture(ctx, page)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "failure snapshot not captured", "snapshot_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "no screenshot for diagnosis"),
			logging.String(logging.FieldErrorHint, "check paths.snapshot_dir is writable"),
		)
	}
	return path, err
}

func (r *Runner) pruneSnapshots(ctx context.Context) {
	if !r.cfg.Snapshots.Enabled {
		return
	}
	removed := snapshot.Prune(r.logger, r.cfg.Paths.SnapshotDir, r.cfg.Snapshots.RetentionDays)
	if len(removed) > 0 {
		r.logger.DebugContext(ctx, "old snapshots pruned", logging.Int("count", len(removed)))
	}
}
