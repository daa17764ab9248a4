package workflow

import (
	"context"
	"errors"
	"strings"

	"github.com/ugm616/news-automation-n8n/internal/failure"
	"github.com/ugm616/news-automation-n8n/internal/history"
	"github.com/ugm616/news-automation-n8n/internal/logging"
	"github.com/ugm616/news-automation-n8n/internal/outcome"
)

func (r *Runner) record(ctx context.Context, run *attempt, result outcome.Outcome) {
	if r.recorder == nil {
		return
	}
	entry := history.Attempt{
		RunID:         run.runID,
		Title:         run.req.Title,
		AssetPath:     run.req.AssetPath,
		Success:       result.Success,
		VideoURL:      result.VideoURL,
		ErrorKind:     string(result.Kind),
		ErrorMessage:  result.Message,
		SnapshotPath:  result.SnapshotPath,
		SkippedFields: run.skipped,
		StartedAt:     run.started,
		FinishedAt:    r.now(),
	}
	if run.browsed {
		entry.StateReached = run.state.String()
	}
	// The ledger is written even when the invocation was interrupted.
	if _, err := r.recorder.Record(context.WithoutCancel(ctx), entry); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger), "attempt not recorded", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "attempt missing from rumble-uploader history"),
			logging.String(logging.FieldErrorHint, "check paths.state_dir permissions"),
		)
	}
}

func (r *Runner) notify(ctx context.Context, run *attempt, result outcome.Outcome) {
	if r.notifier == nil {
		return
	}
	var err error
	if result.Success {
		err = r.notifier.NotifyPublished(ctx, result.Title, result.VideoURL)
	} else {
		err = r.notifier.NotifyFailed(ctx, run.req.Title, string(result.Kind), result.Message)
	}
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		r.logger.DebugContext(ctx, "invocation cancelled, notification not sent")
		return
	}
	r.logger.DebugContext(ctx, "notification failed", logging.Error(err))
}

func hintFor(o outcome.Outcome) string {
	switch o.Kind {
	case failure.KindValidation:
		if strings.Contains(o.Message, "environment variable") {
			return "export the credential variables named in [credentials]"
		}
		return "fix the request JSON; asset_path and title are required"
	case failure.KindSession:
		return "run `rumble-uploader doctor` to check the browser install"
	case failure.KindAuth:
		return "verify the account credentials and site.selectors login entries"
	default:
		if o.SnapshotPath != "" {
			return "inspect the failure snapshot at " + o.SnapshotPath
		}
		return "inspect site.selectors against the live upload form"
	}
}
