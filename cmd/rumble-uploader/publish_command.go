package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ugm616/news-automation-n8n/internal/failure"
	"github.com/ugm616/news-automation-n8n/internal/history"
	"github.com/ugm616/news-automation-n8n/internal/logging"
	"github.com/ugm616/news-automation-n8n/internal/outcome"
	"github.com/ugm616/news-automation-n8n/internal/workflow"
)

// maxRequestBytes bounds request input read from a file or stdin.
const maxRequestBytes = 1 << 20

func newPublishCommand(ctx *commandContext) *cobra.Command {
	var requestFile string

	cmd := &cobra.Command{
		Use:   "publish [request-json]",
		Short: "Upload and publish one video",
		Long: "Upload and publish one video described by a JSON request:\n\n" +
			`  {"asset_path": "/data/clip.mp4", "title": "...", "description": "...",` + "\n" +
			`   "tags": ["news"], "license_mode": "restrictive|permissive"}` + "\n\n" +
			"Credentials come from the environment variables named in [credentials].\n" +
			"Exactly one JSON outcome is written to stdout; the exit code is 0 on success.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd, ctx, args, requestFile)
		},
	}
	cmd.Flags().StringVarP(&requestFile, "request-file", "f", "", "Read the request JSON from a file (- for stdin)")
	return cmd
}

func runPublish(cmd *cobra.Command, ctx *commandContext, args []string, requestFile string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	reporter := outcome.NewReporter(cmd.OutOrStdout(), cmd.ErrOrStderr())

	raw, err := readRequest(cmd, args, requestFile)
	if err != nil {
		reporter.Emit(outcome.Failure(failure.Wrap(failure.ErrValidation, "cli", "read request", "", err)))
		return errReported
	}

	logger, err := ctx.newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		reporter.Emit(outcome.Failure(failure.Wrap(failure.ErrConfiguration, "cli", "configure logging", "", err)))
		return errReported
	}

	opts := []workflow.Option{}
	if cfg.History.Enabled {
		store, err := history.Open(cfg.HistoryPath())
		if err != nil {
			logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "this attempt will not be recorded"),
				logging.String(logging.FieldErrorHint, "check paths.state_dir or set history.enabled = false"),
			)
		} else {
			defer store.Close()
			pruneHistory(cmd, store, cfg.History.RetentionDays, logger)
			opts = append(opts, workflow.WithRecorder(store))
		}
	}

	runner := workflow.NewRunner(cfg, ctx.newLauncher(cfg, logger), logger, opts...)
	result := runner.Execute(cmd.Context(), workflow.Invocation{
		RawRequest: raw,
		LookupEnv:  ctx.lookupEnv,
	})
	if code := reporter.Emit(result); code != 0 {
		return errReported
	}
	return nil
}

func pruneHistory(cmd *cobra.Command, store *history.Store, retentionDays int, logger *slog.Logger) {
	if retentionDays <= 0 {
		return
	}
	removed, err := store.Prune(cmd.Context(), time.Now().AddDate(0, 0, -retentionDays))
	if err != nil {
		logger.Debug("history prune failed", logging.Error(err))
		return
	}
	if removed > 0 {
		logger.Debug("old attempts pruned", logging.Int64("count", removed))
	}
}

// readRequest returns the request JSON from the positional argument or the
// --request-file source. Supplying both is an error.
func readRequest(cmd *cobra.Command, args []string, requestFile string) ([]byte, error) {
	requestFile = strings.TrimSpace(requestFile)
	switch {
	case len(args) > 0 && requestFile != "":
		return nil, errors.New("pass the request either as an argument or with --request-file, not both")
	case len(args) > 0:
		return []byte(args[0]), nil
	case requestFile == "-":
		return readLimited(cmd.InOrStdin())
	case requestFile != "":
		file, err := os.Open(requestFile)
		if err != nil {
			return nil, fmt.Errorf("open request file: %w", err)
		}
		defer file.Close()
		return readLimited(file)
	default:
		return nil, errors.New("no request given; pass JSON as an argument or use --request-file")
	}
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxRequestBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read request: %w", err)
	}
	if len(data) > maxRequestBytes {
		return nil, fmt.Errorf("request larger than %d bytes", maxRequestBytes)
	}
	return data, nil
}
