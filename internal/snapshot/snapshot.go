// Package snapshot captures a full-page screenshot of the remote page when a
// publish attempt fails. Capture is best-effort: callers report its error but
// never let it replace the original failure.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/renameio/v2"

	"github.com/ugm616/news-automation-n8n/internal/logging"
)

const (
	filePrefix = "error_"
	fileExt    = ".png"
	// FilePattern matches every snapshot written by Capture.
	FilePattern = filePrefix + "*" + fileExt

	captureTimeout = 15 * time.Second
	maxCollisions  = 100
)

// Screenshotter produces a PNG of the current page.
type Screenshotter interface {
	Screenshot(ctx context.Context) ([]byte, error)
}

// Capturer writes snapshots into one directory.
type Capturer struct {
	dir    string
	now    func() time.Time
	logger *slog.Logger
}

// NewCapturer builds a capturer writing into dir.
func NewCapturer(dir string, logger *slog.Logger) *Capturer {
	return &Capturer{dir: dir, now: time.Now, logger: logging.NewComponentLogger(logger, "snapshot")}
}

// WithClock overrides the timestamp source used for file names.
func (c *Capturer) WithClock(now func() time.Time) *Capturer {
	c.now = now
	return c
}

// Capture screenshots page and returns the written path. It still runs when
// ctx is already cancelled, bounded by its own timeout, so an interrupted run
// can be diagnosed.
func (c *Capturer) Capture(ctx context.Context, page Screenshotter) (string, error) {
	captureCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), captureTimeout)
	defer cancel()

	data, err := page.Screenshot(captureCtx)
	if err != nil {
		return "", fmt.Errorf("take screenshot: %w", err)
	}
	if len(data) == 0 {
		return "", errors.New("take screenshot: empty image")
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot directory: %w", err)
	}
	path, err := c.uniquePath()
	if err != nil {
		return "", err
	}
	if err := c.write(path, data); err != nil {
		return "", err
	}

	c.logger.InfoContext(ctx, "failure snapshot saved",
		logging.String(logging.FieldEventType, "snapshot_saved"),
		logging.String("path", path),
		logging.Int("bytes", len(data)),
	)
	return path, nil
}

// write publishes data at path atomically so a partially written image is
// never left behind.
func (c *Capturer) write(path string, data []byte) error {
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("create pending snapshot: %w", err)
	}
	defer func() {
		if err := pending.Cleanup(); err != nil {
			c.logger.Debug("cleanup pending snapshot", logging.Error(err))
		}
	}()
	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

func (c *Capturer) uniquePath() (string, error) {
	stamp := strconv.FormatInt(c.now().UnixMilli(), 10)
	base := filepath.Join(c.dir, filePrefix+stamp)
	for i := 0; i < maxCollisions; i++ {
		candidate := base + fileExt
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d%s", base, i, fileExt)
		}
		if _, err := os.Stat(candidate); errors.Is(err, fs.ErrNotExist) {
			return filepath.Abs(candidate)
		} else if err != nil {
			return "", fmt.Errorf("check snapshot path: %w", err)
		}
	}
	return "", fmt.Errorf("no free snapshot name for %s", base)
}

// Prune removes snapshots in dir older than retentionDays; 0 keeps everything.
func Prune(logger *slog.Logger, dir string, retentionDays int) []string {
	return logging.CleanupOldFiles(logger, retentionDays, logging.RetentionTarget{Dir: dir, Pattern: FilePattern})
}
