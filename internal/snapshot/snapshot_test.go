package snapshot_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ugm616/news-automation-n8n/internal/logging"
	"github.com/ugm616/news-automation-n8n/internal/snapshot"
	"github.com/ugm616/news-automation-n8n/internal/testsupport"
)

var fixedNow = func() time.Time { return time.UnixMilli(1718000000123) }

func TestCaptureWritesTimestampedPNG(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "snaps")
	page := testsupport.NewFakePage()

	path, err := snapshot.NewCapturer(dir, logging.NewNop()).WithClock(fixedNow).Capture(context.Background(), page)
	if err != nil {
		t.Fatalf("Capture returned error: %v", err)
	}
	if filepath.Base(path) != "error_1718000000123.png" {
		t.Fatalf("unexpected name %q", path)
	}
	if !filepath.IsAbs(path) {
		t.Fatalf("expected absolute path, got %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if !bytes.Equal(data, page.ScreenshotData) {
		t.Fatal("snapshot content mismatch")
	}
	if page.Screenshots() != 1 {
		t.Fatalf("screenshots = %d", page.Screenshots())
	}
}

func TestCaptureAvoidsOverwriting(t *testing.T) {
	dir := t.TempDir()
	capturer := snapshot.NewCapturer(dir, nil).WithClock(fixedNow)
	page := testsupport.NewFakePage()

	first, err := capturer.Capture(context.Background(), page)
	if err != nil {
		t.Fatalf("first capture: %v", err)
	}
	second, err := capturer.Capture(context.Background(), page)
	if err != nil {
		t.Fatalf("second capture: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct snapshot paths")
	}
	if filepath.Base(second) != "error_1718000000123_1.png" {
		t.Fatalf("unexpected collision name %q", second)
	}
}

func TestCaptureReportsScreenshotFailure(t *testing.T) {
	dir := t.TempDir()
	page := testsupport.NewFakePage()
	page.ScreenshotErr = errors.New("target closed")

	if _, err := snapshot.NewCapturer(dir, nil).Capture(context.Background(), page); err == nil {
		t.Fatal("expected error")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no files, found %d", len(entries))
	}
}

func TestCaptureRunsAfterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := snapshot.NewCapturer(t.TempDir(), nil).Capture(ctx, testsupport.NewFakePage()); err != nil {
		t.Fatalf("capture should ignore caller cancellation: %v", err)
	}
}

func TestPruneOnlyTouchesOldSnapshots(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "error_1.png")
	recent := filepath.Join(dir, "error_2.png")
	unrelated := filepath.Join(dir, "upload.mp4")
	for _, path := range []string{old, recent, unrelated} {
		if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	stale := time.Now().AddDate(0, 0, -40)
	for _, path := range []string{old, unrelated} {
		if err := os.Chtimes(path, stale, stale); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	removed := snapshot.Prune(nil, dir, 30)
	if len(removed) != 1 || filepath.Base(removed[0]) != "error_1.png" {
		t.Fatalf("removed = %v", removed)
	}
	for _, path := range []string{recent, unrelated} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("%s should remain: %v", path, err)
		}
	}
}
