package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ugm616/news-automation-n8n/internal/history"
	"github.com/ugm616/news-automation-n8n/internal/testsupport"
)

func TestRecordAndGetByRunID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	started := time.Date(2024, 6, 10, 6, 13, 0, 0, time.UTC)
	recorded, err := store.Record(ctx, history.Attempt{
		RunID:         "4f1c2d3e-0000-4000-8000-000000000001",
		Title:         "Breaking: Local Election Results",
		AssetPath:     "/data/videos/election.mp4",
		StateReached:  "Confirmed",
		Success:       true,
		VideoURL:      "https://rumble.com/v5abc.html",
		SkippedFields: []string{"tags", "license"},
		StartedAt:     started,
		FinishedAt:    started.Add(42 * time.Second),
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if recorded.ID == 0 {
		t.Fatal("expected row id to be assigned")
	}

	fetched, err := store.GetByRunID(ctx, "4f1c2d3e")
	if err != nil {
		t.Fatalf("GetByRunID failed: %v", err)
	}
	if fetched == nil || fetched.VideoURL != "https://rumble.com/v5abc.html" || !fetched.Success {
		t.Fatalf("unexpected attempt: %#v", fetched)
	}
	if len(fetched.SkippedFields) != 2 || fetched.SkippedFields[1] != "license" {
		t.Fatalf("skipped fields = %v", fetched.SkippedFields)
	}
	if fetched.Duration() != 42*time.Second {
		t.Fatalf("duration = %s", fetched.Duration())
	}
	if fetched.Status() != "published" {
		t.Fatalf("status = %q", fetched.Status())
	}
}

func TestGetByRunIDMissingAndAmbiguous(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	for _, id := range []string{"abc-1", "abc-2"} {
		if _, err := store.Record(ctx, history.Attempt{RunID: id, Title: "t", AssetPath: "/a.mp4"}); err != nil {
			t.Fatalf("Record(%s): %v", id, err)
		}
	}

	missing, err := store.GetByRunID(ctx, "zzz")
	if err != nil || missing != nil {
		t.Fatalf("expected nil, nil for missing run; got %#v, %v", missing, err)
	}
	if _, err := store.GetByRunID(ctx, "abc"); err == nil {
		t.Fatal("expected ambiguous prefix error")
	}
	exact, err := store.GetByRunID(ctx, "abc-2")
	if err != nil || exact == nil || exact.RunID != "abc-2" {
		t.Fatalf("exact lookup: %#v, %v", exact, err)
	}
}

func TestRecordRejectsDuplicateRunID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	attempt := history.Attempt{RunID: "dup", Title: "t", AssetPath: "/a.mp4"}
	if _, err := store.Record(ctx, attempt); err != nil {
		t.Fatalf("first Record: %v", err)
	}
	if _, err := store.Record(ctx, attempt); err == nil {
		t.Fatal("expected unique constraint error")
	}
	if _, err := store.Record(ctx, history.Attempt{Title: "t"}); err == nil {
		t.Fatal("expected error for empty run id")
	}
}

func TestListNewestFirstWithLimit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	for _, id := range []string{"run-1", "run-2", "run-3"} {
		if _, err := store.Record(ctx, history.Attempt{
			RunID:        id,
			Title:        id,
			AssetPath:    "/a.mp4",
			ErrorKind:    "PublishError",
			ErrorMessage: "publish failed at AssetUploaded",
		}); err != nil {
			t.Fatalf("Record(%s): %v", id, err)
		}
	}

	attempts, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(attempts) != 2 || attempts[0].RunID != "run-3" || attempts[1].RunID != "run-2" {
		t.Fatalf("unexpected order: %v", runIDs(attempts))
	}
	if attempts[0].Status() != "publish failure" {
		t.Fatalf("status = %q", attempts[0].Status())
	}

	all, err := store.List(ctx, 0)
	if err != nil || len(all) != 3 {
		t.Fatalf("List(0) = %d, %v", len(all), err)
	}
}

func TestPruneRemovesOldAttempts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	now := time.Now().UTC()
	if _, err := store.Record(ctx, history.Attempt{RunID: "old", Title: "t", AssetPath: "/a", FinishedAt: now.Add(-48 * time.Hour)}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Record(ctx, history.Attempt{RunID: "new", Title: "t", AssetPath: "/a", FinishedAt: now}); err != nil {
		t.Fatal(err)
	}

	removed, err := store.Prune(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	remaining, _ := store.List(ctx, 0)
	if len(remaining) != 1 || remaining[0].RunID != "new" {
		t.Fatalf("remaining = %v", runIDs(remaining))
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	_ = store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	if _, err := history.Open(path); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func runIDs(attempts []*history.Attempt) []string {
	ids := make([]string, 0, len(attempts))
	for _, a := range attempts {
		ids = append(ids, a.RunID)
	}
	return ids
}
