package history

import (
	"database/sql"
	"strings"
	"time"
)

func scanAttempt(scanner interface{ Scan(dest ...any) error }) (*Attempt, error) {
	var (
		id           int64
		runID        string
		title        string
		assetPath    string
		stateReached sql.NullString
		success      int64
		videoURL     sql.NullString
		errorKind    sql.NullString
		errorMessage sql.NullString
		snapshotPath sql.NullString
		skipped      sql.NullString
		startedRaw   string
		finishedRaw  string
	)
	if err := scanner.Scan(
		&id,
		&runID,
		&title,
		&assetPath,
		&stateReached,
		&success,
		&videoURL,
		&errorKind,
		&errorMessage,
		&snapshotPath,
		&skipped,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}

	attempt := &Attempt{
		ID:           id,
		RunID:        runID,
		Title:        title,
		AssetPath:    assetPath,
		StateReached: stateReached.String,
		Success:      success != 0,
		VideoURL:     videoURL.String,
		ErrorKind:    errorKind.String,
		ErrorMessage: errorMessage.String,
		SnapshotPath: snapshotPath.String,
		StartedAt:    parseTime(startedRaw),
		FinishedAt:   parseTime(finishedRaw),
	}
	if skipped.Valid && skipped.String != "" {
		attempt.SkippedFields = strings.Split(skipped.String, skippedSeparator)
	}
	return attempt, nil
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func stripLikeWildcards(value string) string {
	return strings.NewReplacer("%", "", "_", "").Replace(value)
}
