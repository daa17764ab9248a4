package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ugm616/news-automation-n8n/internal/history"
)

type attemptView struct {
	RunID         string   `json:"run_id"`
	Title         string   `json:"title"`
	AssetPath     string   `json:"asset_path"`
	Status        string   `json:"status"`
	StateReached  string   `json:"state_reached,omitempty"`
	VideoURL      string   `json:"video_url,omitempty"`
	ErrorKind     string   `json:"error_kind,omitempty"`
	ErrorMessage  string   `json:"error_message,omitempty"`
	SnapshotPath  string   `json:"snapshot_path,omitempty"`
	SkippedFields []string `json:"skipped_fields,omitempty"`
	StartedAt     string   `json:"started_at"`
	DurationMS    int64    `json:"duration_ms"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded publish attempts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return errors.New("history is disabled (history.enabled = false)")
			}
			store, err := history.Open(cfg.HistoryPath())
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				attempt, err := store.GetByRunID(cmd.Context(), strings.TrimSpace(args[0]))
				if err != nil {
					return err
				}
				if attempt == nil {
					return fmt.Errorf("no attempt matches run id %q", args[0])
				}
				if asJSON {
					return writeAttemptJSON(cmd.OutOrStdout(), toAttemptView(attempt))
				}
				printAttemptDetail(cmd.OutOrStdout(), attempt)
				return nil
			}

			attempts, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeAttemptJSON(cmd.OutOrStdout(), toAttemptViews(attempts))
			}
			out := cmd.OutOrStdout()
			if len(attempts) == 0 {
				fmt.Fprintln(out, "No attempts recorded")
				return nil
			}
			fmt.Fprintln(out, renderAttemptTable(attempts))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum attempts to list (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func toAttemptViews(attempts []*history.Attempt) []attemptView {
	views := make([]attemptView, 0, len(attempts))
	for _, attempt := range attempts {
		views = append(views, toAttemptView(attempt))
	}
	return views
}

// writeAttemptJSON prints one attempt view or a list of them, indented.
func writeAttemptJSON[T attemptView | []attemptView](w io.Writer, v T) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func toAttemptView(a *history.Attempt) attemptView {
	return attemptView{
		RunID:         a.RunID,
		Title:         a.Title,
		AssetPath:     a.AssetPath,
		Status:        a.Status(),
		StateReached:  a.StateReached,
		VideoURL:      a.VideoURL,
		ErrorKind:     a.ErrorKind,
		ErrorMessage:  a.ErrorMessage,
		SnapshotPath:  a.SnapshotPath,
		SkippedFields: a.SkippedFields,
		StartedAt:     a.StartedAt.UTC().Format(time.RFC3339),
		DurationMS:    a.Duration().Milliseconds(),
	}
}

func renderAttemptTable(attempts []*history.Attempt) string {
	rows := make([][]string, 0, len(attempts))
	for _, a := range attempts {
		detail := a.VideoURL
		if !a.Success {
			detail = a.StateReached
		}
		rows = append(rows, []string{
			shortRunID(a.RunID),
			a.StartedAt.Local().Format("2006-01-02 15:04"),
			truncate(a.Title, 40),
			a.Status(),
			a.Duration().Round(time.Second).String(),
			detail,
		})
	}
	return renderTable(
		[]string{"Run", "Started", "Title", "Status", "Took", "URL / State"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	)
}

func printAttemptDetail(out io.Writer, a *history.Attempt) {
	field := func(label, value string) {
		if value != "" {
			fmt.Fprintf(out, "%-14s %s\n", label+":", value)
		}
	}
	field("Run", a.RunID)
	field("Title", a.Title)
	field("Asset", a.AssetPath)
	field("Status", a.Status())
	field("State", a.StateReached)
	field("Video URL", a.VideoURL)
	if a.ErrorKind != "" {
		field("Error", a.ErrorKind+": "+a.ErrorMessage)
	}
	field("Snapshot", a.SnapshotPath)
	field("Skipped", strings.Join(a.SkippedFields, ", "))
	field("Started", a.StartedAt.Local().Format(time.RFC3339))
	field("Took", a.Duration().Round(time.Millisecond).String())
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}
