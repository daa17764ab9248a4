package preflight

import (
	"context"
	"fmt"

	"github.com/ugm616/news-automation-n8n/internal/auth"
	"github.com/ugm616/news-automation-n8n/internal/config"
	"github.com/ugm616/news-automation-n8n/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// lookupEnv resolves credential variables; nil means os.LookupEnv.
func RunAll(ctx context.Context, cfg *config.Config, lookupEnv auth.LookupFunc) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckBrowser(cfg.Browser.ExecPath))

	// Snapshot directory (only when failure snapshots are kept)
	if cfg.Snapshots.Enabled {
		results = append(results, CheckDirectoryAccess("Snapshot directory", cfg.Paths.SnapshotDir))
	}

	// State directory backs the history ledger
	if cfg.History.Enabled {
		results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	}

	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	results = append(results, CheckCredentials(lookupEnv, cfg.Credentials.IdentityEnv, cfg.Credentials.SecretEnv))
	results = append(results, CheckSite(ctx, cfg.Site.BaseURL))

	return results
}

// CheckBrowser adapts deps.CheckBrowser to a preflight result.
func CheckBrowser(execPath string) Result {
	status := deps.CheckBrowser(execPath)
	if !status.Available {
		return Result{Name: status.Name, Detail: status.Detail}
	}
	return Result{Name: status.Name, Passed: true, Detail: fmt.Sprintf("%s (from %s)", status.Path, status.Source)}
}
