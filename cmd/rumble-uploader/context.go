package main

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/ugm616/news-automation-n8n/internal/auth"
	"github.com/ugm616/news-automation-n8n/internal/browser"
	"github.com/ugm616/news-automation-n8n/internal/config"
	"github.com/ugm616/news-automation-n8n/internal/logging"
)

// errReported marks failures whose diagnostics were already written; main
// exits non-zero without printing them again.
var errReported = errors.New("failure already reported")

type launcherFactory func(cfg *config.Config, logger *slog.Logger) browser.Launcher

type commandContext struct {
	configFlag string
	verbose    bool

	// Replaced in tests.
	newLauncher launcherFactory
	lookupEnv   auth.LookupFunc

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext() *commandContext {
	return &commandContext{
		newLauncher: func(cfg *config.Config, logger *slog.Logger) browser.Launcher {
			return browser.NewChromeLauncher(browser.LaunchOptionsFromConfig(cfg), logger)
		},
		lookupEnv: os.LookupEnv,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// newLogger builds the command logger. Records go to w (the command's
// stderr) plus the daily JSON log file when paths.log_dir is set.
func (c *commandContext) newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	logCfg := *cfg
	if c.verbose {
		logCfg.Logging.Level = "debug"
	}
	logger, err := logging.NewFromConfig(&logCfg, w)
	if err != nil {
		return nil, err
	}
	if cfg.Paths.LogDir != "" {
		logging.CleanupOldFiles(logger, cfg.Logging.RetentionDays, logging.RetentionTarget{
			Dir:     cfg.Paths.LogDir,
			Pattern: config.LogFilePattern,
			Exclude: []string{cfg.LogPath()},
		})
	}
	return logger, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
