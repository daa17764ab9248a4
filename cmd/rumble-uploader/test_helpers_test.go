package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/ugm616/news-automation-n8n/internal/browser"
	"github.com/ugm616/news-automation-n8n/internal/config"
	"github.com/ugm616/news-automation-n8n/internal/testsupport"
)

const publishedURL = "https://rumble.com/v5xyz-council-vote.html"

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	launcher   *testsupport.FakeLauncher
	page       *testsupport.FakePage
	asset      string
	env        map[string]string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	homeDir := filepath.Join(t.TempDir(), "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv(config.NtfyTopicEnv, "")

	cfg := testsupport.NewConfig(t, opts...)
	configPath := filepath.Join(homeDir, ".config", "rumble-uploader", "config.toml")
	writeTestConfig(t, configPath, cfg)

	page := testsupport.NewSite(cfg.Site, publishedURL)
	asset := filepath.Join(testsupport.BaseDir(cfg), "council.mp4")
	testsupport.WriteAsset(t, asset, 1024)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		launcher:   &testsupport.FakeLauncher{Page: page},
		page:       page,
		asset:      asset,
		env: map[string]string{
			"RUMBLE_EMAIL":    "desk@example.com",
			"RUMBLE_PASSWORD": "s3cret-value",
		},
	}
}

func (e *cliTestEnv) newContext() *commandContext {
	ctx := newCommandContext()
	ctx.newLauncher = func(*config.Config, *slog.Logger) browser.Launcher { return e.launcher }
	ctx.lookupEnv = func(key string) (string, bool) {
		value, ok := e.env[key]
		return value, ok
	}
	return ctx
}

// runCLI executes the root command against the env's config file.
func runCLI(t *testing.T, env *cliTestEnv, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := buildRootCommand(env.newContext())
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
