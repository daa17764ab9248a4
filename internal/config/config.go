package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	SnapshotDir string `toml:"snapshot_dir"`
	StateDir    string `toml:"state_dir"`
	LogDir      string `toml:"log_dir"`
}

// Selectors holds the CSS selectors used to drive the remote UI. The login
// selectors, file input, title input, and publish submit are required; the
// description, tags, and license controls are optional on the remote side and
// may be left empty to skip them entirely.
type Selectors struct {
	LoginLink        string `toml:"login_link"`
	IdentityInput    string `toml:"identity_input"`
	SecretInput      string `toml:"secret_input"`
	LoginSubmit      string `toml:"login_submit"`
	FileInput        string `toml:"file_input"`
	TitleInput       string `toml:"title_input"`
	DescriptionInput string `toml:"description_input"`
	TagsInput        string `toml:"tags_input"`
	LicenseSelect    string `toml:"license_select"`
	PublishSubmit    string `toml:"publish_submit"`
}

// LicenseValues maps license modes onto the option values of the remote
// license selector.
type LicenseValues struct {
	Restrictive string `toml:"restrictive"`
	Permissive  string `toml:"permissive"`
}

// Site describes the publish target.
type Site struct {
	BaseURL       string        `toml:"base_url"`
	UploadURL     string        `toml:"upload_url"`
	TagSeparator  string        `toml:"tag_separator"`
	Selectors     Selectors     `toml:"selectors"`
	LicenseValues LicenseValues `toml:"license_values"`
}

// Credentials names the environment variables carrying the account identity
// and secret. Values never live in the config file.
type Credentials struct {
	IdentityEnv string `toml:"identity_env"`
	SecretEnv   string `toml:"secret_env"`
}

// Browser contains remote browser launch settings.
type Browser struct {
	Headless        bool   `toml:"headless"`
	ExecPath        string `toml:"exec_path"`
	ViewportWidth   int    `toml:"viewport_width"`
	ViewportHeight  int    `toml:"viewport_height"`
	NoSandbox       bool   `toml:"no_sandbox"`
	UserAgent       string `toml:"user_agent"`
	TeardownTimeout int    `toml:"teardown_timeout"`
}

// Timeouts contains the tiered wait budgets, in seconds.
type Timeouts struct {
	Element        int `toml:"element"`
	PageLoad       int `toml:"page_load"`
	Upload         int `toml:"upload"`
	Submit         int `toml:"submit"`
	PollIntervalMS int `toml:"poll_interval_ms"`
}

// Snapshots controls failure snapshot capture and pruning.
type Snapshots struct {
	Enabled       bool `toml:"enabled"`
	RetentionDays int  `toml:"retention_days"`
}

// History controls the local attempt ledger.
type History struct {
	Enabled       bool `toml:"enabled"`
	RetentionDays int  `toml:"retention_days"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Published      bool   `toml:"published"`
	Failed         bool   `toml:"failed"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for rumble-uploader.
//
// Configuration sections by subsystem:
//   - Paths: snapshot, state (history database), and log directories
//   - Site: target URLs, selectors, and license option values
//   - Credentials: names of the identity/secret environment variables
//   - Browser: launch flags and viewport
//   - Timeouts: element, page-load, upload, and submit wait tiers
//   - Snapshots: failure capture toggle and retention
//   - History: attempt ledger toggle
//   - Notifications: ntfy push notification settings
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Site          Site          `toml:"site"`
	Credentials   Credentials   `toml:"credentials"`
	Browser       Browser       `toml:"browser"`
	Timeouts      Timeouts      `toml:"timeouts"`
	Snapshots     Snapshots     `toml:"snapshots"`
	History       History       `toml:"history"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories an invocation writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.SnapshotDir, c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// HistoryPath returns the location of the attempt history database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// LogFilePattern matches the daily log files written under paths.log_dir.
const LogFilePattern = "rumble-uploader-*.log"

// LogPath returns today's log file path, or "" when file logging is disabled.
func (c *Config) LogPath() string {
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return ""
	}
	return filepath.Join(c.Paths.LogDir, "rumble-uploader-"+time.Now().Format("2006-01-02")+".log")
}

// ElementTimeout is the short tier used for element presence waits.
func (t Timeouts) ElementTimeout() time.Duration { return seconds(t.Element) }

// PageLoadTimeout is the long tier used for page readiness waits.
func (t Timeouts) PageLoadTimeout() time.Duration { return seconds(t.PageLoad) }

// UploadTimeout is the very-long tier used while the remote side processes the asset.
func (t Timeouts) UploadTimeout() time.Duration { return seconds(t.Upload) }

// SubmitTimeout is the very-long tier used for the final submission.
func (t Timeouts) SubmitTimeout() time.Duration { return seconds(t.Submit) }

// PollInterval is the delay between readiness checks.
func (t Timeouts) PollInterval() time.Duration {
	return time.Duration(t.PollIntervalMS) * time.Millisecond
}

// TeardownTimeoutDuration bounds how long closing the browser may take.
func (b Browser) TeardownTimeoutDuration() time.Duration { return seconds(b.TeardownTimeout) }

func seconds(value int) time.Duration {
	return time.Duration(value) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
