package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/ugm616/news-automation-n8n/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Timeouts are shrunk so timeout paths finish quickly while keeping the
// element < page_load <= submit <= upload ordering.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.SnapshotDir = filepath.Join(base, "snapshots")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = ""
	cfgVal.Browser.TeardownTimeout = 1
	cfgVal.Timeouts = config.Timeouts{
		Element:        1,
		PageLoad:       2,
		Upload:         2,
		Submit:         2,
		PollIntervalMS: 5,
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithNtfyTopic points notifications at the given endpoint.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// WithHistoryDisabled turns off the attempt ledger.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithSnapshotsDisabled turns off failure screenshots.
func WithSnapshotsDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Snapshots.Enabled = false
	}
}

// WithoutOptionalSelectors clears the description, tags and license selectors.
func WithoutOptionalSelectors() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Site.Selectors.DescriptionInput = ""
		b.cfg.Site.Selectors.TagsInput = ""
		b.cfg.Site.Selectors.LicenseSelect = ""
	}
}

// BaseDir returns the temp directory backing a config built by NewConfig.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.SnapshotDir)
}
