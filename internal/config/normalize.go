package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSite()
	c.normalizeCredentials()
	if err := c.normalizeBrowser(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.SnapshotDir) == "" {
		c.Paths.SnapshotDir = defaultSnapshotDir
	}
	if c.Paths.SnapshotDir, err = expandPath(c.Paths.SnapshotDir); err != nil {
		return fmt.Errorf("paths.snapshot_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSite() {
	c.Site.BaseURL = strings.TrimRight(strings.TrimSpace(c.Site.BaseURL), "/")
	if c.Site.BaseURL == "" {
		c.Site.BaseURL = defaultBaseURL
	}
	c.Site.UploadURL = strings.TrimSpace(c.Site.UploadURL)
	if c.Site.UploadURL == "" {
		c.Site.UploadURL = defaultUploadURL
	}
	if c.Site.TagSeparator == "" {
		c.Site.TagSeparator = defaultTagSeparator
	}

	sel := &c.Site.Selectors
	for _, field := range []*string{
		&sel.LoginLink, &sel.IdentityInput, &sel.SecretInput, &sel.LoginSubmit,
		&sel.FileInput, &sel.TitleInput, &sel.DescriptionInput, &sel.TagsInput,
		&sel.LicenseSelect, &sel.PublishSubmit,
	} {
		*field = strings.TrimSpace(*field)
	}

	c.Site.LicenseValues.Restrictive = strings.TrimSpace(c.Site.LicenseValues.Restrictive)
	c.Site.LicenseValues.Permissive = strings.TrimSpace(c.Site.LicenseValues.Permissive)
}

func (c *Config) normalizeCredentials() {
	c.Credentials.IdentityEnv = strings.TrimSpace(c.Credentials.IdentityEnv)
	if c.Credentials.IdentityEnv == "" {
		c.Credentials.IdentityEnv = defaultIdentityEnv
	}
	c.Credentials.SecretEnv = strings.TrimSpace(c.Credentials.SecretEnv)
	if c.Credentials.SecretEnv == "" {
		c.Credentials.SecretEnv = defaultSecretEnv
	}
}

func (c *Config) normalizeBrowser() error {
	c.Browser.ExecPath = strings.TrimSpace(c.Browser.ExecPath)
	if c.Browser.ExecPath != "" {
		expanded, err := expandPath(c.Browser.ExecPath)
		if err != nil {
			return fmt.Errorf("browser.exec_path: %w", err)
		}
		c.Browser.ExecPath = expanded
	}
	c.Browser.UserAgent = strings.TrimSpace(c.Browser.UserAgent)
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv(NtfyTopicEnv); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
	if c.Snapshots.RetentionDays < 0 {
		c.Snapshots.RetentionDays = 0
	}
	if c.History.RetentionDays < 0 {
		c.History.RetentionDays = 0
	}
}
