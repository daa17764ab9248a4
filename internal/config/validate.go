package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSite(); err != nil {
		return err
	}
	if err := c.validateCredentials(); err != nil {
		return err
	}
	if err := c.validateBrowser(); err != nil {
		return err
	}
	if err := c.validateTimeouts(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSite() error {
	if err := validateHTTPURL("site.base_url", c.Site.BaseURL); err != nil {
		return err
	}
	if err := validateHTTPURL("site.upload_url", c.Site.UploadURL); err != nil {
		return err
	}
	required := map[string]string{
		"site.selectors.login_link":     c.Site.Selectors.LoginLink,
		"site.selectors.identity_input": c.Site.Selectors.IdentityInput,
		"site.selectors.secret_input":   c.Site.Selectors.SecretInput,
		"site.selectors.login_submit":   c.Site.Selectors.LoginSubmit,
		"site.selectors.file_input":     c.Site.Selectors.FileInput,
		"site.selectors.title_input":    c.Site.Selectors.TitleInput,
		"site.selectors.publish_submit": c.Site.Selectors.PublishSubmit,
	}
	if err := ensureNonEmptyMap(required); err != nil {
		return err
	}
	if c.Site.Selectors.LicenseSelect != "" {
		if c.Site.LicenseValues.Restrictive == "" || c.Site.LicenseValues.Permissive == "" {
			return errors.New("site.license_values.restrictive and site.license_values.permissive must be set when site.selectors.license_select is set")
		}
	}
	return nil
}

func (c *Config) validateCredentials() error {
	if c.Credentials.IdentityEnv == c.Credentials.SecretEnv {
		return errors.New("credentials.identity_env and credentials.secret_env must name different variables")
	}
	return nil
}

func (c *Config) validateBrowser() error {
	if c.Browser.ViewportWidth <= 0 || c.Browser.ViewportHeight <= 0 {
		return errors.New("browser.viewport_width and browser.viewport_height must be positive")
	}
	if c.Browser.TeardownTimeout <= 0 {
		return errors.New("browser.teardown_timeout must be positive")
	}
	return nil
}

// validateTimeouts enforces the tier ordering element < page_load <= submit <= upload.
func (c *Config) validateTimeouts() error {
	t := c.Timeouts
	if err := ensurePositiveMap(map[string]int{
		"timeouts.element":          t.Element,
		"timeouts.page_load":        t.PageLoad,
		"timeouts.upload":           t.Upload,
		"timeouts.submit":           t.Submit,
		"timeouts.poll_interval_ms": t.PollIntervalMS,
	}); err != nil {
		return err
	}
	if t.Element >= t.PageLoad {
		return errors.New("timeouts.element must be shorter than timeouts.page_load")
	}
	if t.PageLoad > t.Submit {
		return errors.New("timeouts.submit must be at least timeouts.page_load")
	}
	if t.Submit > t.Upload {
		return errors.New("timeouts.upload must be at least timeouts.submit")
	}
	if t.PollInterval() >= t.ElementTimeout() {
		return errors.New("timeouts.poll_interval_ms must be shorter than timeouts.element")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout < 0 {
		return errors.New("notifications.request_timeout must be >= 0")
	}
	if c.Notifications.NtfyTopic != "" {
		if err := validateHTTPURL("notifications.ntfy_topic", c.Notifications.NtfyTopic); err != nil {
			return err
		}
	}
	return nil
}

func validateHTTPURL(key, raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http or https URL", key)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return fmt.Errorf("%s must include a host", key)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}

func ensureNonEmptyMap(values map[string]string) error {
	for key, value := range values {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s must be set", key)
		}
	}
	return nil
}
