package config

const (
	defaultConfigPath        = "~/.config/rumble-uploader/config.toml"
	projectConfigName        = "rumble-uploader.toml"
	defaultSnapshotDir       = "."
	defaultStateDir          = "~/.local/share/rumble-uploader"
	defaultBaseURL           = "https://rumble.com"
	defaultUploadURL         = "https://rumble.com/upload.php"
	defaultTagSeparator      = ", "
	defaultIdentityEnv       = "RUMBLE_EMAIL"
	defaultSecretEnv         = "RUMBLE_PASSWORD"
	defaultViewportWidth     = 1920
	defaultViewportHeight    = 1080
	defaultTeardownTimeout   = 10
	defaultElementTimeout    = 10
	defaultPageLoadTimeout   = 60
	defaultUploadTimeout     = 300
	defaultSubmitTimeout     = 300
	defaultPollIntervalMS    = 250
	defaultSnapshotRetention = 30
	defaultHistoryRetention  = 365
	defaultNotifyTimeout     = 10
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultLogRetentionDays  = 30

	// NtfyTopicEnv overrides notifications.ntfy_topic when the file leaves it empty.
	NtfyTopicEnv = "RUMBLE_UPLOADER_NTFY_TOPIC"
)

// DefaultSelectors mirrors the markup of the publish site as of writing.
func DefaultSelectors() Selectors {
	return Selectors{
		LoginLink:        `a[href*="login"]`,
		IdentityInput:    `input[name="username"], input[type="email"]`,
		SecretInput:      `input[name="password"], input[type="password"]`,
		LoginSubmit:      `button[type="submit"]`,
		FileInput:        `input[type="file"]`,
		TitleInput:       `input[name="title"]`,
		DescriptionInput: `textarea[name="description"]`,
		TagsInput:        `input[name="tags"]`,
		LicenseSelect:    `select[name="rights"]`,
		PublishSubmit:    `button[type="submit"], input[type="submit"]`,
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SnapshotDir: defaultSnapshotDir,
			StateDir:    defaultStateDir,
		},
		Site: Site{
			BaseURL:      defaultBaseURL,
			UploadURL:    defaultUploadURL,
			TagSeparator: defaultTagSeparator,
			Selectors:    DefaultSelectors(),
			LicenseValues: LicenseValues{
				Restrictive: "rumble_only",
				Permissive:  "video_management",
			},
		},
		Credentials: Credentials{
			IdentityEnv: defaultIdentityEnv,
			SecretEnv:   defaultSecretEnv,
		},
		Browser: Browser{
			Headless:        true,
			ViewportWidth:   defaultViewportWidth,
			ViewportHeight:  defaultViewportHeight,
			NoSandbox:       true,
			TeardownTimeout: defaultTeardownTimeout,
		},
		Timeouts: Timeouts{
			Element:        defaultElementTimeout,
			PageLoad:       defaultPageLoadTimeout,
			Upload:         defaultUploadTimeout,
			Submit:         defaultSubmitTimeout,
			PollIntervalMS: defaultPollIntervalMS,
		},
		Snapshots: Snapshots{
			Enabled:       true,
			RetentionDays: defaultSnapshotRetention,
		},
		History: History{
			Enabled:       true,
			RetentionDays: defaultHistoryRetention,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Published:      true,
			Failed:         true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
