// Package config loads, normalizes, and validates rumble-uploader
// configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// RUMBLE_UPLOADER_NTFY_TOPIC. The Config type centralizes every knob the CLI
// needs: the target site's URLs and selectors, browser launch settings, the
// tiered wait timeouts, and where snapshots, history, and logs live.
//
// Credentials are deliberately absent: the config names the environment
// variables that carry them, and the CLI reads those once at startup.
package config
