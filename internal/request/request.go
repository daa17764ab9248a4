package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/ugm616/news-automation-n8n/internal/failure"
)

// LicenseMode selects how the remote site may redistribute the asset.
type LicenseMode string

const (
	// LicenseRestrictive keeps the asset on the publishing site only.
	LicenseRestrictive LicenseMode = "restrictive"
	// LicensePermissive lets the site manage and license the asset.
	LicensePermissive LicenseMode = "permissive"
)

// Site-native license values accepted as aliases.
const (
	siteRestrictive = "rumble_only"
	sitePermissive  = "video_management"
)

// UploadRequest describes the one asset published by an invocation. It is
// treated as immutable once Parse returns.
type UploadRequest struct {
	AssetPath   string      `json:"asset_path"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	License     LicenseMode `json:"license_mode"`
}

// wireRequest accepts both the canonical field names and the names used by
// the orchestrator that predates this tool.
type wireRequest struct {
	AssetPath   string   `json:"asset_path"`
	VideoPath   string   `json:"video_path"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	LicenseMode string   `json:"license_mode"`
	License     string   `json:"license"`
}

// Parse decodes, normalises and validates a JSON request. Every error it
// returns matches failure.ErrValidation.
func Parse(raw []byte) (UploadRequest, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return UploadRequest{}, failure.Wrap(failure.ErrValidation, "request", "parse", "request is empty", nil)
	}

	var wire wireRequest
	if err := json.Unmarshal(raw, &wire); err != nil {
		return UploadRequest{}, failure.Wrap(failure.ErrValidation, "request", "parse", "decode request JSON", err)
	}

	license, err := ParseLicense(firstNonEmpty(wire.LicenseMode, wire.License))
	if err != nil {
		return UploadRequest{}, err
	}

	req := UploadRequest{
		AssetPath:   strings.TrimSpace(firstNonEmpty(wire.AssetPath, wire.VideoPath)),
		Title:       normalizeTitle(wire.Title),
		Description: strings.TrimSpace(wire.Description),
		Tags:        NormalizeTags(wire.Tags),
		License:     license,
	}
	if err := req.Validate(); err != nil {
		return UploadRequest{}, err
	}
	return req, nil
}

// ParseLicense maps a canonical mode or site-native value onto a LicenseMode.
// An empty value selects LicensePermissive.
func ParseLicense(value string) (LicenseMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(LicensePermissive), sitePermissive:
		return LicensePermissive, nil
	case string(LicenseRestrictive), siteRestrictive:
		return LicenseRestrictive, nil
	default:
		return "", failure.Wrap(failure.ErrValidation, "request", "parse license",
			fmt.Sprintf("unsupported license mode %q (want %s or %s)", value, LicenseRestrictive, LicensePermissive), nil)
	}
}

// Validate checks the invariants that must hold before a session is opened.
func (r UploadRequest) Validate() error {
	var problems []error
	if strings.TrimSpace(r.AssetPath) == "" {
		problems = append(problems, errors.New("asset_path is required"))
	} else if err := checkAsset(r.AssetPath); err != nil {
		problems = append(problems, err)
	}
	if strings.TrimSpace(r.Title) == "" {
		problems = append(problems, errors.New("title is required"))
	}
	if r.License != LicenseRestrictive && r.License != LicensePermissive {
		problems = append(problems, fmt.Errorf("license_mode %q is invalid", r.License))
	}
	if len(problems) > 0 {
		return failure.Wrap(failure.ErrValidation, "request", "validate", "invalid upload request", errors.Join(problems...))
	}
	return nil
}

// HasDescription reports whether a description should be filled.
func (r UploadRequest) HasDescription() bool {
	return r.Description != ""
}

// HasTags reports whether tags should be filled.
func (r UploadRequest) HasTags() bool {
	return len(r.Tags) > 0
}

// JoinTags renders the tags as one delimited list.
func (r UploadRequest) JoinTags(separator string) string {
	return strings.Join(r.Tags, separator)
}

func checkAsset(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("asset_path %q does not exist", path)
		}
		return fmt.Errorf("asset_path %q: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("asset_path %q is not a regular file", path)
	}
	return nil
}

func normalizeTitle(title string) string {
	return norm.NFC.String(strings.TrimSpace(title))
}

// NormalizeTags trims tags, drops empty entries and removes case-insensitive
// duplicates while keeping first-seen order.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	folder := cases.Fold()
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = norm.NFC.String(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		key := folder.String(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
