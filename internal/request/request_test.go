package request_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ugm616/news-automation-n8n/internal/failure"
	"github.com/ugm616/news-automation-n8n/internal/request"
)

func writeAsset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("mp4"), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}
	return path
}

func TestParseValidRequest(t *testing.T) {
	asset := writeAsset(t)
	raw := `{"asset_path":"` + asset + `","title":"  Breaking: Local Election Results ","tags":["news"," local ","News",""],"license_mode":"restrictive"}`

	req, err := request.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if req.AssetPath != asset {
		t.Fatalf("asset path = %q", req.AssetPath)
	}
	if req.Title != "Breaking: Local Election Results" {
		t.Fatalf("title = %q", req.Title)
	}
	if !reflect.DeepEqual(req.Tags, []string{"news", "local"}) {
		t.Fatalf("tags = %#v", req.Tags)
	}
	if req.License != request.LicenseRestrictive {
		t.Fatalf("license = %q", req.License)
	}
	if req.HasDescription() {
		t.Fatal("expected no description")
	}
	if got := req.JoinTags(", "); got != "news, local" {
		t.Fatalf("JoinTags = %q", got)
	}
}

func TestParseAcceptsLegacyFieldNames(t *testing.T) {
	asset := writeAsset(t)
	raw := `{"video_path":"` + asset + `","title":"Clip","description":"desc","license":"rumble_only","channel_id":7}`

	req, err := request.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if req.AssetPath != asset {
		t.Fatalf("expected video_path alias, got %q", req.AssetPath)
	}
	if req.License != request.LicenseRestrictive {
		t.Fatalf("expected rumble_only to map to restrictive, got %q", req.License)
	}
	if req.Description != "desc" {
		t.Fatalf("description = %q", req.Description)
	}
}

func TestParseDefaultsToPermissiveLicense(t *testing.T) {
	asset := writeAsset(t)
	req, err := request.Parse([]byte(`{"asset_path":"` + asset + `","title":"Clip"}`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if req.License != request.LicensePermissive {
		t.Fatalf("license = %q", req.License)
	}
}

func TestParseNormalizesTitleToNFC(t *testing.T) {
	asset := writeAsset(t)
	req, err := request.Parse([]byte(`{"asset_path":"` + asset + `","title":"Cafe\u0301 opening"}`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if req.Title != "Caf\u00e9 opening" {
		t.Fatalf("expected composed title, got %q", req.Title)
	}
}

func TestParseRejectsInvalidRequests(t *testing.T) {
	asset := writeAsset(t)
	dir := t.TempDir()
	tests := []struct {
		name    string
		raw     string
		wantMsg string
	}{
		{"empty", ``, "request is empty"},
		{"malformed", `{"title":`, "decode request JSON"},
		{"missing asset", `{"title":"Clip"}`, "asset_path is required"},
		{"missing title", `{"asset_path":"` + asset + `"}`, "title is required"},
		{"blank title", `{"asset_path":"` + asset + `","title":"   "}`, "title is required"},
		{"nonexistent asset", `{"asset_path":"` + filepath.Join(dir, "nope.mp4") + `","title":"Clip"}`, "does not exist"},
		{"directory asset", `{"asset_path":"` + dir + `","title":"Clip"}`, "not a regular file"},
		{"bad license", `{"asset_path":"` + asset + `","title":"Clip","license_mode":"public"}`, "unsupported license mode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := request.Parse([]byte(tt.raw))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, failure.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Fatalf("error %q does not mention %q", err, tt.wantMsg)
			}
			if failure.KindOf(err) != failure.KindValidation {
				t.Fatalf("kind = %s", failure.KindOf(err))
			}
		})
	}
}

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{nil, nil},
		{[]string{" ", ""}, nil},
		{[]string{"Go", "go", "GO", "rust"}, []string{"Go", "rust"}},
	}
	for _, tt := range tests {
		if got := request.NormalizeTags(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("NormalizeTags(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
