package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// pointAtFakes rewrites the env's config to use a stub browser binary and a
// local site so preflight runs offline.
func pointAtFakes(t *testing.T, env *cliTestEnv, siteURL string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chromium")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write fake browser: %v", err)
	}
	env.cfg.Browser.ExecPath = path
	env.cfg.Site.BaseURL = siteURL
	writeTestConfig(t, env.configPath, env.cfg)
}

func TestDoctorAllChecksPass(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer site.Close()

	env := setupCLITestEnv(t)
	pointAtFakes(t, env, site.URL)

	out, _, err := runCLI(t, env, "", "doctor")
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "== Preflight ==")
	requireContains(t, out, "Chrome/Chromium:")
	requireContains(t, out, "[OK] RUMBLE_EMAIL and RUMBLE_PASSWORD set")
	requireContains(t, out, "5 checks passed")
}

func TestDoctorReportsMissingCredentials(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer site.Close()

	env := setupCLITestEnv(t)
	pointAtFakes(t, env, site.URL)
	env.env = map[string]string{}

	out, _, err := runCLI(t, env, "", "doctor")
	if err == nil {
		t.Fatal("expected doctor to fail")
	}
	requireContains(t, out, "[ERROR] RUMBLE_EMAIL, RUMBLE_PASSWORD not set")
	requireContains(t, out, "1 of 5 checks failed")
}
