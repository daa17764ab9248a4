package deps

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// BrowserName labels the browser dependency in doctor output.
const BrowserName = "Chrome/Chromium"

// BrowserCandidates are the executable names tried, in order, when no
// explicit browser path is configured. They match what chromedp's own
// allocator looks for on Linux.
var BrowserCandidates = []string{
	"headless_shell",
	"headless-shell",
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
	"google-chrome-beta",
	"google-chrome-unstable",
}

// Source records how a browser binary was located.
type Source string

const (
	SourceConfigured Source = "browser.exec_path"
	SourcePath       Source = "PATH"
)

// BrowserStatus reports which browser binary a session would launch.
type BrowserStatus struct {
	Name      string
	Path      string
	Source    Source
	Available bool
	Detail    string
}

// CheckBrowser reports the Chrome or Chromium binary a session will launch.
//
// An explicitly configured path wins and must exist and be executable;
// otherwise the first candidate found on PATH is reported.
func CheckBrowser(configured string) BrowserStatus {
	if configured = strings.TrimSpace(configured); configured != "" {
		return checkConfigured(configured)
	}

	status := BrowserStatus{Name: BrowserName, Source: SourcePath}
	for _, candidate := range BrowserCandidates {
		if path, ok := lookupExecutable(candidate); ok {
			status.Path = path
			status.Available = true
			return status
		}
	}
	status.Path = BrowserCandidates[0]
	status.Detail = fmt.Sprintf("none of %s found on PATH; set browser.exec_path", strings.Join(BrowserCandidates, ", "))
	return status
}

func checkConfigured(configured string) BrowserStatus {
	status := BrowserStatus{Name: BrowserName, Path: configured, Source: SourceConfigured}
	resolved, err := exec.LookPath(configured)
	if err != nil {
		status.Detail = fmt.Sprintf("configured browser %q not found", configured)
		return status
	}
	if _, ok := lookupExecutable(resolved); !ok {
		status.Detail = fmt.Sprintf("configured browser %q is not executable", configured)
		return status
	}
	status.Path = resolved
	status.Available = true
	return status
}

// lookupExecutable resolves name through PATH and confirms the result is a
// regular file the current user may execute.
func lookupExecutable(name string) (string, bool) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", false
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o111 == 0 {
		return "", false
	}
	return path, true
}
