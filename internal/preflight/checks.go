package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/ugm616/news-automation-n8n/internal/auth"
)

// CheckSite verifies that the publish site answers over HTTP. Any response
// below 500 counts as reachable; bot protection commonly answers 403 to
// non-browser clients.
func CheckSite(ctx context.Context, baseURL string) Result {
	const name = "Publish site"

	base := strings.TrimSpace(baseURL)
	if base == "" {
		return Result{Name: name, Detail: "missing url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, base, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("request failed (%v)", err)}
	}
	req.Header.Set("User-Agent", "rumble-uploader/0.1.0 (doctor)")

	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: summarizeNetError(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return Result{Name: name, Detail: fmt.Sprintf("%s answered %d", base, resp.StatusCode)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s reachable (%d)", base, resp.StatusCode)}
}

// CheckCredentials verifies both credential variables are set. Only the
// variable names appear in the result.
func CheckCredentials(lookupEnv auth.LookupFunc, identityVar, secretVar string) Result {
	const name = "Credentials"

	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	if identityVar == "" {
		identityVar = auth.DefaultIdentityEnv
	}
	if secretVar == "" {
		secretVar = auth.DefaultSecretEnv
	}
	if _, err := auth.CredentialsFromEnv(lookupEnv, identityVar, secretVar); err != nil {
		var missing []string
		for _, key := range []string{identityVar, secretVar} {
			if value, ok := lookupEnv(key); !ok || strings.TrimSpace(value) == "" {
				missing = append(missing, key)
			}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s not set", strings.Join(missing, ", "))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s and %s set", identityVar, secretVar)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

func summarizeNetError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out (site unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "request timed out (site unreachable)"
	}
	return err.Error()
}
