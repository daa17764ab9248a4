package outcome

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// Reporter writes the outcome record to stdout and diagnostics to stderr.
// Only the first Emit writes anything.
type Reporter struct {
	stdout io.Writer
	stderr io.Writer
	once   sync.Once
}

// NewReporter builds a reporter.
func NewReporter(stdout, stderr io.Writer) *Reporter {
	if stderr == nil {
		stderr = io.Discard
	}
	return &Reporter{stdout: stdout, stderr: stderr}
}

// Emit writes o as one compact JSON line and returns the process exit code.
func (r *Reporter) Emit(o Outcome) int {
	code := o.ExitCode()
	r.once.Do(func() {
		data, err := json.Marshal(o)
		if err != nil {
			// Outcome only holds strings and a bool; this cannot fail in practice.
			data = []byte(`{"success":false,"error":"encode outcome"}`)
			code = 1
		}
		if _, err := fmt.Fprintf(r.stdout, "%s\n", data); err != nil {
			fmt.Fprintf(r.stderr, "rumble-uploader: write outcome: %v\n", err)
			code = 1
		}
		if o.Success {
			return
		}
		fmt.Fprintf(r.stderr, "rumble-uploader: %s\n", o.ErrorText())
		if o.SnapshotPath != "" {
			fmt.Fprintf(r.stderr, "rumble-uploader: snapshot saved to %s\n", o.SnapshotPath)
		} else if o.SnapshotErr != "" {
			fmt.Fprintf(r.stderr, "rumble-uploader: snapshot not captured: %s\n", o.SnapshotErr)
		}
	})
	return code
}
