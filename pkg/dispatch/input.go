// pkg/dispatch/input.go

package dispatch

import (
	"io"
	"os"

	cerr "github.com/cockroachdb/errors"

	"github.com/saument1986/Homelab-infrastructure/pkg/notify_err"
)

// MaxInputBytes bounds a single alert document. Wazuh alerts with full_log
// and syscheck diffs stay well under this.
const MaxInputBytes = 8 << 20

// OpenInput returns the alert file when path is set, stdin otherwise.
func OpenInput(path string, stdin io.Reader) (io.ReadCloser, string, error) {
	if path == "" || path == "-" {
		if stdin == nil {
			stdin = os.Stdin
		}
		return io.NopCloser(stdin), "stdin", nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, path, notify_err.NewInputError("failed to open alert file "+path, err,
			"Check that integratord passed a readable alert file path")
	}
	return f, path, nil
}

// ReadInput reads the whole document, rejecting empty or oversized input.
func ReadInput(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxInputBytes+1))
	if err != nil {
		return nil, notify_err.NewInputError("failed to read alert input", err)
	}
	if len(data) > MaxInputBytes {
		return nil, notify_err.NewInputError("alert input too large", cerr.Newf("more than %d bytes", MaxInputBytes))
	}
	return data, nil
}
