// pkg/notify_cli/wrap.go

package notify_cli

import (
	"context"

	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/saument1986/Homelab-infrastructure/pkg/notify_err"
	"github.com/saument1986/Homelab-infrastructure/pkg/notify_io"
)

// RunIDFunc supplies the run id for a command; the root command generates
// one before the logger is built so both share it.
type RunIDFunc func() string

// Wrap ensures panic recovery, a command span and outcome logging.
func Wrap(runID RunIDFunc, fn func(rc *notify_io.RuntimeContext, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		id := ""
		if runID != nil {
			id = runID()
		}

		rc := notify_io.NewContext(parent, cmd.Name(), id)
		defer rc.End(&err)
		defer rc.HandlePanic(&err)

		err = fn(rc, cmd, args)
		if err != nil && !notify_err.IsExpectedUserError(err) {
			err = cerr.WithStack(err)
		}
		return err
	}
}
