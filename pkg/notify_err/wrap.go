// pkg/notify_err/wrap.go

package notify_err

import (
	cerr "github.com/cockroachdb/errors"
)

func WrapValidationError(err error) error {
	return cerr.WithHint(cerr.WithStack(err), "configuration validation failed")
}

func WrapInputError(err error) error {
	return cerr.WithHint(cerr.WithStack(err), "pipe exactly one Wazuh alert JSON object on stdin")
}
