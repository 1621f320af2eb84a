// cmd/errors.go

package cmd

import (
	"errors"

	"github.com/saument1986/Homelab-infrastructure/pkg/notify_err"
)

func asClassified(err error) (*notify_err.ClassifiedError, bool) {
	var classified *notify_err.ClassifiedError
	ok := errors.As(err, &classified)
	return classified, ok
}
