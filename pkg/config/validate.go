// pkg/config/validate.go

package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"

	"github.com/saument1986/Homelab-infrastructure/pkg/notify_err"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Validate checks field constraints and reports every violation at once.
func (c *Config) Validate() error {
	err := structValidator().Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return notify_err.NewConfigError("invalid configuration", notify_err.WrapValidationError(err))
	}

	var result *multierror.Error
	for _, fe := range fieldErrs {
		result = multierror.Append(result, describe(fe))
	}
	return notify_err.NewConfigError("invalid configuration", notify_err.WrapValidationError(result.ErrorOrNil()))
}

func describe(fe validator.FieldError) error {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "url", "startswith":
		return fmt.Errorf("%s must be an http(s) URL", field)
	case "gt":
		return fmt.Errorf("%s must be positive", field)
	case "required":
		return fmt.Errorf("%s must not be empty", field)
	case "file":
		return fmt.Errorf("%s must name an existing file", field)
	default:
		return fmt.Errorf("%s failed %q check", field, fe.Tag())
	}
}

// RequireWebhook reports a configuration error when no endpoint is known.
func (c *Config) RequireWebhook() error {
	if c.WebhookURL != "" {
		return nil
	}
	return notify_err.NewConfigError(WebhookEnv+" environment variable not set", nil,
		"export "+WebhookEnv+"=https://hooks.slack.com/services/...",
		"or pass --webhook-url, or set webhook_url in "+WazuhConfigPath,
		"or point --vault-path at a KV v2 secret with a webhook_url field",
	)
}
