// pkg/notify_err/classification.go
//
// Error classification with exit codes. Every hard failure of a one-shot
// invocation exits 1 so the calling integrator or scheduler can decide
// whether to re-run it.

package notify_err

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCategory classifies errors for appropriate handling
type ErrorCategory int

const (
	// CategoryConfiguration - missing or invalid endpoint/settings
	CategoryConfiguration ErrorCategory = iota
	// CategoryInput - missing or unreadable alert document
	CategoryInput
	// CategoryDelivery - webhook rejected the message or was unreachable
	CategoryDelivery
	// CategoryInternal - bugs, recovered panics
	CategoryInternal
)

func (c ErrorCategory) String() string {
	switch c {
	case CategoryConfiguration:
		return "configuration"
	case CategoryInput:
		return "input"
	case CategoryDelivery:
		return "delivery"
	case CategoryInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// ClassifiedError wraps an error with category and remediation info
type ClassifiedError struct {
	Category    ErrorCategory
	Message     string
	Cause       error
	Remediation []string
}

// Error implements the error interface
func (e *ClassifiedError) Error() string {
	var sb strings.Builder

	sb.WriteString(e.Message)

	if e.Cause != nil && e.Cause.Error() != e.Message {
		sb.WriteString(": ")
		sb.WriteString(SanitizeErrorMessage(e.Cause))
	}

	return sb.String()
}

// Detail renders the message with numbered remediation steps for terminals.
func (e *ClassifiedError) Detail() string {
	var sb strings.Builder
	sb.WriteString(e.Error())

	if len(e.Remediation) > 0 {
		sb.WriteString("\n\nHow to fix:")
		for i, step := range e.Remediation {
			sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, step))
		}
	}
	return sb.String()
}

// Unwrap returns the underlying error
func (e *ClassifiedError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the process exit code for this error.
func (e *ClassifiedError) ExitCode() int {
	return 1
}

// GetExitCode extracts exit code from any error
// Returns 0 for nil and expected outcomes, 1 for everything else
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.ExitCode()
	}

	if IsExpectedUserError(err) {
		return 0
	}

	return 1
}

// CategoryOf returns the category of a classified error.
func CategoryOf(err error) (ErrorCategory, bool) {
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified.Category, true
	}
	return 0, false
}

// NewConfigError creates an error for missing or invalid configuration
func NewConfigError(message string, cause error, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryConfiguration,
		Message:     message,
		Cause:       cause,
		Remediation: remediation,
	}
}

// NewInputError creates an error for a missing or malformed alert document
func NewInputError(message string, cause error, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryInput,
		Message:     message,
		Cause:       cause,
		Remediation: remediation,
	}
}

// NewDeliveryError creates an error for a failed webhook call
func NewDeliveryError(message string, cause error, remediation ...string) error {
	return &ClassifiedError{
		Category:    CategoryDelivery,
		Message:     message,
		Cause:       cause,
		Remediation: remediation,
	}
}

// NewInternalError creates an error for bugs in this tool
func NewInternalError(message string, cause error) error {
	return &ClassifiedError{
		Category: CategoryInternal,
		Message:  message,
		Cause:    cause,
		Remediation: []string{
			"This is likely a bug in wazuh-notify",
			"Re-run with --debug and include the log file in the report",
		},
	}
}

// IsCategory reports whether err is classified as category.
func IsCategory(err error, category ErrorCategory) bool {
	c, ok := CategoryOf(err)
	return ok && c == category
}
