// pkg/notify_err/security_improvements.go

package notify_err

import (
	"regexp"
	"strings"
)

// Webhook URLs carry their credential in the path, so anything after the host
// is dropped before an error reaches a log line or terminal.
var urlPattern = regexp.MustCompile(`(https?://[^/\s"']+)(/[^\s"']*)?`)

// RedactURLs replaces the path and query of every http(s) URL in s.
func RedactURLs(s string) string {
	return urlPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := urlPattern.FindStringSubmatch(match)
		if len(parts) < 3 || parts[2] == "" || parts[2] == "/" {
			return match
		}
		return parts[1] + "/[REDACTED]"
	})
}

// SanitizeErrorMessage removes sensitive information from error messages
func SanitizeErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	return RedactURLs(err.Error())
}

// SafeErrorSummary creates a short label for an error, suitable for telemetry
func SafeErrorSummary(err error) string {
	if err == nil {
		return "success"
	}

	if c, ok := CategoryOf(err); ok {
		return c.String()
	}

	lowered := strings.ToLower(SanitizeErrorMessage(err))

	switch {
	case strings.Contains(lowered, "timeout"):
		return "service_timeout"
	case strings.Contains(lowered, "network") || strings.Contains(lowered, "connection"):
		return "connectivity_issue"
	case strings.Contains(lowered, "invalid"):
		return "input_validation_error"
	default:
		return "general_error"
	}
}
