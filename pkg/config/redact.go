// pkg/config/redact.go

package config

import (
	"github.com/saument1986/Homelab-infrastructure/pkg/notify_err"
)

// Redacted returns a copy safe to print: the webhook credential path is masked.
func (c Config) Redacted() Config {
	out := c
	if out.WebhookURL != "" {
		out.WebhookURL = notify_err.RedactURLs(out.WebhookURL)
	}
	out.SkipGroups = append([]string(nil), c.SkipGroups...)
	return out
}
