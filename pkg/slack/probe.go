// pkg/slack/probe.go

package slack

import "time"

const (
	ProbeHeadline = "🔒 Wazuh Slack Integration Test"
	ProbeColor    = "#00FF00"
	ProbeStatus   = "Integration Working ✅"
)

// ProbeMessage is the canned message sent by --test to check the webhook.
func ProbeMessage(now time.Time) Message {
	return Message{
		Text: ProbeHeadline,
		Attachments: []Attachment{{
			Color: ProbeColor,
			Fields: []Field{
				{Title: "Status", Value: ProbeStatus, Short: true},
				{Title: "Time", Value: now.Format("2006-01-02 15:04:05"), Short: true},
			},
		}},
	}
}

// Probe builds the test message with the formatter's clock and overrides.
func (f *Formatter) Probe() Message {
	return f.decorate(ProbeMessage(f.now()))
}
