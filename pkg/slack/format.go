// pkg/slack/format.go

package slack

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	cerr "github.com/cockroachdb/errors"
	"github.com/saument1986/Homelab-infrastructure/pkg/alerts"
	"github.com/saument1986/Homelab-infrastructure/pkg/category"
	"github.com/saument1986/Homelab-infrastructure/pkg/severity"
)

const (
	DefaultFooter     = "Wazuh SIEM | Homelab Security"
	DefaultFooterIcon = "https://wazuh.com/assets/images/logos/wazuh.png"

	// DefaultRawDumpLimit bounds the raw alert dump embedded in degraded
	// messages, counted in characters.
	DefaultRawDumpLimit = 500

	// ErrorColor marks degraded messages.
	ErrorColor = "#FF0000"

	// MaxCategories is how many rule groups the Categories field lists.
	MaxCategories = 5
)

// Field titles, in the order they appear on a formatted alert.
const (
	TitleDescription = "Alert Description"
	TitleSeverity    = "📊 Severity Level"
	TitleRuleID      = "🆔 Rule ID"
	TitleAgent       = "🖥️ Agent"
	TitleTime        = "🕒 Time"
	TitleNetwork     = "🌐 Network"
	TitleCategories  = "🏷️ Categories"
)

const degradedHeadline = "🚨 Wazuh Alert (Formatting Error)"

// Result is the outcome of formatting one alert. Message is always
// deliverable; when Degraded is set it is the error variant and Err holds the
// reason the normal rendering failed.
type Result struct {
	Message  Message
	Degraded bool
	Err      error
}

// Formatter renders alert records into Slack messages.
type Formatter struct {
	Severity   severity.Table
	Categories category.Rules
	Footer     string
	FooterIcon string

	// RawDumpLimit caps the raw-input excerpt in degraded messages.
	RawDumpLimit int

	// Optional webhook overrides; empty values are omitted from the payload.
	Username  string
	Channel   string
	IconEmoji string

	// Clock supplies the build time. Defaults to time.Now.
	Clock func() time.Time
}

// NewFormatter returns a formatter with the built-in tables.
func NewFormatter() *Formatter {
	return &Formatter{
		Severity:     severity.DefaultTable(),
		Categories:   category.DefaultRules(),
		Footer:       DefaultFooter,
		FooterIcon:   DefaultFooterIcon,
		RawDumpLimit: DefaultRawDumpLimit,
		Clock:        time.Now,
	}
}

// Format never fails: when the record cannot be rendered normally the
// degraded variant is returned instead.
func (f *Formatter) Format(rec *alerts.Record) Result {
	msg, err := f.build(rec)
	if err != nil {
		return Result{Message: f.degraded(rec, err), Degraded: true, Err: err}
	}
	return Result{Message: msg}
}

func (f *Formatter) build(rec *alerts.Record) (Message, error) {
	if rec == nil {
		return Message{}, cerr.New("no alert record")
	}

	alert, err := rec.Decode()
	if err != nil {
		return Message{}, err
	}

	now := f.now()
	tier := f.Severity.Classify(alert.Rule.Level)
	icon := f.Categories.Resolve(alert.Rule.Groups)

	text := fmt.Sprintf("%s *Wazuh Security Alert* - %s Priority", tier.Glyph, tier.Priority)
	if tier.Mention != "" {
		text = tier.Mention + " " + text
	}

	fields := []Field{
		{Title: icon + " " + TitleDescription, Value: alert.Rule.Description, Short: false},
		{Title: TitleSeverity, Value: fmt.Sprintf("Level %d (%s)", alert.Rule.Level, tier.Label()), Short: true},
		{Title: TitleRuleID, Value: alert.Rule.ID, Short: true},
		{Title: TitleAgent, Value: fmt.Sprintf("%s (%s)", alert.Agent.Name, alert.Agent.IP), Short: true},
		{Title: TitleTime, Value: FormatTimestamp(alert.Timestamp, now), Short: true},
	}

	if network := networkSummary(alert.Data); network != "" {
		fields = append(fields, Field{Title: TitleNetwork, Value: network, Short: true})
	}

	if groups := alert.Rule.Groups; len(groups) > 0 {
		if len(groups) > MaxCategories {
			groups = groups[:MaxCategories]
		}
		fields = append(fields, Field{Title: TitleCategories, Value: strings.Join(groups, ", "), Short: true})
	}

	return f.decorate(Message{
		Text: text,
		Attachments: []Attachment{{
			Color:      tier.Color,
			Fields:     fields,
			Footer:     f.Footer,
			FooterIcon: f.FooterIcon,
			Ts:         now.Unix(),
		}},
	}), nil
}

func (f *Formatter) degraded(rec *alerts.Record, cause error) Message {
	raw := "null"
	if rec != nil {
		raw = rec.Pretty()
	}

	limit := f.RawDumpLimit
	if limit <= 0 {
		limit = DefaultRawDumpLimit
	}

	return f.decorate(Message{
		Text: degradedHeadline,
		Attachments: []Attachment{{
			Color: ErrorColor,
			Text:  fmt.Sprintf("Error formatting alert: %s\nRaw data: %s...", cause, truncateRunes(raw, limit)),
		}},
	})
}

func (f *Formatter) decorate(m Message) Message {
	m.Username = f.Username
	m.Channel = f.Channel
	m.IconEmoji = f.IconEmoji
	return m
}

func (f *Formatter) now() time.Time {
	if f.Clock == nil {
		return time.Now()
	}
	return f.Clock()
}

func networkSummary(d alerts.Data) string {
	switch {
	case d.SrcIP != "" && d.DstIP != "":
		return fmt.Sprintf("Source: %s → Destination: %s", d.SrcIP, d.DstIP)
	case d.SrcIP != "":
		return "Source: " + d.SrcIP
	case d.DstIP != "":
		return "Destination: " + d.DstIP
	default:
		return ""
	}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
