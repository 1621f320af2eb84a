// pkg/slack/timestamp.go

package slack

import (
	"strings"
	"time"
)

// DisplayLayout renders alert times in the message body.
const DisplayLayout = "2006-01-02 15:04:05 UTC"

// isoLayouts cover the ISO-8601 shapes Wazuh and its decoders emit. Fractional
// seconds are accepted by time.Parse without being named in the layout.
var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z0700",
}

// naiveLayouts carry no offset and are read as UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp. A trailing "Z" means UTC.
func ParseTimestamp(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders raw in UTC, falls back to raw unchanged when it
// cannot be parsed, and uses now when raw is empty.
func FormatTimestamp(raw string, now time.Time) string {
	if raw == "" {
		return now.UTC().Format(DisplayLayout)
	}
	t, ok := ParseTimestamp(raw)
	if !ok {
		return raw
	}
	return t.UTC().Format(DisplayLayout)
}
