// pkg/slack/message.go

package slack

import (
	"bytes"
	"encoding/json"
)

// Message is an incoming-webhook payload with legacy attachments.
type Message struct {
	Text        string       `json:"text"`
	Username    string       `json:"username,omitempty"`
	Channel     string       `json:"channel,omitempty"`
	IconEmoji   string       `json:"icon_emoji,omitempty"`
	Attachments []Attachment `json:"attachments"`
}

type Attachment struct {
	Color      string  `json:"color"`
	Text       string  `json:"text,omitempty"`
	Fields     []Field `json:"fields,omitempty"`
	Footer     string  `json:"footer,omitempty"`
	FooterIcon string  `json:"footer_icon,omitempty"`
	// Ts is the Unix time the message was built, not the alert time.
	Ts int64 `json:"ts,omitempty"`
}

type Field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// JSON encodes the message without HTML escaping so arrows and angle
// brackets reach Slack verbatim.
func (m Message) JSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Field returns the first field with the given title.
func (a Attachment) Field(title string) (Field, bool) {
	for _, f := range a.Fields {
		if f.Title == title {
			return f, true
		}
	}
	return Field{}, false
}
