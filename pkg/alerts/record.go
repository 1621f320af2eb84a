// pkg/alerts/record.go

package alerts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	cerr "github.com/cockroachdb/errors"
)

// ErrEmptyInput is returned by Parse when there is nothing to decode.
var ErrEmptyInput = cerr.New("no alert data provided")

// Record is a raw alert document exactly as received. It is never mutated.
type Record struct {
	raw map[string]any
}

// Parse decodes a single JSON object. Numbers are kept as json.Number so the
// record can be dumped back without float rounding.
func Parse(data []byte) (*Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrEmptyInput
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, cerr.Wrap(err, "invalid JSON data")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, cerr.New("invalid JSON data: trailing content after alert object")
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, cerr.Newf("invalid JSON data: expected an object, got %s", kindOf(doc))
	}
	return NewRecord(obj), nil
}

// NewRecord wraps an already-decoded document.
func NewRecord(raw map[string]any) *Record {
	if raw == nil {
		raw = map[string]any{}
	}
	return &Record{raw: raw}
}

// Pretty renders the record as indented JSON. It never fails; a document that
// cannot be encoded is rendered with %v instead.
func (r *Record) Pretty() string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.raw); err != nil {
		return fmt.Sprintf("%v", r.raw)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}

// ShapeError reports a field whose JSON type does not fit the alert model.
type ShapeError struct {
	Path string
	Want string
	Got  string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("field %q: expected %s, got %s", e.Path, e.Want, e.Got)
}

// Decode builds the typed view of the record. Absent or null fields take
// their defaults; a field of the wrong JSON type yields a *ShapeError.
func (r *Record) Decode() (Alert, error) {
	alert := Alert{}

	ts, _, err := scalarField(r.raw, "", "timestamp", "")
	if err != nil {
		return Alert{}, err
	}
	alert.Timestamp = ts

	rule, err := objectField(r.raw, "", "rule")
	if err != nil {
		return Alert{}, err
	}
	if alert.Rule.Level, err = levelField(rule, "rule.level"); err != nil {
		return Alert{}, err
	}
	if alert.Rule.Description, _, err = scalarField(rule, "rule.", "description", DefaultDescription); err != nil {
		return Alert{}, err
	}
	if alert.Rule.ID, _, err = scalarField(rule, "rule.", "id", DefaultRuleID); err != nil {
		return Alert{}, err
	}
	if alert.Rule.Groups, err = listField(rule, "rule.groups"); err != nil {
		return Alert{}, err
	}

	agent, err := objectField(r.raw, "", "agent")
	if err != nil {
		return Alert{}, err
	}
	if alert.Agent.Name, _, err = scalarField(agent, "agent.", "name", DefaultAgentName); err != nil {
		return Alert{}, err
	}
	if alert.Agent.IP, _, err = scalarField(agent, "agent.", "ip", DefaultAgentIP); err != nil {
		return Alert{}, err
	}

	data, err := objectField(r.raw, "", "data")
	if err != nil {
		return Alert{}, err
	}
	if alert.Data.SrcIP, _, err = scalarField(data, "data.", "srcip", ""); err != nil {
		return Alert{}, err
	}
	if alert.Data.DstIP, _, err = scalarField(data, "data.", "dstip", ""); err != nil {
		return Alert{}, err
	}

	return alert, nil
}

// Level returns the rule level without requiring the rest of the record to
// be well formed. ok is false when the level cannot be determined.
func (r *Record) Level() (level int, ok bool) {
	rule, err := objectField(r.raw, "", "rule")
	if err != nil {
		return 0, false
	}
	level, err = levelField(rule, "rule.level")
	return level, err == nil
}

// Groups returns rule.groups without requiring the rest of the record to be
// well formed. ok is false when rule or rule.groups has the wrong shape.
func (r *Record) Groups() (groups []string, ok bool) {
	rule, err := objectField(r.raw, "", "rule")
	if err != nil {
		return nil, false
	}
	groups, err = listField(rule, "rule.groups")
	return groups, err == nil
}

func objectField(m map[string]any, prefix, key string) (map[string]any, error) {
	v, present := m[key]
	if !present || v == nil {
		return map[string]any{}, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &ShapeError{Path: prefix + key, Want: "object", Got: kindOf(v)}
	}
	return obj, nil
}

// scalarField renders strings, numbers and booleans as text.
func scalarField(m map[string]any, prefix, key, def string) (string, bool, error) {
	v, present := m[key]
	if !present || v == nil {
		return def, false, nil
	}
	s, ok := scalarText(v)
	if !ok {
		return "", true, &ShapeError{Path: prefix + key, Want: "string", Got: kindOf(v)}
	}
	return s, true, nil
}

func scalarText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

func levelField(rule map[string]any, path string) (int, error) {
	v, present := rule["level"]
	if !present || v == nil {
		return 0, nil
	}

	var f float64
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			if i > math.MaxInt || i < math.MinInt {
				return 0, &ShapeError{Path: path, Want: "integer", Got: "number " + t.String()}
			}
			return int(i), nil
		}
		parsed, err := t.Float64()
		if err != nil {
			return 0, &ShapeError{Path: path, Want: "integer", Got: "number " + t.String()}
		}
		f = parsed
	case float64:
		f = t
	case int:
		return t, nil
	default:
		return 0, &ShapeError{Path: path, Want: "integer", Got: kindOf(v)}
	}

	// -float64(math.MinInt) is the first value past the int range.
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) ||
		f >= -float64(math.MinInt) || f < float64(math.MinInt) {
		return 0, &ShapeError{Path: path, Want: "integer", Got: "number " + strconv.FormatFloat(f, 'g', -1, 64)}
	}
	return int(f), nil
}

func listField(rule map[string]any, path string) ([]string, error) {
	v, present := rule["groups"]
	if !present || v == nil {
		return nil, nil
	}

	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case []string:
		return append([]string(nil), t...), nil
	default:
		return nil, &ShapeError{Path: path, Want: "array", Got: kindOf(v)}
	}

	groups := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := scalarText(item)
		if !ok {
			return nil, &ShapeError{Path: fmt.Sprintf("%s[%d]", path, i), Want: "string", Got: kindOf(item)}
		}
		groups = append(groups, s)
	}
	return groups, nil
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case json.Number, float64, int:
		return "number"
	case bool:
		return "boolean"
	case []any, []string:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
