// pkg/logger/terminal_core.go

package logger

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap/zapcore"
)

// TerminalPrefix marks messages meant for the operator. They are printed as
// plain text on the terminal writer and never reach the console encoder.
const TerminalPrefix = "terminal prompt:"

// outputField is printed verbatim, before any other field.
const outputField = "output"

type promptCore struct {
	zapcore.Core
	out io.Writer
	mu  *sync.Mutex
}

func newTerminalConsoleCore(base zapcore.Core, out io.Writer) zapcore.Core {
	return &promptCore{Core: base, out: out, mu: &sync.Mutex{}}
}

func (c *promptCore) With(fields []zapcore.Field) zapcore.Core {
	return &promptCore{Core: c.Core.With(fields), out: c.out, mu: c.mu}
}

func (c *promptCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if isPrompt(entry) {
		if !c.Enabled(entry.Level) {
			return ce
		}
		return ce.AddCore(entry, c)
	}
	return c.Core.Check(entry, ce)
}

// Write renders only the fields passed with the call; fields attached with
// With stay in the structured log.
func (c *promptCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	if !isPrompt(entry) {
		return c.Core.Write(entry, fields)
	}

	var lines []string
	if text := strings.TrimSpace(strings.TrimPrefix(entry.Message, TerminalPrefix)); text != "" {
		lines = append(lines, text)
	}

	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		f.AddTo(enc)
	}
	if v, ok := enc.Fields[outputField]; ok {
		lines = append(lines, fmt.Sprint(v))
		delete(enc.Fields, outputField)
	}
	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %v", k, enc.Fields[k]))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.out, strings.Join(lines, "\n"))
	return err
}

func isPrompt(entry zapcore.Entry) bool {
	return strings.HasPrefix(entry.Message, TerminalPrefix)
}
