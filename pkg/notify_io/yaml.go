/* pkg/notify_io/yaml.go */

package notify_io

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// WriteYAML renders in as YAML with two-space indentation to w.
func WriteYAML(ctx context.Context, w io.Writer, in interface{}) error {
	logger := otelzap.Ctx(ctx)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(in); err != nil {
		logger.Error("Failed to marshal YAML", zap.Error(err))
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Error("Failed to write YAML", zap.Error(err))
		return fmt.Errorf("failed to write YAML: %w", err)
	}

	logger.Debug("YAML written", zap.Int("size", buf.Len()))
	return nil
}
