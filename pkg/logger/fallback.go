/* pkg/logger/fallback.go */

package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewFallbackLogger logs to the console only. Used when no log file can be
// opened and before configuration has been loaded.
func NewFallbackLogger(console io.Writer, level zapcore.Level) *zap.Logger {
	if console == nil {
		console = os.Stderr
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(DefaultConsoleEncoderConfig(false)),
		zapcore.Lock(zapcore.AddSync(console)),
		level,
	)
	return zap.New(newTerminalConsoleCore(core, os.Stdout), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}
