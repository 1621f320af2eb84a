/* pkg/logger/config.go */

package logger

import (
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls how the process logger is assembled.
type Options struct {
	// Level applies to both the console and the file core.
	Level zapcore.Level
	// LogFile overrides the first candidate log path.
	LogFile string
	// Console receives human-readable output. Defaults to stderr.
	Console io.Writer
	// Terminal receives "terminal prompt:" messages. Defaults to stdout.
	Terminal io.Writer
	// Colour enables ANSI level colours on the console.
	Colour bool
	// DisableFile skips the file core entirely.
	DisableFile bool
	// Fields are attached to every entry, e.g. the run id.
	Fields []zap.Field
}

// ParseLogLevel maps LOG_LEVEL values onto zap levels. Unknown values are Info.
func ParseLogLevel(level string) zapcore.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE", "DEBUG":
		return zapcore.DebugLevel
	case "WARN", "WARNING":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	case "FATAL":
		return zapcore.FatalLevel
	case "DPANIC":
		return zapcore.DPanicLevel
	default:
		return zapcore.InfoLevel
	}
}

// ResolveLevel lets --debug win over LOG_LEVEL.
func ResolveLevel(debug bool, envLevel string) zapcore.Level {
	if debug {
		return zapcore.DebugLevel
	}
	return ParseLogLevel(envLevel)
}

func DefaultConsoleEncoderConfig(colour bool) zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "T"
	cfg.LevelKey = "L"
	cfg.NameKey = "N"
	cfg.CallerKey = "C"
	cfg.MessageKey = "M"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if colour {
		cfg.EncodeLevel = colouredLevelEncoder
	}
	return cfg
}

func fileEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}
