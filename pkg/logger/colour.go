// pkg/logger/colour.go

package logger

import (
	"go.uber.org/zap/zapcore"
)

const ansiReset = "\033[0m"

var levelColours = map[zapcore.Level]string{
	zapcore.DebugLevel:  "\033[90m",
	zapcore.InfoLevel:   "\033[32m",
	zapcore.WarnLevel:   "\033[33m",
	zapcore.ErrorLevel:  "\033[31m",
	zapcore.DPanicLevel: "\033[1;31m",
	zapcore.PanicLevel:  "\033[1;31m",
	zapcore.FatalLevel:  "\033[1;31m",
}

// ColouredLevel wraps the level name in its ANSI colour.
func ColouredLevel(level zapcore.Level) string {
	code, ok := levelColours[level]
	if !ok {
		return level.CapitalString()
	}
	return code + level.CapitalString() + ansiReset
}

func colouredLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(ColouredLevel(level))
}
