// pkg/logger/writer.go

package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap/zapcore"
)

// EnsureLogPermissions creates the log directory and file, owner-only.
func EnsureLogPermissions(logFilePath string) error {
	if err := os.MkdirAll(filepath.Dir(logFilePath), 0700); err != nil {
		return err
	}

	file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}

	return os.Chmod(logFilePath, 0600)
}

// GetLogFileWriter opens path for appending.
func GetLogFileWriter(path string) (zapcore.WriteSyncer, func() error, error) {
	if err := EnsureLogPermissions(path); err != nil {
		return nil, nil, fmt.Errorf("log permission error: %w", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return zapcore.AddSync(file), file.Close, nil
}

// OpenFirstWritable returns a writer for the first candidate path that can be opened.
func OpenFirstWritable(paths []string) (string, zapcore.WriteSyncer, func() error, error) {
	var lastErr error
	for _, path := range paths {
		w, closer, err := GetLogFileWriter(path)
		if err == nil {
			return path, w, closer, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no candidate paths")
	}
	return "", nil, nil, fmt.Errorf("no writable log path found: %w", lastErr)
}
