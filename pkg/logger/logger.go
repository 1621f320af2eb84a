package logger

import (
	"fmt"
	"os"
	"sync"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.Mutex
	log     = zap.NewNop()
	closeFn func() error
)

// Result describes the logger that was installed.
type Result struct {
	Logger  *zap.Logger
	LogPath string
	// FileErr is set when no log file could be opened; console logging still works.
	FileErr error
}

// New builds a logger that tees a console core and an append-only JSON file core.
func New(opts Options) (Result, func() error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	terminal := opts.Terminal
	if terminal == nil {
		terminal = os.Stdout
	}

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(DefaultConsoleEncoderConfig(opts.Colour)),
		zapcore.Lock(zapcore.AddSync(console)),
		opts.Level,
	)
	cores := []zapcore.Core{newTerminalConsoleCore(consoleCore, terminal)}

	res := Result{}
	closer := func() error { return nil }

	if !opts.DisableFile {
		path, writer, fileCloser, err := OpenFirstWritable(CandidateLogPaths(opts.LogFile))
		if err != nil {
			res.FileErr = err
		} else {
			res.LogPath = path
			closer = fileCloser
			cores = append(cores, zapcore.NewCore(
				zapcore.NewJSONEncoder(fileEncoderConfig()),
				zapcore.Lock(writer),
				opts.Level,
			))
		}
	}

	res.Logger = zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(opts.Fields...),
	)
	return res, closer
}

// Initialize builds the process logger and installs it as the zap and otelzap globals.
func Initialize(opts Options) Result {
	res, closer := New(opts)

	SetLogger(res.Logger, closer)

	if res.FileErr != nil {
		res.Logger.Warn("No writable log path found, logging to console only", zap.Error(res.FileErr))
	} else {
		res.Logger.Debug("Logger initialized",
			zap.String("log_level", opts.Level.String()),
			zap.String("log_path", res.LogPath))
	}
	return res
}

// SetLogger replaces the global logger. closer, if non-nil, runs on Sync.
func SetLogger(l *zap.Logger, closer func() error) {
	mu.Lock()
	defer mu.Unlock()
	if closeFn != nil {
		_ = closeFn()
	}
	log = l
	closeFn = closer
	zap.ReplaceGlobals(l)
	otelzap.ReplaceGlobals(otelzap.New(l))
}

// L returns the global logger.
func L() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return log
}

// Sync flushes buffered entries and closes the log file. Call before exit.
func Sync() {
	mu.Lock()
	defer mu.Unlock()

	// stderr/stdout return EINVAL on some platforms; not worth reporting.
	_ = log.Sync()
	if closeFn != nil {
		if err := closeFn(); err != nil {
			fmt.Fprintln(os.Stderr, "failed to close log file:", err)
		}
		closeFn = nil
	}
}
