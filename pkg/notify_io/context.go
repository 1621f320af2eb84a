// pkg/notify_io/context.go

package notify_io

import (
	"context"
	"os"
	"runtime"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/saument1986/Homelab-infrastructure/pkg/notify_err"
	"github.com/saument1986/Homelab-infrastructure/pkg/telemetry"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

type RuntimeContext struct {
	Ctx        context.Context
	Log        *zap.Logger
	Timestamp  time.Time
	Span       trace.Span
	Command    string
	RunID      string
	Attributes map[string]string
}

// NewRunID returns a short id that ties the log lines of one invocation together.
func NewRunID() string {
	return uuid.New().String()[:8]
}

// NewContext starts the command span and scopes the global logger to it.
func NewContext(parent context.Context, cmdName, runID string) *RuntimeContext {
	if parent == nil {
		parent = context.Background()
	}
	if runID == "" {
		runID = NewRunID()
	}

	ctx, span := telemetry.Start(parent, cmdName, attribute.String("run_id", runID))
	log := zap.L().With(zap.String("command", cmdName))
	if sc := span.SpanContext(); sc.IsValid() {
		log = log.With(zap.String("trace_id", sc.TraceID().String()))
	}

	return &RuntimeContext{
		Ctx:        ctx,
		Log:        log,
		Timestamp:  time.Now(),
		Span:       span,
		Command:    cmdName,
		RunID:      runID,
		Attributes: make(map[string]string),
	}
}

// HandlePanic recovers panics, logs them, and converts to an error.
func (rc *RuntimeContext) HandlePanic(errPtr *error) {
	if r := recover(); r != nil {
		*errPtr = notify_err.NewInternalError("panic recovered", cerr.AssertionFailedf("panic: %v", r))
		rc.Log.Error("Panic recovered", zap.Any("panic", r), zap.Stack("stack"))
	}
}

// End logs the outcome, annotates the command span and ends it.
func (rc *RuntimeContext) End(errPtr *error) {
	defer rc.Span.End()

	var err error
	if errPtr != nil {
		err = *errPtr
	}
	duration := time.Since(rc.Timestamp)

	switch {
	case err == nil:
		rc.Log.Debug("Command completed", zap.Duration("duration", duration))
	case notify_err.IsExpectedUserError(err):
		rc.Log.Info("Command finished", zap.Duration("duration", duration), zap.String("reason", err.Error()))
	default:
		rc.Log.Error("Command failed", zap.Duration("duration", duration), zap.Error(err))
	}

	attrs := []attribute.KeyValue{
		attribute.Bool("success", err == nil || notify_err.IsExpectedUserError(err)),
		attribute.Int64("duration_ms", duration.Milliseconds()),
		attribute.String("os", runtime.GOOS),
		attribute.String("version", Version),
		attribute.String("error_type", notify_err.SafeErrorSummary(err)),
		attribute.String("args", telemetry.TruncateArgs(redactArgs(os.Args[1:]))),
	}
	for k, v := range rc.Attributes {
		attrs = append(attrs, attribute.String(k, v))
	}
	rc.Span.SetAttributes(attrs...)
	if err != nil && !notify_err.IsExpectedUserError(err) {
		rc.Span.SetStatus(codes.Error, notify_err.SafeErrorSummary(err))
	}
}

func redactArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = notify_err.RedactURLs(a)
	}
	return out
}
