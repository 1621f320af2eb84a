// pkg/telemetry/telemetry.go
package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	cerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/saument1986/Homelab-infrastructure/pkg/xdg"
)

const FileName = "telemetry.jsonl"

var tracer trace.Tracer = noop.NewTracerProvider().Tracer("")

// Options selects where spans go. Spans are only recorded when Enabled.
type Options struct {
	Enabled bool
	// Path of the JSONL span file. Defaults to the XDG state directory.
	Path string
}

// ShutdownFunc flushes pending spans and closes the span file.
type ShutdownFunc func(context.Context) error

// Init configures OpenTelemetry; call this early, before the first span.
func Init(service string, opts Options) (ShutdownFunc, error) {
	if !opts.Enabled {
		tp := noop.NewTracerProvider()
		otel.SetTracerProvider(tp)
		tracer = tp.Tracer(service)
		return func(context.Context) error { return nil }, nil
	}

	path := opts.Path
	if path == "" {
		path = DefaultPath(service)
	}
	if err := xdg.EnsureDir(path); err != nil {
		return nil, cerr.Wrap(err, "failed to create telemetry directory")
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, cerr.Wrap(err, "failed to open telemetry file")
	}

	exp, err := stdouttrace.New(
		stdouttrace.WithWriter(file),
		stdouttrace.WithoutTimestamps(),
	)
	if err != nil {
		_ = file.Close()
		return nil, cerr.Wrap(err, "failed to create file exporter")
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(
			sdkresource.NewWithAttributes(
				semconv.SchemaURL,
				attribute.String("service.name", service),
				attribute.String("host.name", hostname()),
			),
		),
	)

	otel.SetTracerProvider(tp)
	tracer = tp.Tracer(service)

	return func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
		return err
	}, nil
}

// Start a telemetry span with optional attributes.
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func hostname() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "unknown"
}

// TruncateArgs joins args for a span attribute, capped at 256 bytes.
// Positional arguments can carry the webhook URL, so callers redact first.
func TruncateArgs(args []string) string {
	full := strings.Join(args, " ")
	if len(full) > 256 {
		return full[:256] + "..."
	}
	return full
}

// DefaultPath is where spans land when Options.Path is empty.
func DefaultPath(service string) string {
	p, err := xdg.StatePath(service, FileName)
	if err != nil {
		return filepath.Join(os.TempDir(), service, FileName)
	}
	return p
}
