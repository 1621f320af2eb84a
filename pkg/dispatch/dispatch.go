// pkg/dispatch/dispatch.go
//
// One invocation handles one alert: read, parse, admit, format, deliver.
// Only formatting failures are absorbed; every other failure is returned
// classified so the caller can turn it into an exit code. A skipped alert is
// returned as an expected error, which exits 0.

package dispatch

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/saument1986/Homelab-infrastructure/pkg/admission"
	"github.com/saument1986/Homelab-infrastructure/pkg/alerts"
	"github.com/saument1986/Homelab-infrastructure/pkg/config"
	"github.com/saument1986/Homelab-infrastructure/pkg/httpclient"
	"github.com/saument1986/Homelab-infrastructure/pkg/logger"
	"github.com/saument1986/Homelab-infrastructure/pkg/notify_err"
	"github.com/saument1986/Homelab-infrastructure/pkg/slack"
	"github.com/saument1986/Homelab-infrastructure/pkg/telemetry"
)

const (
	ProbeSucceeded = "✅ Test message sent successfully!"
	ProbeFailed    = "❌ Test message failed!"
)

// Sender delivers one message to one endpoint.
type Sender interface {
	Deliver(ctx context.Context, msg slack.Message, endpoint string) error
}

// Outcome is what happened to the alert.
type Outcome string

const (
	OutcomeDelivered Outcome = "delivered"
	OutcomeSkipped   Outcome = "skipped"
	OutcomePrinted   Outcome = "printed"
)

// Report summarises a run for logging and tests.
type Report struct {
	Outcome  Outcome
	Decision admission.Decision
	Tier     string
	Level    int
	Degraded bool
	Message  slack.Message
}

// Runner wires the pipeline stages together.
type Runner struct {
	Filter    admission.Filter
	Formatter *slack.Formatter
	Sender    Sender
	Endpoint  string
	DryRun    bool
	// Stdout receives the payload in dry-run mode.
	Stdout io.Writer
}

// New builds a Runner from the effective configuration.
func New(cfg *config.Config) (*Runner, error) {
	clientCfg := httpclient.DefaultConfig()
	clientCfg.Timeout = cfg.Timeout
	clientCfg.CAFile = cfg.CAFile
	client, err := httpclient.NewClient(clientCfg)
	if err != nil {
		return nil, notify_err.NewConfigError("invalid HTTP client settings", err)
	}
	webhook, err := slack.NewWebhook(client)
	if err != nil {
		return nil, notify_err.NewInternalError("failed to create webhook client", err)
	}

	f := slack.NewFormatter()
	f.Username = cfg.Username
	f.Channel = cfg.Channel
	f.IconEmoji = cfg.IconEmoji

	return &Runner{
		Filter:    admission.NewFilter(cfg.MinLevel, cfg.SkipGroups...),
		Formatter: f,
		Sender:    webhook,
		Endpoint:  cfg.WebhookURL,
		DryRun:    cfg.DryRun,
		Stdout:    os.Stdout,
	}, nil
}

// Run processes one alert document read from input.
func (r *Runner) Run(ctx context.Context, input io.Reader) (Report, error) {
	log := otelzap.Ctx(ctx)

	// ASSESS
	rec, err := r.parse(ctx, input)
	if err != nil {
		return Report{}, err
	}

	report := Report{}
	alert, decodeErr := rec.Decode()
	if decodeErr != nil {
		log.Warn("Alert has unexpected shape", zap.Error(decodeErr))
		level, ok := rec.Level()
		if !ok {
			// Without a level there is nothing to filter on.
			report.Decision = admission.Decision{Send: true, Reason: admission.ReasonAdmitted}
		} else {
			groups, _ := rec.Groups()
			report.Level = level
			report.Decision = r.admit(ctx, level, groups)
		}
	} else {
		report.Level = alert.Rule.Level
		log.Info("Processing alert",
			zap.Int("level", alert.Rule.Level),
			zap.String("rule_id", alert.Rule.ID),
			zap.String("description", alert.Rule.Description),
			zap.String("agent", alert.Agent.Name))
		report.Decision = r.admit(ctx, alert.Rule.Level, alert.Rule.Groups)
		if report.Decision.Send {
			report.Tier = r.Formatter.Severity.Classify(alert.Rule.Level).Name
		}
	}

	if !report.Decision.Send {
		report.Outcome = OutcomeSkipped
		log.Info("Alert not sent",
			zap.String("reason", report.Decision.String()),
			zap.Int("level", report.Level),
			zap.Int("min_level", r.Filter.MinLevel()))
		return report, notify_err.NewExpectedError(cerr.Newf("alert not sent: %s", report.Decision))
	}

	// INTERVENE
	_, span := telemetry.Start(ctx, "slack.format")
	result := r.Formatter.Format(rec)
	span.SetAttributes(attribute.Bool("degraded", result.Degraded))
	span.End()

	report.Message = result.Message
	report.Degraded = result.Degraded
	if result.Degraded {
		log.Error("Error formatting alert", zap.Error(result.Err))
	}

	// EVALUATE
	if err := r.send(ctx, result.Message); err != nil {
		return report, err
	}
	if r.DryRun {
		report.Outcome = OutcomePrinted
	} else {
		report.Outcome = OutcomeDelivered
	}
	return report, nil
}

// Probe sends the canned integration test message and prints a verdict.
func (r *Runner) Probe(ctx context.Context) (Report, error) {
	log := otelzap.Ctx(ctx)
	log.Info("Sending test message")

	msg := r.Formatter.Probe()
	report := Report{Message: msg, Decision: admission.Decision{Send: true, Reason: admission.ReasonAdmitted}}

	if err := r.send(ctx, msg); err != nil {
		log.Info(logger.TerminalPrefix + " " + ProbeFailed)
		return report, err
	}
	if r.DryRun {
		report.Outcome = OutcomePrinted
		return report, nil
	}

	log.Info(logger.TerminalPrefix + " " + ProbeSucceeded)
	report.Outcome = OutcomeDelivered
	return report, nil
}

func (r *Runner) admit(ctx context.Context, level int, groups []string) admission.Decision {
	_, span := telemetry.Start(ctx, "admission.evaluate", attribute.Int("rule.level", level))
	defer span.End()
	d := r.Filter.Check(level, groups)
	span.SetAttributes(attribute.String("decision", d.String()))
	return d
}

func (r *Runner) parse(ctx context.Context, input io.Reader) (*alerts.Record, error) {
	_, span := telemetry.Start(ctx, "alerts.parse")
	defer span.End()

	data, err := ReadInput(input)
	if err != nil {
		span.SetStatus(codes.Error, "read failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("input.bytes", len(data)))

	rec, err := alerts.Parse(data)
	if err != nil {
		span.SetStatus(codes.Error, "parse failed")
		otelzap.Ctx(ctx).Error("Invalid JSON data", zap.Error(err))
		return nil, notify_err.NewInputError("invalid alert JSON", notify_err.WrapInputError(err),
			"Pipe exactly one Wazuh alert JSON object on stdin",
			"or pass the alert file path as the first argument")
	}
	return rec, nil
}

func (r *Runner) send(ctx context.Context, msg slack.Message) error {
	if r.DryRun {
		payload, err := msg.JSON()
		if err != nil {
			return notify_err.NewInternalError("failed to encode message", err)
		}
		out := r.Stdout
		if out == nil {
			out = os.Stdout
		}
		if _, err := fmt.Fprintln(out, string(payload)); err != nil {
			return notify_err.NewInternalError("failed to write payload", err)
		}
		otelzap.Ctx(ctx).Info("Dry run, payload printed instead of sent")
		return nil
	}

	ctx, span := telemetry.Start(ctx, "slack.deliver")
	defer span.End()
	start := time.Now()

	if err := r.Sender.Deliver(ctx, msg, r.Endpoint); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, notify_err.SafeErrorSummary(err))
		return notify_err.NewDeliveryError("failed to send alert to Slack", err,
			"Check the webhook URL is current and the channel still exists",
			"Re-run with --test to verify the integration")
	}
	span.SetAttributes(attribute.Int64("duration_ms", time.Since(start).Milliseconds()))
	return nil
}
