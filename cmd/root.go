/* cmd/root.go */

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/term"

	configcmd "github.com/saument1986/Homelab-infrastructure/cmd/config"
	"github.com/saument1986/Homelab-infrastructure/pkg/cli"
	"github.com/saument1986/Homelab-infrastructure/pkg/config"
	"github.com/saument1986/Homelab-infrastructure/pkg/dispatch"
	"github.com/saument1986/Homelab-infrastructure/pkg/logger"
	notify "github.com/saument1986/Homelab-infrastructure/pkg/notify_cli"
	"github.com/saument1986/Homelab-infrastructure/pkg/notify_err"
	"github.com/saument1986/Homelab-infrastructure/pkg/notify_io"
	"github.com/saument1986/Homelab-infrastructure/pkg/telemetry"
)

// App holds the state of one invocation. Tests build their own with
// in-memory streams.
type App struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// NewLoader defaults to config.NewLoader.
	NewLoader func(v *viper.Viper) *config.Loader

	v        *viper.Viper
	cfg      *config.Config
	runID    string
	shutdown telemetry.ShutdownFunc
}

// NewApp returns an App wired to the process streams.
func NewApp() *App {
	return &App{
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		NewLoader: config.NewLoader,
	}
}

// RunID is shared by the logger and every command span.
func (a *App) RunID() string {
	if a.runID == "" {
		a.runID = notify_io.NewRunID()
	}
	return a.runID
}

// Config returns the configuration resolved for this invocation.
func (a *App) Config() *config.Config {
	return a.cfg
}

// NewRootCmd builds the wazuh-notify command tree.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "wazuh-notify [alert-file [api-key [hook-url]]]",
		Short: "Forward one Wazuh alert to a Slack incoming webhook",
		Long: `wazuh-notify reads a single Wazuh alert (JSON) from stdin, or from the
alert file passed by the Wazuh integrator, decides whether it is worth a
notification, and posts a formatted Slack message to an incoming webhook.

Alerts below --min-level, or carrying a syscheck/rootcheck group, are skipped
and the process still exits 0. Any configuration, input or delivery failure
exits 1 so the caller can decide whether to retry.

Examples:
  # Wazuh integratord: <integration><name>custom-wazuh-notify</name>...
  wazuh-notify /tmp/alert.json "" https://hooks.slack.com/services/...

  # Pipe an alert
  cat alert.json | SLACK_WEBHOOK_URL=https://hooks.slack.com/services/... wazuh-notify

  # Check the webhook
  wazuh-notify --test

  # Show the payload without sending it
  wazuh-notify --dry-run < alert.json`,
		Args:          cobra.MaximumNArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd, args)
		},
		RunE: notify.Wrap(app.RunID, app.runNotify),
	}

	cli.AddStringFlag(root, "webhook-url", "", "", "Slack incoming webhook URL (env: SLACK_WEBHOOK_URL)")
	cli.AddIntFlag(root, "min-level", "", config.Default().MinLevel, "Minimum Wazuh rule level to notify on; above 16 nothing is sent")
	cli.AddBoolFlag(root, "test", "", false, "Send a test message instead of reading an alert")
	cli.AddBoolFlag(root, "debug", "", false, "Enable debug logging")
	cli.AddBoolFlag(root, "dry-run", "", false, "Print the Slack payload to stdout instead of sending it")
	cli.AddStringFlag(root, "log-file", "", "", "Log file path (default: first writable of "+logger.WazuhLogPath+", XDG state dir, ./, /tmp)")
	cli.AddDurationFlag(root, "timeout", config.Default().Timeout, "Webhook request timeout")
	cli.AddStringFlag(root, "ca-file", "", "", "Extra PEM CA bundle for self-hosted webhook endpoints")
	cli.AddStringFlag(root, "username", "", "", "Override the webhook's display name")
	cli.AddStringFlag(root, "channel", "", "", "Override the webhook's channel")
	cli.AddStringFlag(root, "icon-emoji", "", "", "Override the webhook's icon, e.g. :shield:")
	cli.AddStringSliceFlag(root, "skip-group", "", nil, "Additional rule group to never notify on (repeatable)")
	cli.AddStringFlag(root, "vault-addr", "", "", "Vault address for the webhook secret (env: VAULT_ADDR)")
	cli.AddStringFlag(root, "vault-path", "", "", "KV v2 path holding the webhook URL, e.g. secret/wazuh/slack")
	cli.AddStringFlag(root, "vault-field", "", config.Default().VaultField, "Field of the Vault secret holding the webhook URL")
	cli.AddBoolFlag(root, "telemetry", "", false, "Record trace spans as JSON lines")
	cli.AddStringFlag(root, "telemetry-file", "", "", "Span output file (default: XDG state dir)")
	cli.AddStringFlag(root, "config", "c", "", "Config file (default: "+config.WazuhConfigPath+" or XDG config dir)")
	cli.AddStringFlag(root, "env-file", "", "", "dotenv file to load (default: ./.env when present)")

	root.AddCommand(configcmd.NewConfigCmd(app.RunID, app.Config))
	return root
}

// setup resolves configuration, then installs logging and tracing.
func (a *App) setup(cmd *cobra.Command, args []string) error {
	envLevel := os.Getenv("LOG_LEVEL")
	debugFlag, _ := cmd.Flags().GetBool("debug")
	logger.SetLogger(logger.NewFallbackLogger(a.Stderr, logger.ResolveLevel(debugFlag, envLevel)), nil)

	a.v = config.NewViper()
	if err := cli.BindFlagsToViperAs(cmd, a.v, config.FlagKeys); err != nil {
		return notify_err.NewInternalError("failed to bind flags", err)
	}

	// integratord passes <alert-file> <api-key> <hook-url>; an explicit
	// --webhook-url still wins over the positional hook.
	if cmd == cmd.Root() && len(args) >= 3 && args[2] != "" && !cmd.Flags().Changed("webhook-url") {
		a.v.Set(config.KeyWebhookURL, args[2])
	}

	newLoader := a.NewLoader
	if newLoader == nil {
		newLoader = config.NewLoader
	}
	cfg, err := newLoader(a.v).Load(cmd.Context())
	if err != nil {
		return err
	}
	a.cfg = cfg

	res := logger.Initialize(logger.Options{
		Level:    logger.ResolveLevel(cfg.Debug, envLevel),
		LogFile:  cfg.LogFile,
		Console:  a.Stderr,
		Terminal: a.Stdout,
		Colour:   isTerminal(a.Stderr),
		Fields:   []zap.Field{zap.String("run_id", a.RunID())},
	})

	shutdown, err := telemetry.Init(config.AppName, telemetry.Options{
		Enabled: cfg.Telemetry,
		Path:    cfg.TelemetryFile,
	})
	if err != nil {
		res.Logger.Warn("Telemetry disabled", zap.Error(err))
		shutdown, _ = telemetry.Init(config.AppName, telemetry.Options{})
	}
	a.shutdown = shutdown
	return nil
}

func (a *App) runNotify(rc *notify_io.RuntimeContext, cmd *cobra.Command, args []string) error {
	cfg := a.cfg
	rc.Attributes["min_level"] = fmt.Sprint(cfg.MinLevel)
	rc.Attributes["mode"] = mode(cfg)

	// ASSESS
	if !cfg.DryRun {
		if err := cfg.RequireWebhook(); err != nil {
			return err
		}
	}
	runner, err := dispatch.New(cfg)
	if err != nil {
		return err
	}
	runner.Stdout = a.Stdout
	rc.Log.Debug("Admission filter ready",
		zap.Int("min_level", runner.Filter.MinLevel()),
		zap.Strings("denied_groups", runner.Filter.Denylist()))

	if cfg.Test {
		_, err := runner.Probe(rc.Ctx)
		return err
	}

	// INTERVENE
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	in, source, err := dispatch.OpenInput(path, a.Stdin)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()
	rc.Log.Debug("Reading alert", zap.String("source", source))

	// EVALUATE
	report, err := runner.Run(rc.Ctx, in)
	rc.Attributes["outcome"] = string(report.Outcome)
	return err
}

// Finish reports err, flushes telemetry and logs, and returns the exit code.
func (a *App) Finish(err error) int {
	code := notify_err.GetExitCode(err)
	if err != nil && code != 0 {
		zap.L().Debug("Exiting with error", zap.Int("exit_code", code))
		detail := notify_err.SanitizeErrorMessage(err)
		if classified, ok := asClassified(err); ok {
			detail = classified.Detail()
		}
		_, _ = fmt.Fprintln(a.Stderr, "Error:", detail)
		if notify_err.IsCategory(err, notify_err.CategoryDelivery) {
			zap.L().Warn("Alert was not delivered and will not be retried")
		}
	}

	if a.shutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if serr := a.shutdown(ctx); serr != nil {
			zap.L().Warn("Failed to flush telemetry", zap.Error(serr))
		}
		cancel()
	}
	logger.Sync()
	return code
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	app := NewApp()
	root := NewRootCmd(app)
	return app.Finish(root.ExecuteContext(context.Background()))
}

func mode(cfg *config.Config) string {
	switch {
	case cfg.Test && cfg.DryRun:
		return "test-dry-run"
	case cfg.Test:
		return "test"
	case cfg.DryRun:
		return "dry-run"
	default:
		return "alert"
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
