// cmd/config/config.go

package config

import (
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/saument1986/Homelab-infrastructure/pkg/config"
	notify "github.com/saument1986/Homelab-infrastructure/pkg/notify_cli"
	"github.com/saument1986/Homelab-infrastructure/pkg/notify_err"
	"github.com/saument1986/Homelab-infrastructure/pkg/notify_io"
)

// NewConfigCmd returns the "config" command group. current yields the
// configuration the root command resolved before this command runs.
func NewConfigCmd(runID notify.RunIDFunc, current func() *config.Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect wazuh-notify configuration",
		Long: `Inspect the configuration wazuh-notify would use, after merging flags,
environment variables, the config file and defaults.

Examples:
  # Show effective settings
  wazuh-notify config show

  # Show what a flag would change
  wazuh-notify config show --min-level 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML (webhook URL redacted)",
		Args:  cobra.NoArgs,
		RunE: notify.Wrap(runID, func(rc *notify_io.RuntimeContext, cmd *cobra.Command, args []string) error {
			cfg := current()
			if cfg == nil {
				return notify_err.NewInternalError("configuration was not loaded", nil)
			}
			otelzap.Ctx(rc.Ctx).Debug("Showing effective configuration",
				zap.String("config_file", cfg.Sources.ConfigFile))
			return notify_io.WriteYAML(rc.Ctx, cmd.OutOrStdout(), cfg.Redacted())
		}),
	}

	configCmd.AddCommand(showCmd)
	return configCmd
}
