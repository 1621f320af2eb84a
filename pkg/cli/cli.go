// pkg/cli/cli.go
//
// Flag helpers shared by the wazuh-notify commands. Flags are declared on
// cobra commands and bound into a viper instance so that flags, environment
// variables and the config file resolve through one lookup.
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// AddStringFlag adds a persistent string flag.
func AddStringFlag(cmd *cobra.Command, name, shorthand, def, help string) {
	cmd.PersistentFlags().StringP(name, shorthand, def, help)
}

// AddBoolFlag adds a persistent boolean flag.
func AddBoolFlag(cmd *cobra.Command, name, shorthand string, def bool, help string) {
	cmd.PersistentFlags().BoolP(name, shorthand, def, help)
}

// AddIntFlag adds a persistent int flag.
func AddIntFlag(cmd *cobra.Command, name, shorthand string, def int, help string) {
	cmd.PersistentFlags().IntP(name, shorthand, def, help)
}

// AddDurationFlag adds a persistent duration flag.
func AddDurationFlag(cmd *cobra.Command, name string, def time.Duration, help string) {
	cmd.PersistentFlags().Duration(name, def, help)
}

// AddStringSliceFlag adds a persistent string slice flag.
func AddStringSliceFlag(cmd *cobra.Command, name, shorthand string, def []string, help string) {
	cmd.PersistentFlags().StringSliceP(name, shorthand, def, help)
}

// KeyFor maps a flag name onto its viper key: "min-level" becomes "min_level".
func KeyFor(flagName string) string {
	return strings.ReplaceAll(flagName, "-", "_")
}

// BindFlagsToViperAs binds every flag visible on cmd, local and inherited, to v.
// keys overrides the viper key for individual flags; other flags use KeyFor.
func BindFlagsToViperAs(cmd *cobra.Command, v *viper.Viper, keys map[string]string) error {
	var result error
	bind := func(f *pflag.Flag) {
		key, ok := keys[f.Name]
		if !ok {
			key = KeyFor(f.Name)
		}
		if err := v.BindPFlag(key, f); err != nil {
			result = multierror.Append(result, fmt.Errorf("bind --%s: %w", f.Name, err))
		}
	}
	cmd.Flags().VisitAll(bind)
	cmd.InheritedFlags().VisitAll(bind)
	return result
}

// SetViperEnvPrefix lets v read PREFIX_KEY environment variables.
func SetViperEnvPrefix(v *viper.Viper, prefix string) {
	v.SetEnvPrefix(prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
}
