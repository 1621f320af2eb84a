// pkg/config/config.go

package config

import (
	"time"

	"github.com/saument1986/Homelab-infrastructure/pkg/admission"
	"github.com/saument1986/Homelab-infrastructure/pkg/httpclient"
	"github.com/saument1986/Homelab-infrastructure/pkg/vault"
)

const (
	AppName   = "wazuh-notify"
	EnvPrefix = "WAZUH_NOTIFY"

	// WebhookEnv is the variable Wazuh integrations conventionally export.
	WebhookEnv = "SLACK_WEBHOOK_URL"

	// WazuhConfigPath is checked before the per-user XDG config file.
	WazuhConfigPath = "/var/ossec/etc/wazuh-notify.yaml"
	ConfigFileName  = "config.yaml"
	DefaultEnvFile  = ".env"
)

// Keys shared by flags, environment variables and the config file.
const (
	KeyWebhookURL    = "webhook_url"
	KeyMinLevel      = "min_level"
	KeyTest          = "test"
	KeyDebug         = "debug"
	KeyDryRun        = "dry_run"
	KeyLogFile       = "log_file"
	KeyTimeout       = "timeout"
	KeyCAFile        = "ca_file"
	KeyUsername      = "username"
	KeyChannel       = "channel"
	KeyIconEmoji     = "icon_emoji"
	KeySkipGroups    = "skip_groups"
	KeyVaultAddr     = "vault_addr"
	KeyVaultPath     = "vault_path"
	KeyVaultField    = "vault_field"
	KeyTelemetry     = "telemetry"
	KeyTelemetryFile = "telemetry_file"
	KeyConfig        = "config"
	KeyEnvFile       = "env_file"
)

// FlagKeys maps flags whose viper key is not the flag name with dashes
// turned into underscores.
var FlagKeys = map[string]string{
	"skip-group": KeySkipGroups,
}

// Config is the effective configuration for one invocation.
type Config struct {
	WebhookURL string        `yaml:"webhook_url" validate:"omitempty,url,startswith=http"`
	MinLevel   int           `yaml:"min_level"`
	Test       bool          `yaml:"test"`
	Debug      bool          `yaml:"debug"`
	DryRun     bool          `yaml:"dry_run"`
	LogFile    string        `yaml:"log_file,omitempty"`
	Timeout    time.Duration `yaml:"timeout" validate:"gt=0"`
	// CAFile is an extra PEM bundle for self-hosted webhook endpoints.
	CAFile string `yaml:"ca_file,omitempty" validate:"omitempty,file"`

	Username   string   `yaml:"username,omitempty"`
	Channel    string   `yaml:"channel,omitempty"`
	IconEmoji  string   `yaml:"icon_emoji,omitempty"`
	SkipGroups []string `yaml:"skip_groups,omitempty" validate:"dive,required"`

	VaultAddr  string `yaml:"vault_addr,omitempty" validate:"omitempty,url"`
	VaultPath  string `yaml:"vault_path,omitempty"`
	VaultField string `yaml:"vault_field,omitempty"`

	Telemetry     bool   `yaml:"telemetry"`
	TelemetryFile string `yaml:"telemetry_file,omitempty"`

	// Sources records where values came from, for config show and debug logs.
	Sources Sources `yaml:"sources"`
}

// Sources describes which optional inputs contributed to a Config.
type Sources struct {
	ConfigFile string `yaml:"config_file,omitempty"`
	EnvFile    string `yaml:"env_file,omitempty"`
	WebhookVia string `yaml:"webhook_via,omitempty"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		MinLevel:   admission.DefaultMinLevel,
		Timeout:    httpclient.DefaultTimeout,
		VaultField: vault.DefaultField,
	}
}
