// pkg/config/load.go

package config

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/saument1986/Homelab-infrastructure/pkg/cli"
	"github.com/saument1986/Homelab-infrastructure/pkg/notify_err"
	"github.com/saument1986/Homelab-infrastructure/pkg/vault"
	"github.com/saument1986/Homelab-infrastructure/pkg/xdg"
)

// SecretLookup resolves the webhook URL from a secret store.
type SecretLookup func(ctx context.Context, addr, path, field string) (string, error)

// Loader turns a viper instance into a validated Config.
type Loader struct {
	V *viper.Viper
	// SearchPaths are tried in order when no --config is given.
	SearchPaths []string
	// Lookup defaults to vault.Lookup.
	Lookup SecretLookup
}

// NewViper returns a viper instance with defaults and environment bindings.
func NewViper() *viper.Viper {
	v := viper.New()

	d := Default()
	v.SetDefault(KeyMinLevel, d.MinLevel)
	v.SetDefault(KeyTimeout, d.Timeout)
	v.SetDefault(KeyVaultField, d.VaultField)

	cli.SetViperEnvPrefix(v, EnvPrefix)
	// The bare name comes last so the prefixed variable wins when both are set.
	_ = v.BindEnv(KeyWebhookURL, EnvPrefix+"_WEBHOOK_URL", WebhookEnv)
	_ = v.BindEnv(KeyVaultAddr, EnvPrefix+"_VAULT_ADDR", "VAULT_ADDR")
	return v
}

// DefaultSearchPaths lists config files checked when --config is absent.
func DefaultSearchPaths() []string {
	paths := []string{WazuhConfigPath}
	if p, err := xdg.ConfigPath(AppName, ConfigFileName); err == nil {
		paths = append(paths, p)
	}
	return paths
}

// NewLoader wraps v with the default search paths and Vault lookup.
func NewLoader(v *viper.Viper) *Loader {
	return &Loader{V: v, SearchPaths: DefaultSearchPaths(), Lookup: vault.Lookup}
}

// Load resolves the effective configuration.
func (l *Loader) Load(ctx context.Context) (*Config, error) {
	log := otelzap.Ctx(ctx)
	v := l.V

	// ASSESS: optional inputs
	envFile, err := loadEnvFile(v.GetString(KeyEnvFile))
	if err != nil {
		return nil, err
	}
	configFile, err := l.readConfigFile()
	if err != nil {
		return nil, err
	}

	// INTERVENE: build and resolve secrets
	cfg, err := fromViper(v)
	if err != nil {
		return nil, err
	}
	cfg.Sources.EnvFile = envFile
	cfg.Sources.ConfigFile = configFile

	if cfg.WebhookURL != "" {
		cfg.Sources.WebhookVia = "settings"
	} else if cfg.VaultPath != "" {
		lookup := l.Lookup
		if lookup == nil {
			lookup = vault.Lookup
		}
		url, err := lookup(ctx, cfg.VaultAddr, cfg.VaultPath, cfg.VaultField)
		if err != nil {
			return nil, notify_err.NewConfigError("failed to read webhook URL from Vault", err,
				"Check VAULT_ADDR and VAULT_TOKEN",
				"Confirm the secret at --vault-path has a '"+cfg.VaultField+"' field",
			)
		}
		cfg.WebhookURL = url
		cfg.Sources.WebhookVia = "vault"
	}

	// EVALUATE
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Debug("Configuration loaded",
		zap.String("config_file", configFile),
		zap.String("env_file", envFile),
		zap.String("webhook_via", cfg.Sources.WebhookVia),
		zap.Int("min_level", cfg.MinLevel),
		zap.Duration("timeout", cfg.Timeout),
		zap.Bool("dry_run", cfg.DryRun),
		zap.Bool("test", cfg.Test))
	return cfg, nil
}

// loadEnvFile loads path, or .env when present, without overriding the
// existing environment. An explicit path that cannot be read is an error.
func loadEnvFile(path string) (string, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
		if _, err := os.Stat(path); err != nil {
			return "", nil
		}
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit {
			return "", nil
		}
		return "", notify_err.NewConfigError("failed to load env file "+path, err)
	}
	return path, nil
}

func (l *Loader) readConfigFile() (string, error) {
	v := l.V
	if explicit := v.GetString(KeyConfig); explicit != "" {
		v.SetConfigFile(explicit)
		if err := v.ReadInConfig(); err != nil {
			return "", notify_err.NewConfigError("failed to read config file "+explicit, err)
		}
		return explicit, nil
	}

	for _, path := range l.SearchPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return "", notify_err.NewConfigError("failed to read config file "+path, err)
		}
		return path, nil
	}
	return "", nil
}

func fromViper(v *viper.Viper) (*Config, error) {
	timeout, err := durationSetting(v.Get(KeyTimeout))
	if err != nil {
		return nil, notify_err.NewConfigError("invalid timeout", err,
			"Use a Go duration such as 10s or a whole number of seconds")
	}

	return &Config{
		WebhookURL:    v.GetString(KeyWebhookURL),
		MinLevel:      v.GetInt(KeyMinLevel),
		Test:          v.GetBool(KeyTest),
		Debug:         v.GetBool(KeyDebug),
		DryRun:        v.GetBool(KeyDryRun),
		LogFile:       v.GetString(KeyLogFile),
		Timeout:       timeout,
		CAFile:        v.GetString(KeyCAFile),
		Username:      v.GetString(KeyUsername),
		Channel:       v.GetString(KeyChannel),
		IconEmoji:     v.GetString(KeyIconEmoji),
		SkipGroups:    stringList(v.Get(KeySkipGroups)),
		VaultAddr:     v.GetString(KeyVaultAddr),
		VaultPath:     v.GetString(KeyVaultPath),
		VaultField:    v.GetString(KeyVaultField),
		Telemetry:     v.GetBool(KeyTelemetry),
		TelemetryFile: v.GetString(KeyTelemetryFile),
	}, nil
}

// stringList accepts YAML lists, repeated flags and comma-separated env values.
func stringList(raw any) []string {
	var items []string
	switch val := raw.(type) {
	case nil:
		return nil
	case string:
		items = strings.Split(val, ",")
	default:
		items = cast.ToStringSlice(val)
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// durationSetting accepts Go durations ("15s") and bare numbers as seconds.
func durationSetting(raw any) (time.Duration, error) {
	switch val := raw.(type) {
	case nil:
		return 0, errors.New("timeout not set")
	case time.Duration:
		return val, nil
	case int, int32, int64, uint, uint32, uint64:
		return time.Duration(cast.ToInt64(val)) * time.Second, nil
	case float32, float64:
		return time.Duration(cast.ToFloat64(val) * float64(time.Second)), nil
	case string:
		if secs, err := cast.ToFloat64E(val); err == nil {
			return time.Duration(secs * float64(time.Second)), nil
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			return 0, cerr.Wrapf(err, "timeout %q", val)
		}
		return d, nil
	default:
		return cast.ToDurationE(val)
	}
}
