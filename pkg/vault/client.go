// pkg/vault/client.go

package vault

import (
	"context"
	"os"
	"strings"

	cerr "github.com/cockroachdb/errors"
	"github.com/hashicorp/vault/api"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const (
	// DefaultField is the key inside the KV secret that holds the webhook URL.
	DefaultField = "webhook_url"
	// DefaultAddr matches the Vault CLI default when VAULT_ADDR is unset.
	DefaultAddr = "http://127.0.0.1:8200"
)

// ErrFieldMissing is returned when the secret exists but lacks the field.
var ErrFieldMissing = cerr.New("field not present in secret")

// NewClient creates a Vault API client from VAULT_* environment variables.
// addr, when non-empty, overrides VAULT_ADDR. Without VAULT_TOKEN the client
// logs in with AppRole when VAULT_ROLE_ID is set.
func NewClient(ctx context.Context, addr string) (*api.Client, error) {
	log := otelzap.Ctx(ctx)

	cfg := api.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		log.Warn("Unable to read Vault env vars", zap.Error(err))
	}
	switch {
	case addr != "":
		cfg.Address = addr
	case os.Getenv(api.EnvVaultAddress) == "":
		cfg.Address = DefaultAddr
		log.Debug("VAULT_ADDR not set, falling back to default", zap.String("addr", cfg.Address))
	}

	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, cerr.Wrap(err, "vault client creation failed")
	}

	if token := os.Getenv(api.EnvVaultToken); token != "" {
		client.SetToken(token)
	} else {
		creds, ok, err := AppRoleFromEnv()
		if err != nil {
			return nil, err
		}
		if ok {
			if err := LoginAppRole(ctx, client, creds); err != nil {
				return nil, err
			}
		}
	}

	log.Debug("Vault client created", zap.String("addr", cfg.Address))
	return client, nil
}

// SplitPath turns "secret/wazuh/slack" into mount "secret" and path "wazuh/slack".
// A "data/" segment after the mount, as used by the raw HTTP API, is dropped.
func SplitPath(full string) (mount, path string, err error) {
	full = strings.Trim(strings.TrimSpace(full), "/")
	mount, path, ok := strings.Cut(full, "/")
	if !ok || mount == "" || path == "" {
		return "", "", cerr.Newf("vault path %q must be <mount>/<secret path>", full)
	}
	path = strings.Trim(strings.TrimPrefix(path+"/", "data/"), "/")
	if path == "" {
		return "", "", cerr.Newf("vault path %q has no secret path", full)
	}
	return mount, path, nil
}
