// pkg/vault/auth_approle.go
package vault

import (
	"context"
	"os"
	"strings"

	cerr "github.com/cockroachdb/errors"
	"github.com/hashicorp/vault/api"
	"github.com/hashicorp/vault/api/auth/approle"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// AppRole credentials come from the environment, or from files named by the
// *_FILE variants so the integration config never holds the secret itself.
const (
	EnvRoleID       = "VAULT_ROLE_ID"
	EnvRoleIDFile   = "VAULT_ROLE_ID_FILE"
	EnvSecretID     = "VAULT_SECRET_ID"
	EnvSecretIDFile = "VAULT_SECRET_ID_FILE"
	EnvAppRoleMount = "VAULT_APPROLE_MOUNT"

	DefaultAppRoleMount = "approle"
)

// AppRoleCreds identifies one AppRole login.
type AppRoleCreds struct {
	RoleID   string
	SecretID string
	Mount    string
}

// AppRoleFromEnv returns the configured AppRole credentials, if any.
func AppRoleFromEnv() (AppRoleCreds, bool, error) {
	roleID, err := envOrFile(EnvRoleID, EnvRoleIDFile)
	if err != nil {
		return AppRoleCreds{}, false, err
	}
	if roleID == "" {
		return AppRoleCreds{}, false, nil
	}
	secretID, err := envOrFile(EnvSecretID, EnvSecretIDFile)
	if err != nil {
		return AppRoleCreds{}, false, err
	}
	if secretID == "" {
		return AppRoleCreds{}, false, cerr.Newf("%s is set but neither %s nor %s is", EnvRoleID, EnvSecretID, EnvSecretIDFile)
	}

	mount := strings.Trim(os.Getenv(EnvAppRoleMount), "/")
	if mount == "" {
		mount = DefaultAppRoleMount
	}
	return AppRoleCreds{RoleID: roleID, SecretID: secretID, Mount: mount}, true, nil
}

// LoginAppRole exchanges creds for a token and installs it on client.
// A SecretID that is itself a response-wrapping token is unwrapped first.
func LoginAppRole(ctx context.Context, client *api.Client, creds AppRoleCreds) error {
	log := otelzap.Ctx(ctx)

	secretID := creds.SecretID
	if strings.HasPrefix(secretID, "s.") || strings.HasPrefix(secretID, "hvs.") {
		log.Debug("Unwrapping wrapped SecretID")
		wrapped, err := client.Logical().UnwrapWithContext(ctx, secretID)
		if err != nil {
			return cerr.Wrap(err, "failed to unwrap secret id")
		}
		if wrapped == nil || wrapped.Data == nil {
			return cerr.New("unwrapped secret id is empty")
		}
		sid, ok := wrapped.Data["secret_id"].(string)
		if !ok || sid == "" {
			return cerr.New("unwrapped secret id is malformed")
		}
		secretID = sid
	}

	auth, err := approle.NewAppRoleAuth(creds.RoleID, &approle.SecretID{FromString: secretID},
		approle.WithMountPath(creds.Mount))
	if err != nil {
		return cerr.Wrap(err, "create approle auth")
	}

	secret, err := client.Auth().Login(ctx, auth)
	if err != nil {
		return cerr.Wrap(err, "approle login failed")
	}
	if secret == nil || secret.Auth == nil {
		return cerr.New("no auth info returned from vault approle login")
	}

	log.Debug("Authenticated with Vault using AppRole",
		zap.String("mount", creds.Mount),
		zap.String("token_accessor", secret.Auth.Accessor))
	return nil
}

func envOrFile(name, fileName string) (string, error) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v, nil
	}
	path := os.Getenv(fileName)
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", cerr.Wrapf(err, "read %s", fileName)
	}
	return strings.TrimSpace(string(data)), nil
}
