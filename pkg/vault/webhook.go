// pkg/vault/webhook.go

package vault

import (
	"context"
	"fmt"
	"strings"

	cerr "github.com/cockroachdb/errors"
	"github.com/hashicorp/vault/api"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("wazuh-notify/pkg/vault")

// ReadWebhookURL reads one string field from a KV v2 secret.
func ReadWebhookURL(ctx context.Context, client *api.Client, fullPath, field string) (string, error) {
	ctx, span := tracer.Start(ctx, "vault.ReadWebhookURL")
	defer span.End()
	log := otelzap.Ctx(ctx)

	if field == "" {
		field = DefaultField
	}
	mount, path, err := SplitPath(fullPath)
	if err != nil {
		span.SetStatus(codes.Error, "bad path")
		return "", err
	}
	span.SetAttributes(attribute.String("vault.mount", mount), attribute.String("vault.path", path))

	secret, err := client.KVv2(mount).Get(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		log.Warn("Failed to read webhook secret from Vault",
			zap.String("mount", mount),
			zap.String("path", path),
			zap.Error(err))
		return "", cerr.Wrapf(err, "failed to read %s/%s from vault", mount, path)
	}

	raw, ok := secret.Data[field]
	if !ok || raw == nil {
		span.SetStatus(codes.Error, "field missing")
		return "", cerr.Wrapf(ErrFieldMissing, "%s/%s: %q", mount, path, field)
	}
	value, ok := raw.(string)
	if !ok {
		span.SetStatus(codes.Error, "field not a string")
		return "", cerr.Newf("%s/%s: field %q is %T, want string", mount, path, field, raw)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", cerr.Wrapf(ErrFieldMissing, "%s/%s: %q is empty", mount, path, field)
	}

	log.Debug("Webhook URL loaded from Vault", zap.String("mount", mount), zap.String("path", path))
	return value, nil
}

// Lookup builds a client and reads the field in one step.
func Lookup(ctx context.Context, addr, fullPath, field string) (string, error) {
	client, err := NewClient(ctx, addr)
	if err != nil {
		return "", err
	}
	value, err := ReadWebhookURL(ctx, client, fullPath, field)
	if err != nil {
		return "", fmt.Errorf("vault lookup: %w", err)
	}
	return value, nil
}
