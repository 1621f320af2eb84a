// pkg/slack/webhook.go

package slack

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/saument1986/Homelab-infrastructure/pkg/httpclient"
	"github.com/saument1986/Homelab-infrastructure/pkg/notify_err"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// maxErrorBody bounds how much of a failed response is kept for logging.
const maxErrorBody = 4096

// DeliveryError describes a failed webhook call: either a non-200 response
// (StatusCode and Body set) or a transport failure (Cause set).
type DeliveryError struct {
	StatusCode int
	Body       string
	Cause      error
}

func (e *DeliveryError) Error() string {
	if e.Cause != nil {
		return "network error sending to Slack: " + notify_err.SanitizeErrorMessage(e.Cause)
	}
	return fmt.Sprintf("Slack API error: %d - %s", e.StatusCode, e.Body)
}

func (e *DeliveryError) Unwrap() error {
	return e.Cause
}

// Webhook posts messages to a Slack incoming webhook. It makes exactly one
// attempt per call.
type Webhook struct {
	client *httpclient.Client
}

// NewWebhook wraps client; a nil client gets the default 10s configuration.
func NewWebhook(client *httpclient.Client) (*Webhook, error) {
	if client == nil {
		c, err := httpclient.NewClient(httpclient.DefaultConfig())
		if err != nil {
			return nil, err
		}
		client = c
	}
	return &Webhook{client: client}, nil
}

// Deliver POSTs msg as JSON to endpoint. Only HTTP 200 counts as success.
func (w *Webhook) Deliver(ctx context.Context, msg Message, endpoint string) error {
	logger := otelzap.Ctx(ctx)

	payload, err := msg.JSON()
	if err != nil {
		return &DeliveryError{Cause: fmt.Errorf("failed to marshal message: %w", err)}
	}

	logger.Debug("Posting message to Slack webhook",
		zap.Int("payload_bytes", len(payload)),
		zap.Duration("timeout", w.client.Timeout()))

	resp, err := w.client.Post(ctx, endpoint, "application/json", bytes.NewReader(payload))
	if err != nil {
		// Transport errors quote the request URL, whose path is the webhook secret.
		logger.Error("Network error sending to Slack",
			zap.String("error", notify_err.SanitizeErrorMessage(err)),
			zap.String("error_class", notify_err.SafeErrorSummary(err)))
		return &DeliveryError{Cause: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		derr := &DeliveryError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		logger.Error("Slack API error",
			zap.Int("status", derr.StatusCode),
			zap.String("body", derr.Body))
		return derr
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	logger.Info("Alert sent to Slack successfully")
	return nil
}
