// pkg/httpclient/httpclient.go

package httpclient

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Client wraps http.Client with a default User-Agent and optional traffic logging.
type Client struct {
	httpClient *http.Client
	config     *Config
}

// NewClient builds a client from config; a nil config uses DefaultConfig.
// A zero timeout means DefaultTimeout.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	tlsConfig, err := config.tlsConfig()
	if err != nil {
		return nil, cerr.Wrap(err, "failed to build TLS config")
	}

	dial := config.DialTimeout
	if dial == 0 {
		dial = config.Timeout
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		TLSClientConfig:     tlsConfig,
		DialContext:         (&net.Dialer{Timeout: dial}).DialContext,
		TLSHandshakeTimeout: dial,
		MaxIdleConns:        1,
		IdleConnTimeout:     30 * time.Second,
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: transport,
		},
		config: config,
	}, nil
}

// Timeout returns the overall request deadline.
func (c *Client) Timeout() time.Duration {
	return c.httpClient.Timeout
}

// Do sends req, setting the User-Agent when the request has none.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	logger := otelzap.Ctx(ctx)

	if c.config.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	// Only the host is logged; webhook paths carry the credential.
	if c.config.LogTraffic {
		logger.Debug("HTTP request",
			zap.String("method", req.Method),
			zap.String("host", req.URL.Host))
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	if c.config.LogTraffic {
		logger.Debug("HTTP response",
			zap.Int("status", resp.StatusCode),
			zap.Duration("duration", time.Since(start)))
	}
	return resp, nil
}

// Post sends body to url with the given content type.
func (c *Client) Post(ctx context.Context, url, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, cerr.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", contentType)
	return c.Do(ctx, req)
}
