// pkg/httpclient/config.go

package httpclient

import (
	"crypto/tls"
	"crypto/x509"
	"os"
	"time"

	cerr "github.com/cockroachdb/errors"
)

// DefaultTimeout bounds a single webhook call end to end.
const DefaultTimeout = 10 * time.Second

// UserAgent is sent unless a request sets its own.
const UserAgent = "wazuh-notify/1.0"

// Config holds the transport settings for webhook calls. One invocation makes
// at most one request, so the pool is kept small.
type Config struct {
	Timeout     time.Duration
	DialTimeout time.Duration
	UserAgent   string

	// CAFile is appended to the system roots.
	CAFile string

	// LogTraffic logs method, host, status and duration at debug level.
	LogTraffic bool
}

// DefaultConfig returns verified-TLS settings with DefaultTimeout.
func DefaultConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		DialTimeout: 5 * time.Second,
		UserAgent:   UserAgent,
		LogTraffic:  true,
	}
}

// ConfigError names the offending field.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "invalid http client setting " + e.Field + ": " + e.Message
}

// Validate rejects settings NewClient cannot honour.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return &ConfigError{Field: "timeout", Message: "must not be negative"}
	}
	if c.DialTimeout < 0 {
		return &ConfigError{Field: "dial_timeout", Message: "must not be negative"}
	}
	return nil
}

func (c *Config) tlsConfig() (*tls.Config, error) {
	out := &tls.Config{MinVersion: tls.VersionTLS12}
	if c.CAFile == "" {
		return out, nil
	}

	pem, err := os.ReadFile(c.CAFile)
	if err != nil {
		return nil, cerr.Wrapf(err, "failed to read CA bundle %s", c.CAFile)
	}
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, cerr.Newf("no certificates found in %s", c.CAFile)
	}
	out.RootCAs = pool
	return out, nil
}
