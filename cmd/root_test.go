package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/saument1986/Homelab-infrastructure/pkg/config"
	"github.com/saument1986/Homelab-infrastructure/pkg/slack"
)

const bruteForce = `{"rule":{"level":12,"description":"Brute force detected","id":"5712","groups":["authentication","ssh"]},"agent":{"name":"web01","ip":"10.0.0.5"}}`

type result struct {
	code    int
	stdout  string
	stderr  string
	logFile string
}

type hookServer struct {
	*httptest.Server
	calls  int32
	mu     sync.Mutex
	bodies [][]byte
}

func newHook(t *testing.T, status int) *hookServer {
	t.Helper()
	h := &hookServer{}
	h.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&h.calls, 1)
		body, _ := io.ReadAll(r.Body)
		h.mu.Lock()
		h.bodies = append(h.bodies, body)
		h.mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(h.Close)
	return h
}

func (h *hookServer) Calls() int { return int(atomic.LoadInt32(&h.calls)) }

func (h *hookServer) Body(i int) []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.bodies[i]
}

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, "WAZUH_NOTIFY_") || strings.HasPrefix(name, "VAULT_") {
			t.Setenv(name, "")
			require.NoError(t, os.Unsetenv(name))
		}
	}
	for _, name := range []string{config.WebhookEnv, "LOG_LEVEL"} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	isolateEnv(t)
	return runIsolated(t, stdin, args...)
}

func runIsolated(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	logFile := filepath.Join(t.TempDir(), "wazuh-notify.log")

	app := &App{
		Stdin:  strings.NewReader(stdin),
		Stdout: &stdout,
		Stderr: &stderr,
		NewLoader: func(v *viper.Viper) *config.Loader {
			l := config.NewLoader(v)
			l.SearchPaths = nil
			return l
		},
	}
	root := NewRootCmd(app)
	root.SetArgs(append([]string{"--log-file", logFile}, args...))
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	code := app.Finish(root.ExecuteContext(context.Background()))
	return result{code: code, stdout: stdout.String(), stderr: stderr.String(), logFile: logFile}
}

func TestCriticalAlertDelivered(t *testing.T) {
	hook := newHook(t, http.StatusOK)
	res := run(t, bruteForce, "--webhook-url", hook.URL)

	assert.Equal(t, 0, res.code, res.stderr)
	require.Equal(t, 1, hook.Calls())

	var msg slack.Message
	require.NoError(t, json.Unmarshal(hook.Body(0), &msg))
	assert.Contains(t, msg.Text, "@channel")
	assert.Contains(t, msg.Text, "HIGH Priority")
	assert.Equal(t, "#FF0000", msg.Attachments[0].Color)
}

func TestBelowThresholdExitsZeroWithoutDelivery(t *testing.T) {
	hook := newHook(t, http.StatusOK)
	res := run(t, `{"rule":{"level":3,"groups":[]}}`, "--webhook-url", hook.URL)

	assert.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, 0, hook.Calls())
}

func TestMinLevelFlag(t *testing.T) {
	hook := newHook(t, http.StatusOK)
	res := run(t, `{"rule":{"level":3}}`, "--webhook-url", hook.URL, "--min-level", "3")

	assert.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, 1, hook.Calls())
}

func TestMinLevelAboveRangeDeliversNothing(t *testing.T) {
	hook := newHook(t, http.StatusOK)
	res := run(t, `{"rule":{"level":16,"groups":["ids"]}}`, "--webhook-url", hook.URL, "--min-level", "20")

	assert.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, 0, hook.Calls())
	assert.NotContains(t, res.stderr, "Error:")
}

func TestProbeAgainstFailingEndpoint(t *testing.T) {
	hook := newHook(t, http.StatusForbidden)
	res := run(t, "", "--test", "--webhook-url", hook.URL)

	assert.Equal(t, 1, res.code)
	assert.Equal(t, 1, hook.Calls())
	assert.Contains(t, res.stdout, "❌ Test message failed!")
	assert.Contains(t, res.stderr, "Slack API error: 403")
}

func TestProbeSuccess(t *testing.T) {
	hook := newHook(t, http.StatusOK)
	res := run(t, "", "--test", "--webhook-url", hook.URL)

	assert.Equal(t, 0, res.code, res.stderr)
	assert.Contains(t, res.stdout, "✅ Test message sent successfully!")

	var msg slack.Message
	require.NoError(t, json.Unmarshal(hook.Body(0), &msg))
	assert.Equal(t, slack.ProbeHeadline, msg.Text)
}

func TestMissingWebhookIsConfigurationError(t *testing.T) {
	res := run(t, bruteForce)

	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "SLACK_WEBHOOK_URL environment variable not set")
	assert.Contains(t, res.stderr, "How to fix:")
}

func TestWebhookFromEnvironment(t *testing.T) {
	isolateEnv(t)
	hook := newHook(t, http.StatusOK)
	t.Setenv(config.WebhookEnv, hook.URL)

	res := runIsolated(t, bruteForce)
	assert.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, 1, hook.Calls())
}

func TestInvalidInput(t *testing.T) {
	hook := newHook(t, http.StatusOK)
	for _, input := range []string{"", "not json", `[1,2]`} {
		res := run(t, input, "--webhook-url", hook.URL)
		assert.Equal(t, 1, res.code, "input %q", input)
	}
	assert.Equal(t, 0, hook.Calls())
}

func TestIntegratordArguments(t *testing.T) {
	isolateEnv(t)
	hook := newHook(t, http.StatusOK)
	alertFile := filepath.Join(t.TempDir(), "alert.json")
	require.NoError(t, os.WriteFile(alertFile, []byte(bruteForce), 0600))

	res := runIsolated(t, "ignored stdin", alertFile, "", hook.URL)
	assert.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, 1, hook.Calls())
}

func TestWebhookFlagBeatsPositionalHook(t *testing.T) {
	isolateEnv(t)
	flagHook := newHook(t, http.StatusOK)
	argHook := newHook(t, http.StatusOK)
	alertFile := filepath.Join(t.TempDir(), "alert.json")
	require.NoError(t, os.WriteFile(alertFile, []byte(bruteForce), 0600))

	res := runIsolated(t, "", "--webhook-url", flagHook.URL, alertFile, "key", argHook.URL)
	assert.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, 1, flagHook.Calls())
	assert.Equal(t, 0, argHook.Calls())
}

func TestMissingAlertFile(t *testing.T) {
	hook := newHook(t, http.StatusOK)
	res := run(t, "", "--webhook-url", hook.URL, filepath.Join(t.TempDir(), "gone.json"))
	assert.Equal(t, 1, res.code)
	assert.Equal(t, 0, hook.Calls())
}

func TestTooManyArguments(t *testing.T) {
	res := run(t, "", "a", "b", "c", "d")
	assert.Equal(t, 1, res.code)
}

func TestDryRunPrintsPayload(t *testing.T) {
	res := run(t, bruteForce, "--dry-run", "--channel", "#soc")
	assert.Equal(t, 0, res.code, res.stderr)

	var msg slack.Message
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(res.stdout)), &msg))
	assert.Equal(t, "#soc", msg.Channel)
	assert.Contains(t, msg.Text, "Wazuh Security Alert")
}

func TestLogFileRecordsRun(t *testing.T) {
	hook := newHook(t, http.StatusOK)
	res := run(t, bruteForce, "--webhook-url", hook.URL)
	require.Equal(t, 0, res.code, res.stderr)

	data, err := os.ReadFile(res.logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Alert sent to Slack successfully")
	assert.Contains(t, string(data), `"run_id"`)
}

func TestDeliveryFailureLogsWarning(t *testing.T) {
	hook := newHook(t, http.StatusNotFound)
	res := run(t, bruteForce, "--webhook-url", hook.URL)
	require.Equal(t, 1, res.code)

	data, err := os.ReadFile(res.logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Alert was not delivered and will not be retried")
}

func TestConfigShow(t *testing.T) {
	res := run(t, "", "config", "show", "--min-level", "10",
		"--webhook-url", "https://hooks.slack.com/services/T000/B000/XXXX")
	require.Equal(t, 0, res.code, res.stderr)

	var shown map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(res.stdout), &shown))
	assert.Equal(t, 10, shown["min_level"])
	assert.Equal(t, "https://hooks.slack.com/[REDACTED]", shown["webhook_url"])
	assert.NotContains(t, res.stdout, "XXXX")
}

func TestConfigShowInvalidConfig(t *testing.T) {
	res := run(t, "", "config", "show", "--timeout", "-5s")
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "timeout must be positive")
}
