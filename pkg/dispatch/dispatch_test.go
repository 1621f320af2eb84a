package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/saument1986/Homelab-infrastructure/pkg/admission"
	"github.com/saument1986/Homelab-infrastructure/pkg/config"
	"github.com/saument1986/Homelab-infrastructure/pkg/logger"
	"github.com/saument1986/Homelab-infrastructure/pkg/notify_err"
	"github.com/saument1986/Homelab-infrastructure/pkg/slack"
)

const bruteForce = `{"rule":{"level":12,"description":"Brute force detected","id":"5712","groups":["authentication","ssh"]},"agent":{"name":"web01","ip":"10.0.0.5"}}`

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type slackFake struct {
	server   *httptest.Server
	calls    int32
	status   int
	received []slack.Message
}

func newSlackFake(t *testing.T, status int) *slackFake {
	t.Helper()
	f := &slackFake{status: status}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&f.calls, 1)
		body, _ := io.ReadAll(r.Body)
		var msg slack.Message
		if json.Unmarshal(body, &msg) == nil {
			f.received = append(f.received, msg)
		}
		w.WriteHeader(f.status)
		if f.status != http.StatusOK {
			_, _ = w.Write([]byte("invalid_token"))
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *slackFake) Calls() int { return int(atomic.LoadInt32(&f.calls)) }

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	logger.SetLogger(zap.New(core), nil)
	t.Cleanup(func() { logger.SetLogger(zap.NewNop(), nil) })
	return logs
}

func newRunner(t *testing.T, endpoint string, mutate func(*config.Config)) *Runner {
	t.Helper()
	cfg := config.Default()
	cfg.WebhookURL = endpoint
	cfg.Timeout = 2 * time.Second
	if mutate != nil {
		mutate(&cfg)
	}
	r, err := New(&cfg)
	require.NoError(t, err)
	r.Formatter.Clock = func() time.Time { return fixedNow }
	return r
}

func TestRunCriticalAlertDelivered(t *testing.T) {
	observe(t)
	fake := newSlackFake(t, http.StatusOK)
	r := newRunner(t, fake.server.URL, nil)

	report, err := r.Run(context.Background(), strings.NewReader(bruteForce))
	require.NoError(t, err)
	assert.Equal(t, 0, notify_err.GetExitCode(err))

	assert.Equal(t, OutcomeDelivered, report.Outcome)
	assert.Equal(t, "critical", report.Tier)
	assert.Equal(t, 12, report.Level)
	assert.False(t, report.Degraded)
	require.Equal(t, 1, fake.Calls())

	msg := fake.received[0]
	assert.True(t, strings.HasPrefix(msg.Text, "@channel"), msg.Text)
	assert.Contains(t, msg.Text, "HIGH Priority")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "#FF0000", msg.Attachments[0].Color)

	cats, ok := msg.Attachments[0].Field(slack.TitleCategories)
	require.True(t, ok)
	assert.Equal(t, "authentication, ssh", cats.Value)
}

func TestRunBelowThresholdSkipsDelivery(t *testing.T) {
	logs := observe(t)
	fake := newSlackFake(t, http.StatusOK)
	r := newRunner(t, fake.server.URL, nil)

	report, err := r.Run(context.Background(), strings.NewReader(`{"rule":{"level":3,"groups":[]}}`))
	require.Error(t, err)
	assert.True(t, notify_err.IsExpectedUserError(err))
	assert.Equal(t, 0, notify_err.GetExitCode(err))
	assert.Equal(t, OutcomeSkipped, report.Outcome)
	assert.Equal(t, admission.ReasonBelowThreshold, report.Decision.Reason)
	assert.Equal(t, 0, fake.Calls())

	skipped := logs.FilterMessage("Alert not sent").All()
	require.Len(t, skipped, 1)
	assert.Equal(t, zapcore.InfoLevel, skipped[0].Level)
}

func TestRunNoisyGroupSkipsDelivery(t *testing.T) {
	observe(t)
	fake := newSlackFake(t, http.StatusOK)

	tests := []struct {
		name   string
		input  string
		extra  []string
		reason admission.Reason
		group  string
	}{
		{name: "syscheck", input: `{"rule":{"level":12,"groups":["ossec","syscheck"]}}`, reason: admission.ReasonNoisyGroup, group: "syscheck"},
		{name: "rootcheck", input: `{"rule":{"level":15,"groups":["rootcheck"]}}`, reason: admission.ReasonNoisyGroup, group: "rootcheck"},
		{name: "configured extra", input: `{"rule":{"level":10,"groups":["pam"]}}`, extra: []string{"pam"}, reason: admission.ReasonNoisyGroup, group: "pam"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRunner(t, fake.server.URL, func(c *config.Config) { c.SkipGroups = tt.extra })
			report, err := r.Run(context.Background(), strings.NewReader(tt.input))
			assert.True(t, notify_err.IsExpectedUserError(err))
			assert.Equal(t, 0, notify_err.GetExitCode(err))
			assert.Equal(t, OutcomeSkipped, report.Outcome)
			assert.Equal(t, tt.reason, report.Decision.Reason)
			assert.Equal(t, tt.group, report.Decision.Group)
		})
	}
	assert.Equal(t, 0, fake.Calls())
}

func TestRunMinLevelOverride(t *testing.T) {
	observe(t)
	fake := newSlackFake(t, http.StatusOK)
	r := newRunner(t, fake.server.URL, func(c *config.Config) { c.MinLevel = 3 })

	report, err := r.Run(context.Background(), strings.NewReader(`{"rule":{"level":3}}`))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDelivered, report.Outcome)
	assert.Equal(t, "low", report.Tier)
	assert.Equal(t, 1, fake.Calls())
}

func TestRunInputErrors(t *testing.T) {
	observe(t)
	fake := newSlackFake(t, http.StatusOK)
	r := newRunner(t, fake.server.URL, nil)

	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "whitespace", input: " \n\t"},
		{name: "truncated", input: `{"rule":{"level":12`},
		{name: "not json", input: "level=12"},
		{name: "array", input: `[{"rule":{"level":12}}]`},
		{name: "two documents", input: `{"rule":{}} {"rule":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Run(context.Background(), strings.NewReader(tt.input))
			require.Error(t, err)
			assert.True(t, notify_err.IsCategory(err, notify_err.CategoryInput), err.Error())
			assert.Equal(t, 1, notify_err.GetExitCode(err))
		})
	}
	assert.Equal(t, 0, fake.Calls(), "input errors must not reach the network")
}

func TestRunDegradedMessageIsStillSent(t *testing.T) {
	observe(t)
	fake := newSlackFake(t, http.StatusOK)
	r := newRunner(t, fake.server.URL, nil)

	report, err := r.Run(context.Background(), strings.NewReader(`{"rule":"not an object","agent":{"name":"web01"}}`))
	require.NoError(t, err)
	assert.True(t, report.Degraded)
	assert.Equal(t, OutcomeDelivered, report.Outcome)
	require.Equal(t, 1, fake.Calls())

	msg := fake.received[0]
	assert.Equal(t, "🚨 Wazuh Alert (Formatting Error)", msg.Text)
	assert.Equal(t, slack.ErrorColor, msg.Attachments[0].Color)
	assert.Contains(t, msg.Attachments[0].Text, "Raw data:")
}

func TestRunMalformedAlertStillFiltered(t *testing.T) {
	observe(t)
	fake := newSlackFake(t, http.StatusOK)
	r := newRunner(t, fake.server.URL, nil)

	tests := []struct {
		name   string
		input  string
		reason admission.Reason
		level  int
	}{
		{name: "agent is a string", input: `{"rule":{"level":3,"groups":[]},"agent":"web01"}`, reason: admission.ReasonBelowThreshold, level: 3},
		{name: "data is a list", input: `{"rule":{"level":2},"data":["x"]}`, reason: admission.ReasonBelowThreshold, level: 2},
		{name: "description is an object", input: `{"rule":{"level":12,"groups":["syscheck"],"description":{"a":1}}}`, reason: admission.ReasonNoisyGroup, level: 12},
		{name: "groups unreadable, level too low", input: `{"rule":{"level":4,"groups":"syscheck"}}`, reason: admission.ReasonBelowThreshold, level: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := r.Run(context.Background(), strings.NewReader(tt.input))
			assert.True(t, notify_err.IsExpectedUserError(err))
			assert.Equal(t, 0, notify_err.GetExitCode(err))
			assert.Equal(t, OutcomeSkipped, report.Outcome)
			assert.Equal(t, tt.reason, report.Decision.Reason)
			assert.Equal(t, tt.level, report.Level)
		})
	}
	assert.Equal(t, 0, fake.Calls())
}

func TestRunMalformedAlertAboveThresholdIsDegraded(t *testing.T) {
	observe(t)
	fake := newSlackFake(t, http.StatusOK)
	r := newRunner(t, fake.server.URL, nil)

	report, err := r.Run(context.Background(), strings.NewReader(`{"rule":{"level":10,"groups":["ssh"]},"agent":"web01"}`))
	require.NoError(t, err)
	assert.Equal(t, OutcomeDelivered, report.Outcome)
	assert.True(t, report.Degraded)
	assert.Equal(t, 10, report.Level)
	assert.Equal(t, 1, fake.Calls())
}

func TestRunDeliveryFailure(t *testing.T) {
	observe(t)
	fake := newSlackFake(t, http.StatusForbidden)
	r := newRunner(t, fake.server.URL, nil)

	report, err := r.Run(context.Background(), strings.NewReader(bruteForce))
	require.Error(t, err)
	assert.True(t, notify_err.IsCategory(err, notify_err.CategoryDelivery))
	assert.Equal(t, 1, notify_err.GetExitCode(err))
	assert.Contains(t, err.Error(), "Slack API error: 403 - invalid_token")
	assert.Equal(t, 1, fake.Calls(), "delivery must not retry")

	var derr *slack.DeliveryError
	assert.True(t, errors.As(err, &derr))
	assert.NotEmpty(t, report.Message.Text)
}

func TestRunDryRunPrintsPayload(t *testing.T) {
	observe(t)
	fake := newSlackFake(t, http.StatusOK)
	r := newRunner(t, "", func(c *config.Config) { c.DryRun = true; c.Username = "wazuh" })
	var out bytes.Buffer
	r.Stdout = &out

	report, err := r.Run(context.Background(), strings.NewReader(bruteForce))
	require.NoError(t, err)
	assert.Equal(t, OutcomePrinted, report.Outcome)
	assert.Equal(t, 0, fake.Calls())

	var printed slack.Message
	require.NoError(t, json.Unmarshal(out.Bytes(), &printed))
	assert.Equal(t, report.Message, printed)
	assert.Equal(t, "wazuh", printed.Username)
}

func TestProbeSuccess(t *testing.T) {
	logs := observe(t)
	fake := newSlackFake(t, http.StatusOK)
	r := newRunner(t, fake.server.URL, nil)

	report, err := r.Probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeDelivered, report.Outcome)
	require.Equal(t, 1, fake.Calls())

	msg := fake.received[0]
	assert.Equal(t, slack.ProbeHeadline, msg.Text)
	assert.Equal(t, slack.ProbeColor, msg.Attachments[0].Color)
	status, ok := msg.Attachments[0].Field("Status")
	require.True(t, ok)
	assert.Equal(t, slack.ProbeStatus, status.Value)
	when, _ := msg.Attachments[0].Field("Time")
	assert.Equal(t, "2024-03-01 12:00:00", when.Value)

	assert.Equal(t, 1, logs.FilterMessage(logger.TerminalPrefix+" "+ProbeSucceeded).Len())
}

func TestProbeFailureExitsNonZero(t *testing.T) {
	logs := observe(t)
	fake := newSlackFake(t, http.StatusInternalServerError)
	r := newRunner(t, fake.server.URL, nil)

	_, err := r.Probe(context.Background())
	require.Error(t, err)
	assert.True(t, notify_err.IsCategory(err, notify_err.CategoryDelivery))
	assert.Equal(t, 1, notify_err.GetExitCode(err))
	assert.Equal(t, 1, fake.Calls())
	assert.Equal(t, 1, logs.FilterMessage(logger.TerminalPrefix+" "+ProbeFailed).Len())
}

func TestProbeDryRun(t *testing.T) {
	observe(t)
	r := newRunner(t, "", func(c *config.Config) { c.DryRun = true })
	var out bytes.Buffer
	r.Stdout = &out

	report, err := r.Probe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomePrinted, report.Outcome)
	assert.Contains(t, out.String(), slack.ProbeHeadline)
}

func TestNewRejectsNegativeTimeout(t *testing.T) {
	cfg := config.Default()
	cfg.Timeout = -time.Second
	_, err := New(&cfg)
	assert.True(t, notify_err.IsCategory(err, notify_err.CategoryConfiguration))
}

func TestOpenInput(t *testing.T) {
	rc, name, err := OpenInput("", strings.NewReader(bruteForce))
	require.NoError(t, err)
	assert.Equal(t, "stdin", name)
	data, err := ReadInput(rc)
	require.NoError(t, err)
	assert.Equal(t, bruteForce, string(data))

	path := filepath.Join(t.TempDir(), "alert.json")
	require.NoError(t, os.WriteFile(path, []byte(bruteForce), 0600))
	rc, name, err = OpenInput(path, nil)
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()
	assert.Equal(t, path, name)

	_, _, err = OpenInput(filepath.Join(t.TempDir(), "missing.json"), nil)
	assert.True(t, notify_err.IsCategory(err, notify_err.CategoryInput))
}

func TestReadInputTooLarge(t *testing.T) {
	big := strings.NewReader(strings.Repeat(" ", MaxInputBytes+1))
	_, err := ReadInput(big)
	require.Error(t, err)
	assert.True(t, notify_err.IsCategory(err, notify_err.CategoryInput))
}
