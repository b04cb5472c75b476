package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taichungmao-blip/CB-Monitor/internal/contracts"
	"github.com/taichungmao-blip/CB-Monitor/internal/report"
	"github.com/taichungmao-blip/CB-Monitor/pkg/config"
	"github.com/taichungmao-blip/CB-Monitor/pkg/httputil"
	"github.com/taichungmao-blip/CB-Monitor/pkg/logger"
)

func newTestClient(webhookURL string) *Client {
	cfg := &config.Config{
		Env:     "development",
		HTTP:    config.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "cb-monitor-test"},
		Discord: config.DiscordConfig{WebhookURL: webhookURL, Username: "CB 戰情室"},
	}
	return NewClient(httputil.New(cfg, logger.Nop()), cfg, logger.Nop())
}

func TestDeliver(t *testing.T) {
	var got WebhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	alert := contracts.Alert{
		Title:     "📊 五福 (2745) 戰報",
		Body:      "💡 premium",
		Color:     0x00ff00,
		Timestamp: time.Date(2026, 1, 9, 15, 30, 0, 0, time.UTC),
	}
	require.NoError(t, newTestClient(server.URL).Deliver(context.Background(), alert))

	assert.Equal(t, "CB 戰情室", got.Username)
	require.Len(t, got.Embeds, 1)
	assert.Equal(t, "📊 五福 (2745) 戰報", got.Embeds[0].Title)
	assert.Equal(t, "💡 premium", got.Embeds[0].Description)
	assert.Equal(t, 0x00ff00, got.Embeds[0].Color)
	assert.Equal(t, "2026-01-09T15:30:00Z", got.Embeds[0].Timestamp)
}

func TestDeliverRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	err := newTestClient(server.URL).Deliver(context.Background(), contracts.Alert{Title: "x"})
	require.Error(t, err)

	var statusErr *httputil.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
}

func TestDeliverFailureKeepsWebhookTokenOutOfLogs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	webhookURL := server.URL + "/api/webhooks/123/SUPERSECRETTOKEN"
	server.Close()

	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "debug")
	cfg := &config.Config{
		Env:     "development",
		HTTP:    config.HTTPConfig{Timeout: time.Second, UserAgent: "cb-monitor-test"},
		Discord: config.DiscordConfig{WebhookURL: webhookURL},
	}
	client := NewClient(httputil.New(cfg, log), cfg, log)

	err := client.Deliver(context.Background(), contracts.Alert{Title: "x"})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SUPERSECRETTOKEN")

	delivered := report.NewDispatcher(client, 0, log).Dispatch(context.Background(), contracts.Alert{Symbol: "2324", Title: "x"})
	assert.False(t, delivered)

	assert.Contains(t, buf.String(), "Alert delivery failed")
	assert.NotContains(t, buf.String(), "SUPERSECRETTOKEN")
	assert.NotContains(t, buf.String(), "/api/webhooks/123")
}

func TestConsoleDeliver(t *testing.T) {
	var buf bytes.Buffer
	alert := contracts.Alert{Title: "📊 仁寶 (2324) 戰報", Body: "body", Color: 0xffa500, Severity: contracts.SeverityWarning}

	require.NoError(t, NewConsole(&buf).Deliver(context.Background(), alert))
	assert.Contains(t, buf.String(), "📊 仁寶 (2324) 戰報")
	assert.Contains(t, buf.String(), "#ffa500 warning")
	assert.Contains(t, buf.String(), "body")
}
