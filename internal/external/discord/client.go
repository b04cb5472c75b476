// Package discord delivers alerts to a Discord channel webhook.
package discord

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/taichungmao-blip/CB-Monitor/internal/contracts"
	"github.com/taichungmao-blip/CB-Monitor/pkg/config"
	"github.com/taichungmao-blip/CB-Monitor/pkg/httputil"
	"github.com/taichungmao-blip/CB-Monitor/pkg/logger"
)

// WebhookPayload is the execute-webhook request body
type WebhookPayload struct {
	Username string  `json:"username,omitempty"`
	Embeds   []Embed `json:"embeds"`
}

// Embed is one rich embed
type Embed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
	Timestamp   string `json:"timestamp"`
}

// Client posts alerts to a webhook URL. The URL is the only credential.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	webhookURL string
	username   string
}

// NewClient creates a new webhook client
func NewClient(httpClient *httputil.Client, cfg *config.Config, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("module", "discord"),
		webhookURL: cfg.Discord.WebhookURL,
		username:   cfg.Discord.Username,
	}
}

// Deliver posts one alert as an embed. Discord answers 204 on success.
func (c *Client) Deliver(ctx context.Context, alert contracts.Alert) error {
	ts := alert.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	payload := WebhookPayload{
		Username: c.username,
		Embeds: []Embed{{
			Title:       alert.Title,
			Description: alert.Body,
			Color:       alert.Color,
			Timestamp:   ts.Format(time.RFC3339),
		}},
	}

	// the webhook URL is the credential, keep it out of logs and errors
	resp, err := c.httpClient.PostJSON(httputil.Redacted(ctx), c.webhookURL, payload)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("webhook post: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &httputil.StatusError{StatusCode: resp.StatusCode, URL: "discord webhook"}
	}
	return nil
}
