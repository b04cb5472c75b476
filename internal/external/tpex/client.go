package tpex

import (
	"context"
	"net/http"

	"github.com/taichungmao-blip/CB-Monitor/internal/external/exchange"
	"github.com/taichungmao-blip/CB-Monitor/pkg/config"
	"github.com/taichungmao-blip/CB-Monitor/pkg/httputil"
	"github.com/taichungmao-blip/CB-Monitor/pkg/logger"
)

// visitedCookie marks a session that already passed the TPEx landing page
const visitedCookie = "tpex_visited"

// Client handles TPEx (OTC market) endpoints
// ⭐ SSOT: 上櫃資料只在這個客戶端抓取
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	cache      exchange.Cache
	baseURL    string
}

// NewClient creates a new TPEx client
func NewClient(httpClient *httputil.Client, cfg *config.Config, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("module", "tpex"),
		baseURL:    cfg.Upstream.TPExBaseURL,
	}
}

// WithCache enables settlement-table caching
func (c *Client) WithCache(cache exchange.Cache) *Client {
	c.cache = cache
	return c
}

// tableResponse covers both the legacy aaData and the current tables layout
type tableResponse struct {
	AaData []exchange.Row `json:"aaData"`
	Tables []struct {
		Title string         `json:"title"`
		Data  []exchange.Row `json:"data"`
	} `json:"tables"`
}

// rows returns the first non-empty table, preferring the current layout
func (r *tableResponse) rows() []exchange.Row {
	if len(r.Tables) > 0 && len(r.Tables[0].Data) > 0 {
		return r.Tables[0].Data
	}
	return r.AaData
}

// ensureSession visits the landing page once per session
func (c *Client) ensureSession(ctx context.Context) {
	landing := c.baseURL + "/web/"
	if c.httpClient.HasCookie(landing, visitedCookie) {
		return
	}
	if err := c.httpClient.Warm(ctx, landing); err != nil {
		c.logger.WithError(err).Debug("TPEx warm-up failed")
	}
	c.httpClient.SetCookie(landing, &http.Cookie{Name: visitedCookie, Value: "true", Path: "/"})
}
