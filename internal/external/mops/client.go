// Package mops scrapes material-information announcements from the
// Market Observation Post System.
package mops

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/taichungmao-blip/CB-Monitor/pkg/config"
	"github.com/taichungmao-blip/CB-Monitor/pkg/httputil"
	"github.com/taichungmao-blip/CB-Monitor/pkg/logger"
)

// Client handles MOPS disclosure queries
// ⭐ SSOT: 重大訊息查詢只在這個客戶端
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new MOPS client
func NewClient(httpClient *httputil.Client, cfg *config.Config, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("module", "mops"),
		baseURL:    cfg.Upstream.MOPSBaseURL,
	}
}

// Excerpts returns the text of every announcement row filed by symbol in the
// given ROC fiscal year. Whitespace inside a row is collapsed.
func (c *Client) Excerpts(ctx context.Context, symbol string, rocYear int) ([]string, error) {
	form := url.Values{
		"encodeURIComponent": {"1"},
		"step":               {"1"},
		"firstin":            {"1"},
		"off":                {"1"},
		"queryName":          {"co_id"},
		"inpuType":           {"co_id"},
		"TYPEK":              {"all"},
		"co_id":              {symbol},
		"year":               {strconv.Itoa(rocYear)},
	}

	resp, err := c.httpClient.PostForm(ctx, c.baseURL+"/mops/web/ajax_t05st01", form)
	if err != nil {
		return nil, fmt.Errorf("mops query %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &httputil.StatusError{StatusCode: resp.StatusCode, URL: c.baseURL}
	}

	excerpts, err := parseExcerpts(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("mops parse %s: %w", symbol, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol":   symbol,
		"year":     rocYear,
		"excerpts": len(excerpts),
	}).Debug("MOPS announcements fetched")
	return excerpts, nil
}

// parseExcerpts returns one line per non-empty table row, cells separated by a space
func parseExcerpts(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var out []string
	doc.Find("tr").Each(func(_ int, s *goquery.Selection) {
		cells := s.Find("td,th").Map(func(_ int, c *goquery.Selection) string {
			return strings.Join(strings.Fields(c.Text()), " ")
		})

		parts := cells[:0]
		for _, cell := range cells {
			if cell != "" {
				parts = append(parts, cell)
			}
		}
		if len(parts) > 0 {
			out = append(out, strings.Join(parts, " "))
		}
	})
	return out, nil
}
