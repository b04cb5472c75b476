package httputil

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/taichungmao-blip/CB-Monitor/pkg/config"
	"github.com/taichungmao-blip/CB-Monitor/pkg/logger"
)

// Client is a session-style HTTP client with default headers, a cookie jar and logging.
// Every upstream call is attempted exactly once; there is no retry.
// ⭐ SSOT: 所有 HTTP 請求只經過此客戶端
type Client struct {
	httpClient *http.Client
	logger     *logger.Logger
	headers    http.Header
	limiter    *rate.Limiter
}

// New creates a new HTTP client from config
func New(cfg *config.Config, log *logger.Logger) *Client {
	jar, _ := cookiejar.New(nil)

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.HTTP.InsecureSkipVerify {
		// 證交所部分憑證鏈在某些環境驗證失敗
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	headers := http.Header{}
	headers.Set("User-Agent", cfg.HTTP.UserAgent)
	headers.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	headers.Set("Connection", "keep-alive")

	c := &Client{
		httpClient: &http.Client{
			Timeout:   cfg.HTTP.Timeout,
			Transport: transport,
			Jar:       jar,
		},
		logger:  log,
		headers: headers,
	}
	if cfg.HTTP.RequestInterval > 0 {
		c.limiter = rate.NewLimiter(rate.Every(cfg.HTTP.RequestInterval), 1)
	}
	return c
}

// WithLimiter paces outgoing requests through limiter
func (c *Client) WithLimiter(limiter *rate.Limiter) *Client {
	c.limiter = limiter
	return c
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	return c.GetWithHeaders(ctx, url, nil)
}

// GetWithHeaders performs a GET request with extra headers (e.g. Referer)
func (c *Client) GetWithHeaders(ctx context.Context, url string, extra http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create GET request: %w", err)
	}
	for k, vs := range extra {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	return c.do(req)
}

// Post performs a POST request with body
func (c *Client) Post(ctx context.Context, url string, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create POST request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)
	return c.do(req)
}

// PostJSON performs a POST request with JSON body
func (c *Client) PostJSON(ctx context.Context, url string, data interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return c.Post(ctx, url, "application/json", bytes.NewReader(jsonData))
}

// PostForm performs a POST request with form data
func (c *Client) PostForm(ctx context.Context, targetURL string, formData url.Values) (*http.Response, error) {
	return c.Post(ctx, targetURL, "application/x-www-form-urlencoded", strings.NewReader(formData.Encode()))
}

// GetJSON performs a GET request and decodes a 200 response into dest
func (c *Client) GetJSON(ctx context.Context, url string, extra http.Header, dest interface{}) error {
	resp, err := c.GetWithHeaders(ctx, url, extra)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{StatusCode: resp.StatusCode, URL: url}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Warm visits url once to pick up session cookies. The body is discarded.
func (c *Client) Warm(ctx context.Context, url string) error {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// SetCookie stores a cookie for rawURL in the session jar
func (c *Client) SetCookie(rawURL string, cookie *http.Cookie) {
	u, err := url.Parse(rawURL)
	if err != nil || c.httpClient.Jar == nil {
		return
	}
	c.httpClient.Jar.SetCookies(u, []*http.Cookie{cookie})
}

// HasCookie reports whether the session jar holds a cookie named name for rawURL
func (c *Client) HasCookie(rawURL, name string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || c.httpClient.Jar == nil {
		return false
	}
	for _, ck := range c.httpClient.Jar.Cookies(u) {
		if ck.Name == name {
			return true
		}
	}
	return false
}

type redactKey struct{}

// Redacted marks requests made with ctx as carrying a secret in their URL.
// Logs and returned errors then show only scheme and host.
func Redacted(ctx context.Context) context.Context {
	return context.WithValue(ctx, redactKey{}, true)
}

func isRedacted(ctx context.Context) bool {
	v, _ := ctx.Value(redactKey{}).(bool)
	return v
}

// logURL is the form of u safe to log for this request
func logURL(ctx context.Context, u *url.URL) string {
	if isRedacted(ctx) {
		return u.Scheme + "://" + u.Host + "/[redacted]"
	}
	return u.String()
}

// do executes the request once with default headers and logging
func (c *Client) do(req *http.Request) (*http.Response, error) {
	for k, vs := range c.headers {
		if req.Header.Get(k) == "" {
			req.Header[k] = vs
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("rate limit wait failed: %w", err)
		}
	}

	startTime := time.Now()
	target := logURL(req.Context(), req.URL)

	c.logger.WithFields(map[string]interface{}{
		"method": req.Method,
		"url":    target,
	}).Debug("HTTP request started")

	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)

	if err != nil {
		var urlErr *url.Error
		if isRedacted(req.Context()) && errors.As(err, &urlErr) {
			err = &url.Error{Op: urlErr.Op, URL: target, Err: urlErr.Err}
		}
		c.logger.WithFields(map[string]interface{}{
			"method":   req.Method,
			"url":      target,
			"duration": duration,
			"error":    err.Error(),
		}).Warn("HTTP request failed")
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"method":      req.Method,
		"url":         target,
		"status_code": resp.StatusCode,
		"duration":    duration,
	}).Debug("HTTP request completed")

	return resp, nil
}

// StatusError is returned when an upstream answers with a non-200 status
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.StatusCode, e.URL)
}
