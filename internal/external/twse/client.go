package twse

import (
	"github.com/taichungmao-blip/CB-Monitor/internal/external/exchange"
	"github.com/taichungmao-blip/CB-Monitor/pkg/config"
	"github.com/taichungmao-blip/CB-Monitor/pkg/httputil"
	"github.com/taichungmao-blip/CB-Monitor/pkg/logger"
)

// Client handles TWSE listed-market endpoints and the MIS realtime snapshot
// ⭐ SSOT: 上市與 MIS 資料只在這個客戶端抓取
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	cache      exchange.Cache
	baseURL    string
	misURL     string
	batchSize  int
}

// NewClient creates a new TWSE client
func NewClient(httpClient *httputil.Client, cfg *config.Config, log *logger.Logger) *Client {
	batch := cfg.Scan.MISBatchSize
	if batch <= 0 {
		batch = 20
	}
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("module", "twse"),
		baseURL:    cfg.Upstream.TWSEBaseURL,
		misURL:     cfg.Upstream.MISBaseURL,
		batchSize:  batch,
	}
}

// WithCache enables settlement-table caching
func (c *Client) WithCache(cache exchange.Cache) *Client {
	c.cache = cache
	return c
}

// tableResponse is the common shape of TWSE rwd JSON endpoints
type tableResponse struct {
	Stat   string         `json:"stat"`
	Date   string         `json:"date"`
	Fields []string       `json:"fields"`
	Data   []exchange.Row `json:"data"`
	Tables []table        `json:"tables"`
}

type table struct {
	Title  string         `json:"title"`
	Fields []string       `json:"fields"`
	Data   []exchange.Row `json:"data"`
}

func (r *tableResponse) ok() bool {
	return r.Stat == "OK"
}
