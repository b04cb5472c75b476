package twse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taichungmao-blip/CB-Monitor/internal/contracts"
	"github.com/taichungmao-blip/CB-Monitor/pkg/config"
	"github.com/taichungmao-blip/CB-Monitor/pkg/httputil"
	"github.com/taichungmao-blip/CB-Monitor/pkg/logger"
)

func newTestClient(t *testing.T, baseURL string, batchSize int) *Client {
	t.Helper()
	cfg := &config.Config{
		Env: "development",
		HTTP: config.HTTPConfig{
			Timeout:   5 * time.Second,
			UserAgent: "cb-monitor-test",
		},
		Upstream: config.UpstreamConfig{
			TWSEBaseURL: baseURL,
			MISBaseURL:  baseURL,
		},
		Scan: config.ScanConfig{MISBatchSize: batchSize},
	}
	return NewClient(httputil.New(cfg, logger.Nop()), cfg, logger.Nop())
}

func recordsBySymbol(records []contracts.QuoteRecord) map[string]contracts.QuoteRecord {
	out := make(map[string]contracts.QuoteRecord, len(records))
	for _, r := range records {
		out[r.Symbol] = r
	}
	return out
}

func TestParseMIS(t *testing.T) {
	resp := misResponse{MsgArray: []misQuote{
		{Code: "2324", Trade: "31.50", Prev: "31.00", Volume: "12,345"},
		{Code: "6894", Trade: "-", Prev: "88.10", Volume: "0"},
		{Code: "2745", Trade: "-", Prev: "-", Volume: "0"},
		{Code: "6913", Trade: "abc", Prev: "50", Volume: "1"},
		{Code: "0000", Trade: "10", Prev: "0", Volume: "1"},
	}}

	records, skipped := parseMIS(resp)
	bySymbol := recordsBySymbol(records)

	require.Contains(t, bySymbol, "2324")
	q := bySymbol["2324"]
	assert.True(t, q.Close.Equal(decimal.RequireFromString("31.5")))
	assert.True(t, q.Change.Equal(decimal.RequireFromString("0.5")))
	assert.InDelta(t, 1.6129, q.ChangePct, 1e-3)
	assert.Equal(t, int64(12345), q.Volume)
	assert.Equal(t, contracts.SourceMIS, q.Source)

	require.Contains(t, bySymbol, "6894")
	fallback := bySymbol["6894"]
	assert.True(t, fallback.Close.Equal(decimal.RequireFromString("88.1")))
	assert.True(t, fallback.Change.IsZero())
	assert.Equal(t, 0.0, fallback.ChangePct)

	// zero previous close never divides by zero
	assert.Equal(t, 0.0, bySymbol["0000"].ChangePct)

	assert.NotContains(t, bySymbol, "2745")
	assert.NotContains(t, bySymbol, "6913")
	assert.Len(t, skipped, 2)
}

func TestMISKeysAndChunks(t *testing.T) {
	targets := []contracts.Target{
		{Symbol: "2324", Market: contracts.MarketTSE},
		{Symbol: "6894", Market: contracts.MarketOTC},
		{Symbol: "2745", Market: contracts.MarketOTC},
	}
	keys := misKeys(targets)
	assert.Equal(t, []string{"tse_2324.tw", "otc_6894.tw", "otc_2745.tw"}, keys)

	chunks := chunkKeys(keys, 2)
	require.Len(t, chunks, 2)
	assert.Len(t, chunks[0], 2)
	assert.Len(t, chunks[1], 1)
}

func TestSnapshotBatchesAndWarmsUp(t *testing.T) {
	var (
		mu      sync.Mutex
		queries []string
		warmed  bool
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()

		switch r.URL.Path {
		case "/stock/fibest.jsp":
			warmed = true
			http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "x", Path: "/"})
		case "/stock/api/getStockInfo.jsp":
			assert.Contains(t, r.Header.Get("Referer"), "/stock/fibest.jsp")
			exCh := r.URL.Query().Get("ex_ch")
			queries = append(queries, exCh)

			var rows []string
			for _, key := range strings.Split(exCh, "|") {
				id := strings.TrimSuffix(key[4:], ".tw")
				rows = append(rows, `{"c":"`+id+`","z":"10.5","y":"10","v":"7"}`)
			}
			w.Write([]byte(`{"msgArray":[` + strings.Join(rows, ",") + `],"rtcode":"0000"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 2)
	targets := []contracts.Target{
		{Symbol: "2324", Market: contracts.MarketTSE},
		{Symbol: "6894", Market: contracts.MarketOTC},
		{Symbol: "2745", Market: contracts.MarketOTC},
	}

	batch := client.Snapshot(context.Background(), targets)
	assert.Equal(t, contracts.StatusOK, batch.Status)
	assert.Len(t, batch.Records, 3)

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, warmed)
	assert.Equal(t, []string{"tse_2324.tw|otc_6894.tw", "otc_2745.tw"}, queries)
}

func TestSnapshotFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 20)
	batch := client.Snapshot(context.Background(), []contracts.Target{{Symbol: "2324", Market: contracts.MarketTSE}})
	assert.Equal(t, contracts.StatusFailed, batch.Status)
	assert.Error(t, batch.Err)
}

const miIndexFixture = `{
  "stat": "OK",
  "tables": [
    {"title": "價格指數", "fields": ["指數", "收盤指數"], "data": [["發行量加權股價指數", "23,000.12"]]},
    {"title": "每日收盤行情", "fields": ["證券代號","證券名稱","成交股數","成交筆數","成交金額","開盤價","最高價","最低價","收盤價","漲跌(+/-)","漲跌價差"],
     "data": [
       ["2324", "仁寶", "12,345,678", "1", "1", "31.00", "32.00", "30.50", "31.50", "<p style= color:red>+</p>", "0.50"],
       ["3706", "神達", "2,500,500", "1", "1", "50.00", "50.00", "48.00", "48.00", "<p style= color:green>-</p>", "2.00"],
       ["2329", "華泰", "1,000", "1", "1", "--", "--", "--", "--", "<p> </p>", "0.00"],
       ["8210", "勤誠", "999", "1", "1", "200", "200", "200", "200.00", "<p> </p>", "0.00"]
     ]}
  ]
}`

func TestParseSettlement(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rwd/zh/afterTrading/MI_INDEX", r.URL.Path)
		assert.Equal(t, "20260109", r.URL.Query().Get("date"))
		w.Write([]byte(miIndexFixture))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 20)
	date := time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)

	batch := client.Settlement(context.Background(), date)
	require.Equal(t, contracts.StatusOK, batch.Status)
	assert.Len(t, batch.Skipped, 1)

	bySymbol := recordsBySymbol(batch.Records)
	up := bySymbol["2324"]
	assert.True(t, up.Change.Equal(decimal.RequireFromString("0.5")))
	assert.Equal(t, int64(12345), up.Volume)
	assert.Equal(t, contracts.SourceTWSESettlement, up.Source)

	down := bySymbol["3706"]
	assert.True(t, down.Change.Equal(decimal.RequireFromString("-2")))
	assert.Equal(t, int64(2500), down.Volume)
	assert.InDelta(t, -4.0, down.ChangePct, 1e-9)

	assert.Equal(t, int64(0), bySymbol["8210"].Volume)
	assert.NotContains(t, bySymbol, "2329")
}

func TestParseSettlementClosedMarket(t *testing.T) {
	batch := parseSettlement(tableResponse{Stat: "很抱歉，沒有符合條件的資料!"})
	assert.Equal(t, contracts.StatusEmpty, batch.Status)
}

type memoryCache struct {
	data map[string][]contracts.QuoteRecord
	sets int
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	v, ok := m.data[key]
	if !ok {
		return false, nil
	}
	*(dest.(*[]contracts.QuoteRecord)) = v
	return true, nil
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.data[key] = value.([]contracts.QuoteRecord)
	m.sets++
	return nil
}

func TestSettlementUsesCache(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(miIndexFixture))
	}))
	defer server.Close()

	cache := &memoryCache{data: map[string][]contracts.QuoteRecord{}}
	client := newTestClient(t, server.URL, 20).WithCache(cache)
	date := time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)

	first := client.Settlement(context.Background(), date)
	second := client.Settlement(context.Background(), date)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, len(first.Records), len(second.Records))
	assert.Contains(t, cache.data, "settlement:twse:20260109")
}

func TestFlows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rwd/zh/fund/T86", r.URL.Path)
		w.Write([]byte(`{"stat":"OK","fields":[],"data":[
			["2324  ","仁寶","0","0","1,234,000","0","0","0","0","0","-12,500","0"],
			["3706","神達","0","0","-600,000","0","0","0","0","0","0","0"],
			["2329","華泰","0","0","--","0","0","0","0","0","0","0"],
			["9999","短列"]
		]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 20)
	batch := client.Flows(context.Background(), time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC))

	require.Equal(t, contracts.StatusOK, batch.Status)
	assert.Len(t, batch.Records, 2)
	assert.Len(t, batch.Skipped, 2)

	flows := map[string]contracts.FlowRecord{}
	for _, r := range batch.Records {
		flows[r.Symbol] = r
	}
	assert.Equal(t, contracts.FlowRecord{Symbol: "2324", ForeignNet: 1234, TrustNet: -13}, flows["2324"])
	assert.Equal(t, contracts.FlowRecord{Symbol: "3706", ForeignNet: -600, TrustNet: 0}, flows["3706"])
}

func TestFlowsFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 20)
	batch := client.Flows(context.Background(), time.Now())
	assert.Equal(t, contracts.StatusFailed, batch.Status)
}
