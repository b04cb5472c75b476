package twse

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/taichungmao-blip/CB-Monitor/internal/contracts"
	"github.com/taichungmao-blip/CB-Monitor/internal/external/exchange"
)

const misLandingPath = "/stock/fibest.jsp?lang=zh_tw"

// misResponse is the getStockInfo.jsp payload
type misResponse struct {
	MsgArray  []misQuote `json:"msgArray"`
	RtCode    string     `json:"rtcode"`
	RtMessage string     `json:"rtmessage"`
}

// misQuote is one MIS quote row. Unused fields are dropped.
type misQuote struct {
	Code   string `json:"c"` // 代號
	Trade  string `json:"z"` // 最近成交價，"-" 表示尚無成交
	Prev   string `json:"y"` // 昨收
	Volume string `json:"v"` // 累積成交量 (張)
}

// Snapshot fetches the MIS low-latency quotes for targets across both markets.
// Queries are split into batches to stay under the upstream query-length limit.
func (c *Client) Snapshot(ctx context.Context, targets []contracts.Target) contracts.QuoteBatch {
	batch := contracts.QuoteBatch{Source: contracts.SourceMIS}
	if len(targets) == 0 {
		batch.Finalize()
		return batch
	}

	landing := c.misURL + misLandingPath
	if err := c.httpClient.Warm(ctx, landing); err != nil {
		c.logger.WithError(err).Debug("MIS warm-up failed")
	}

	headers := http.Header{}
	headers.Set("Referer", landing)

	var errs []error
	for _, chunk := range chunkKeys(misKeys(targets), c.batchSize) {
		var resp misResponse
		if err := c.httpClient.GetJSON(ctx, c.misQueryURL(chunk), headers, &resp); err != nil {
			c.logger.WithFields(map[string]interface{}{
				"keys":  len(chunk),
				"error": err.Error(),
			}).Warn("MIS batch failed")
			errs = append(errs, err)
			continue
		}

		records, skipped := parseMIS(resp)
		batch.Records = append(batch.Records, records...)
		batch.Skipped = append(batch.Skipped, skipped...)
	}

	if len(batch.Records) == 0 && len(errs) > 0 {
		return contracts.FailedQuoteBatch(contracts.SourceMIS, errors.Join(errs...))
	}

	batch.Finalize()
	c.logger.WithFields(map[string]interface{}{
		"records": len(batch.Records),
		"skipped": len(batch.Skipped),
	}).Debug("MIS snapshot parsed")
	return batch
}

func (c *Client) misQueryURL(keys []string) string {
	q := url.Values{}
	q.Set("ex_ch", strings.Join(keys, "|"))
	q.Set("json", "1")
	q.Set("delay", "0")
	q.Set("_", fmt.Sprintf("%d", time.Now().UnixMilli()))
	return c.misURL + "/stock/api/getStockInfo.jsp?" + q.Encode()
}

// misKeys builds "<mkt>_<id>.tw" channel keys
func misKeys(targets []contracts.Target) []string {
	keys := make([]string, 0, len(targets))
	for _, t := range targets {
		keys = append(keys, fmt.Sprintf("%s_%s.tw", t.Market, t.Symbol))
	}
	return keys
}

func chunkKeys(keys []string, size int) [][]string {
	if size <= 0 {
		size = len(keys)
	}
	var out [][]string
	for start := 0; start < len(keys); start += size {
		end := start + size
		if end > len(keys) {
			end = len(keys)
		}
		out = append(out, keys[start:end])
	}
	return out
}

// parseMIS converts MIS rows. Without a trade price the previous close is
// used with zero change; rows with neither are skipped.
func parseMIS(resp misResponse) ([]contracts.QuoteRecord, []contracts.RowError) {
	var (
		records []contracts.QuoteRecord
		skipped []contracts.RowError
	)

	for _, q := range resp.MsgArray {
		symbol := strings.TrimSpace(q.Code)
		if symbol == "" {
			continue
		}

		prev, prevErr := exchange.ParseDecimal(q.Prev)
		volume, err := exchange.ParseInt(q.Volume)
		if err != nil {
			volume = 0
		}

		if q.Trade == "" || q.Trade == "-" {
			if prevErr != nil {
				skipped = append(skipped, contracts.RowError{Symbol: symbol, Err: fmt.Errorf("no trade and no previous close")})
				continue
			}
			records = append(records, contracts.NewQuoteRecord(symbol, prev, decimal.Zero, volume, contracts.SourceMIS))
			continue
		}

		price, err := exchange.ParseDecimal(q.Trade)
		if err != nil {
			skipped = append(skipped, contracts.RowError{Symbol: symbol, Err: err})
			continue
		}
		if prevErr != nil {
			skipped = append(skipped, contracts.RowError{Symbol: symbol, Err: prevErr})
			continue
		}

		records = append(records, contracts.NewQuoteRecord(symbol, price, price.Sub(prev), volume, contracts.SourceMIS))
	}

	return records, skipped
}
