package twse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/taichungmao-blip/CB-Monitor/internal/contracts"
	"github.com/taichungmao-blip/CB-Monitor/internal/external/exchange"
	"github.com/taichungmao-blip/CB-Monitor/pkg/redis"
)

// MI_INDEX 收盤行情表欄位
const (
	colSymbol = 0
	colVolume = 2 // 成交股數
	colClose  = 8
	colSign   = 9 // 漲跌(+/-)，HTML 片段
	colChange = 10

	closeField = "收盤價"
)

// Settlement fetches the authoritative listed-market closing table for date.
// Published tables are immutable, so OK results are cached when a cache is set.
func (c *Client) Settlement(ctx context.Context, date time.Time) contracts.QuoteBatch {
	key := redis.SettlementKey("twse", date)
	if c.cache != nil {
		var cached []contracts.QuoteRecord
		hit, err := c.cache.Get(ctx, key, &cached)
		if err != nil {
			c.logger.WithError(err).Warn("Settlement cache read failed")
		}
		if hit && len(cached) > 0 {
			c.logger.WithField("key", key).Debug("Settlement cache hit")
			batch := contracts.QuoteBatch{Source: contracts.SourceTWSESettlement, Records: cached}
			batch.Finalize()
			return batch
		}
	}

	url := fmt.Sprintf("%s/rwd/zh/afterTrading/MI_INDEX?date=%s&type=ALLBUT0999&response=json",
		c.baseURL, date.Format("20060102"))

	var resp tableResponse
	if err := c.httpClient.GetJSON(ctx, url, nil, &resp); err != nil {
		c.logger.WithError(err).Warn("TWSE settlement fetch failed")
		return contracts.FailedQuoteBatch(contracts.SourceTWSESettlement, err)
	}

	batch := parseSettlement(resp)
	if batch.Status == contracts.StatusOK && c.cache != nil {
		if err := c.cache.Set(ctx, key, batch.Records, redis.TTLSettlement); err != nil {
			c.logger.WithError(err).Warn("Settlement cache write failed")
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"status":  batch.Status,
		"records": len(batch.Records),
		"skipped": len(batch.Skipped),
	}).Info("TWSE settlement parsed")
	return batch
}

// parseSettlement picks the table carrying 收盤價 and converts its rows
func parseSettlement(resp tableResponse) contracts.QuoteBatch {
	batch := contracts.QuoteBatch{Source: contracts.SourceTWSESettlement}
	if !resp.ok() {
		batch.Finalize()
		return batch
	}

	var rows []exchange.Row
	for _, t := range resp.Tables {
		if containsField(t.Fields, closeField) {
			rows = t.Data
			break
		}
	}

	for _, row := range rows {
		rec, err := parseSettlementRow(row)
		if err != nil {
			batch.Skipped = append(batch.Skipped, contracts.RowError{Symbol: row.Symbol(), Err: err})
			continue
		}
		batch.Records = append(batch.Records, rec)
	}

	batch.Finalize()
	return batch
}

func parseSettlementRow(row exchange.Row) (contracts.QuoteRecord, error) {
	symbol := row.Symbol()
	if symbol == "" {
		return contracts.QuoteRecord{}, fmt.Errorf("empty symbol")
	}

	closePrice, err := row.Decimal(colClose)
	if err != nil {
		return contracts.QuoteRecord{}, err
	}
	change, err := row.Decimal(colChange)
	if err != nil {
		return contracts.QuoteRecord{}, err
	}
	marker, err := row.Cell(colSign)
	if err != nil {
		return contracts.QuoteRecord{}, err
	}
	if isDownMarker(marker) {
		change = change.Abs().Neg()
	}
	shares, err := row.Int(colVolume)
	if err != nil {
		return contracts.QuoteRecord{}, err
	}

	return contracts.NewQuoteRecord(symbol, closePrice, change, contracts.SharesToLots(shares), contracts.SourceTWSESettlement), nil
}

// isDownMarker reports a green or minus direction marker
func isDownMarker(marker string) bool {
	return strings.Contains(marker, "green") || strings.Contains(marker, "-")
}

func containsField(fields []string, name string) bool {
	for _, f := range fields {
		if strings.Contains(f, name) {
			return true
		}
	}
	return false
}
