package tpex

import (
	"context"
	"fmt"
	"time"

	"github.com/taichungmao-blip/CB-Monitor/internal/contracts"
	"github.com/taichungmao-blip/CB-Monitor/internal/external/exchange"
	"github.com/taichungmao-blip/CB-Monitor/internal/phase"
	"github.com/taichungmao-blip/CB-Monitor/pkg/redis"
)

// 上櫃股票每日收盤行情欄位
const (
	colSymbol = 0
	colClose  = 2
	colChange = 3 // 帶正負號
	colVolume = 8 // 成交股數
)

// Settlement fetches the authoritative OTC closing table for date
func (c *Client) Settlement(ctx context.Context, date time.Time) contracts.QuoteBatch {
	key := redis.SettlementKey("tpex", date)
	if c.cache != nil {
		var cached []contracts.QuoteRecord
		hit, err := c.cache.Get(ctx, key, &cached)
		if err != nil {
			c.logger.WithError(err).Warn("Settlement cache read failed")
		}
		if hit && len(cached) > 0 {
			c.logger.WithField("key", key).Debug("Settlement cache hit")
			batch := contracts.QuoteBatch{Source: contracts.SourceTPExSettlement, Records: cached}
			batch.Finalize()
			return batch
		}
	}

	url := fmt.Sprintf("%s/web/stock/aftertrading/daily_close_quotes/stk_quote_result.php?l=zh-tw&o=json&d=%s&s=0,asc,0",
		c.baseURL, phase.ROCDate(date))

	var resp tableResponse
	if err := c.httpClient.GetJSON(ctx, url, nil, &resp); err != nil {
		c.logger.WithError(err).Warn("TPEx settlement fetch failed")
		return contracts.FailedQuoteBatch(contracts.SourceTPExSettlement, err)
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
	}).Info("TPEx settlement parsed")
	return batch
}

func parseSettlement(resp tableResponse) contracts.QuoteBatch {
	batch := contracts.QuoteBatch{Source: contracts.SourceTPExSettlement}
	for _, row := range resp.rows() {
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
	shares, err := row.Int(colVolume)
	if err != nil {
		return contracts.QuoteRecord{}, err
	}
	return contracts.NewQuoteRecord(symbol, closePrice, change, contracts.SharesToLots(shares), contracts.SourceTPExSettlement), nil
}
