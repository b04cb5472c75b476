package tpex

import (
	"context"
	"fmt"
	"time"

	"github.com/taichungmao-blip/CB-Monitor/internal/contracts"
	"github.com/taichungmao-blip/CB-Monitor/internal/external/exchange"
	"github.com/taichungmao-blip/CB-Monitor/internal/phase"
)

// flowSchema is one historical column layout of the 3insti table
type flowSchema struct {
	name    string
	minLen  int
	foreign int // 外資及陸資買賣超股數
	trust   int // 投信買賣超股數
}

// flowSchemas are tried in order. A row is parsed with exactly one schema.
var flowSchemas = []flowSchema{
	{name: "current", minLen: 14, foreign: 10, trust: 13},
	{name: "legacy", minLen: 11, foreign: 7, trust: 10},
}

// Flows fetches the OTC institutional flow table for date
func (c *Client) Flows(ctx context.Context, date time.Time) contracts.FlowBatch {
	c.ensureSession(ctx)

	url := fmt.Sprintf("%s/web/stock/3insti/daily_trade/3itrade_hedge_result.php?l=zh-tw&o=json&se=AL&t=D&d=%s&_=%d",
		c.baseURL, phase.ROCDate(date), time.Now().Unix())

	var resp tableResponse
	if err := c.httpClient.GetJSON(ctx, url, nil, &resp); err != nil {
		c.logger.WithError(err).Warn("TPEx 3insti fetch failed")
		return contracts.FailedFlowBatch(contracts.FlowSourceTPEx, err)
	}

	batch := parseFlows(resp)
	c.logger.WithFields(map[string]interface{}{
		"status":  batch.Status,
		"records": len(batch.Records),
		"skipped": len(batch.Skipped),
	}).Info("TPEx 3insti parsed")
	return batch
}

func parseFlows(resp tableResponse) contracts.FlowBatch {
	batch := contracts.FlowBatch{Source: contracts.FlowSourceTPEx}
	for _, row := range resp.rows() {
		rec, err := parseFlowRow(row)
		if err != nil {
			batch.Skipped = append(batch.Skipped, contracts.RowError{Symbol: row.Symbol(), Err: err})
			continue
		}
		batch.Records = append(batch.Records, rec)
	}
	batch.Finalize()
	return batch
}

// parseFlowRow tries the newest schema first and falls back only when it
// does not apply or fails to parse
func parseFlowRow(row exchange.Row) (contracts.FlowRecord, error) {
	symbol := row.Symbol()
	if symbol == "" {
		return contracts.FlowRecord{}, fmt.Errorf("empty symbol")
	}

	var lastErr error
	for _, s := range flowSchemas {
		if len(row) < s.minLen {
			continue
		}
		rec, err := s.parse(symbol, row)
		if err == nil {
			return rec, nil
		}
		lastErr = fmt.Errorf("%s schema: %w", s.name, err)
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("row length %d matches no schema", len(row))
	}
	return contracts.FlowRecord{}, lastErr
}

func (s flowSchema) parse(symbol string, row exchange.Row) (contracts.FlowRecord, error) {
	foreign, err := row.Int(s.foreign)
	if err != nil {
		return contracts.FlowRecord{}, err
	}
	trust, err := row.Int(s.trust)
	if err != nil {
		return contracts.FlowRecord{}, err
	}
	return contracts.FlowRecord{
		Symbol:     symbol,
		ForeignNet: contracts.SharesToLots(foreign),
		TrustNet:   contracts.SharesToLots(trust),
	}, nil
}
