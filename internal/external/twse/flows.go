package twse

import (
	"context"
	"fmt"
	"time"

	"github.com/taichungmao-blip/CB-Monitor/internal/contracts"
	"github.com/taichungmao-blip/CB-Monitor/internal/external/exchange"
)

// T86 三大法人買賣超日報欄位 (股)
const (
	colForeignNet = 4  // 外陸資買賣超股數(不含外資自營商)
	colTrustNet   = 10 // 投信買賣超股數
)

// Flows fetches the listed-market institutional flow table for date
func (c *Client) Flows(ctx context.Context, date time.Time) contracts.FlowBatch {
	url := fmt.Sprintf("%s/rwd/zh/fund/T86?date=%s&selectType=ALLBUT0999&response=json&_=%d",
		c.baseURL, date.Format("20060102"), time.Now().Unix())

	var resp tableResponse
	if err := c.httpClient.GetJSON(ctx, url, nil, &resp); err != nil {
		c.logger.WithError(err).Warn("TWSE T86 fetch failed")
		return contracts.FailedFlowBatch(contracts.FlowSourceTWSE, err)
	}

	batch := parseT86(resp)
	c.logger.WithFields(map[string]interface{}{
		"status":  batch.Status,
		"records": len(batch.Records),
		"skipped": len(batch.Skipped),
	}).Info("TWSE T86 parsed")
	return batch
}

func parseT86(resp tableResponse) contracts.FlowBatch {
	batch := contracts.FlowBatch{Source: contracts.FlowSourceTWSE}
	if !resp.ok() {
		batch.Finalize()
		return batch
	}

	for _, row := range resp.Data {
		rec, err := parseT86Row(row)
		if err != nil {
			batch.Skipped = append(batch.Skipped, contracts.RowError{Symbol: row.Symbol(), Err: err})
			continue
		}
		batch.Records = append(batch.Records, rec)
	}

	batch.Finalize()
	return batch
}

func parseT86Row(row exchange.Row) (contracts.FlowRecord, error) {
	symbol := row.Symbol()
	if symbol == "" {
		return contracts.FlowRecord{}, fmt.Errorf("empty symbol")
	}
	foreign, err := row.Int(colForeignNet)
	if err != nil {
		return contracts.FlowRecord{}, err
	}
	trust, err := row.Int(colTrustNet)
	if err != nil {
		return contracts.FlowRecord{}, err
	}
	return contracts.FlowRecord{
		Symbol:     symbol,
		ForeignNet: contracts.SharesToLots(foreign),
		TrustNet:   contracts.SharesToLots(trust),
	}, nil
}
