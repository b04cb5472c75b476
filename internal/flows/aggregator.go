// Package flows merges the per-market institutional flow tables.
package flows

import (
	"context"
	"time"

	"github.com/taichungmao-blip/CB-Monitor/internal/contracts"
	"github.com/taichungmao-blip/CB-Monitor/pkg/logger"
)

// Source returns one market's institutional flow table
type Source interface {
	Flows(ctx context.Context, date time.Time) contracts.FlowBatch
}

// Aggregator fetches every source once and unions the results
type Aggregator struct {
	sources []Source
	logger  *logger.Logger
}

// NewAggregator creates an aggregator over sources, fetched in order
func NewAggregator(log *logger.Logger, sources ...Source) *Aggregator {
	return &Aggregator{
		sources: sources,
		logger:  log.WithField("module", "flows"),
	}
}

// Aggregate returns the union of every source's records for date.
// An empty result means no market published flows (holiday or weekend).
func (a *Aggregator) Aggregate(ctx context.Context, date time.Time) map[string]contracts.FlowRecord {
	batches := make([]contracts.FlowBatch, 0, len(a.sources))
	for _, src := range a.sources {
		b := src.Flows(ctx, date)
		fields := map[string]interface{}{
			"source":  b.Source,
			"status":  b.Status,
			"records": len(b.Records),
			"skipped": len(b.Skipped),
		}
		if b.Err != nil {
			a.logger.WithFields(fields).WithError(b.Err).Warn("Flow source failed")
		} else {
			a.logger.WithFields(fields).Debug("Flow source loaded")
		}
		batches = append(batches, b)
	}

	out := Union(batches...)
	a.logger.WithField("symbols", len(out)).Info("Flows aggregated")
	return out
}

// Union merges batches keyed by symbol. The market tables cover disjoint
// symbols; if a symbol repeats, the later batch wins.
func Union(batches ...contracts.FlowBatch) map[string]contracts.FlowRecord {
	out := make(map[string]contracts.FlowRecord)
	for _, b := range batches {
		if b.Status == contracts.StatusFailed {
			continue
		}
		for _, r := range b.Records {
			out[r.Symbol] = r
		}
	}
	return out
}

// Lookup returns the flow for symbol. A symbol with no reported flow traded
// without institutional activity, so it reads as zero.
func Lookup(m map[string]contracts.FlowRecord, symbol string) contracts.FlowRecord {
	if r, ok := m[symbol]; ok {
		return r
	}
	return contracts.FlowRecord{Symbol: symbol}
}
