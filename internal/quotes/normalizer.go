// Package quotes merges the low-latency MIS snapshot with the authoritative
// settlement tables into one quote per symbol.
package quotes

import (
	"context"
	"time"

	"github.com/taichungmao-blip/CB-Monitor/internal/contracts"
	"github.com/taichungmao-blip/CB-Monitor/pkg/logger"
)

// SnapshotSource returns near-real-time quotes for a set of targets
type SnapshotSource interface {
	Snapshot(ctx context.Context, targets []contracts.Target) contracts.QuoteBatch
}

// SettlementSource returns one market's end-of-day closing table
type SettlementSource interface {
	Settlement(ctx context.Context, date time.Time) contracts.QuoteBatch
}

// Normalizer builds the per-run quote map
type Normalizer struct {
	snapshot    SnapshotSource
	settlements []SettlementSource
	logger      *logger.Logger
}

// NewNormalizer creates a normalizer. Settlement sources are consulted in order.
func NewNormalizer(snapshot SnapshotSource, log *logger.Logger, settlements ...SettlementSource) *Normalizer {
	return &Normalizer{
		snapshot:    snapshot,
		settlements: settlements,
		logger:      log.WithField("module", "quotes"),
	}
}

// Normalize returns a quote for every target that any source covers.
// Settlement tables are only fetched when authoritative is true.
func (n *Normalizer) Normalize(ctx context.Context, targets []contracts.Target, reference time.Time, authoritative bool) map[string]contracts.QuoteRecord {
	base := n.snapshot.Snapshot(ctx, targets)
	n.logBatch(base)

	var overlays []contracts.QuoteBatch
	if authoritative {
		for _, src := range n.settlements {
			batch := src.Settlement(ctx, reference)
			n.logBatch(batch)
			overlays = append(overlays, batch)
		}
	}

	merged := Merge(base, overlays...)

	out := make(map[string]contracts.QuoteRecord, len(targets))
	for _, t := range targets {
		if q, ok := merged[t.Symbol]; ok {
			out[t.Symbol] = q
		}
	}

	n.logger.WithFields(map[string]interface{}{
		"targets":       len(targets),
		"covered":       len(out),
		"authoritative": authoritative,
	}).Info("Quotes normalized")
	return out
}

// Merge starts from base and overlays every record of each overlay batch.
// An overlay record always replaces the base record for its symbol; symbols
// an overlay lacks keep the base record. Failed batches contribute nothing.
// ⭐ SSOT: 官方結算表優先，MIS 只當備援
func Merge(base contracts.QuoteBatch, overlays ...contracts.QuoteBatch) map[string]contracts.QuoteRecord {
	out := make(map[string]contracts.QuoteRecord)
	apply := func(b contracts.QuoteBatch) {
		if b.Status == contracts.StatusFailed {
			return
		}
		for _, r := range b.Records {
			out[r.Symbol] = r
		}
	}

	apply(base)
	for _, o := range overlays {
		apply(o)
	}
	return out
}

func (n *Normalizer) logBatch(b contracts.QuoteBatch) {
	fields := map[string]interface{}{
		"source":  b.Source,
		"status":  b.Status,
		"records": len(b.Records),
		"skipped": len(b.Skipped),
	}
	if b.Err != nil {
		n.logger.WithFields(fields).WithError(b.Err).Warn("Quote source failed")
		return
	}
	n.logger.WithFields(fields).Debug("Quote source loaded")
}
