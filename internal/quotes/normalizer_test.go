package quotes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/taichungmao-blip/CB-Monitor/internal/contracts"
	"github.com/taichungmao-blip/CB-Monitor/pkg/logger"
)

func quote(symbol, close string, source contracts.QuoteSource) contracts.QuoteRecord {
	return contracts.NewQuoteRecord(symbol, decimal.RequireFromString(close), decimal.Zero, 10, source)
}

func batch(source contracts.QuoteSource, records ...contracts.QuoteRecord) contracts.QuoteBatch {
	b := contracts.QuoteBatch{Source: source, Records: records}
	b.Finalize()
	return b
}

type fakeSnapshot struct {
	batch contracts.QuoteBatch
	calls int
}

func (f *fakeSnapshot) Snapshot(_ context.Context, _ []contracts.Target) contracts.QuoteBatch {
	f.calls++
	return f.batch
}

type fakeSettlement struct {
	batch contracts.QuoteBatch
	calls int
	date  time.Time
}

func (f *fakeSettlement) Settlement(_ context.Context, date time.Time) contracts.QuoteBatch {
	f.calls++
	f.date = date
	return f.batch
}

func TestMergeAuthoritativeWins(t *testing.T) {
	base := batch(contracts.SourceMIS,
		quote("2324", "31.5", contracts.SourceMIS),
		quote("2745", "100", contracts.SourceMIS),
	)
	overlay := batch(contracts.SourceTPExSettlement,
		quote("2745", "106", contracts.SourceTPExSettlement),
		quote("9999", "1", contracts.SourceTPExSettlement),
	)

	got := Merge(base, overlay)

	assert.Equal(t, overlay.Records[0], got["2745"])
	assert.Equal(t, base.Records[0], got["2324"])
	assert.Contains(t, got, "9999")
}

func TestMergeIgnoresFailedOverlay(t *testing.T) {
	base := batch(contracts.SourceMIS, quote("2324", "31.5", contracts.SourceMIS))
	failed := contracts.FailedQuoteBatch(contracts.SourceTWSESettlement, errors.New("timeout"))

	got := Merge(base, failed)
	assert.Equal(t, base.Records[0], got["2324"])
}

func TestMergeEmptyBaseStillUsesOverlay(t *testing.T) {
	base := contracts.FailedQuoteBatch(contracts.SourceMIS, errors.New("down"))
	overlay := batch(contracts.SourceTWSESettlement, quote("2324", "32", contracts.SourceTWSESettlement))

	got := Merge(base, overlay)
	assert.Equal(t, contracts.SourceTWSESettlement, got["2324"].Source)
}

func TestNormalizeIntradaySkipsSettlement(t *testing.T) {
	snap := &fakeSnapshot{batch: batch(contracts.SourceMIS, quote("2324", "31.5", contracts.SourceMIS))}
	twse := &fakeSettlement{batch: batch(contracts.SourceTWSESettlement, quote("2324", "32", contracts.SourceTWSESettlement))}

	n := NewNormalizer(snap, logger.Nop(), twse)
	targets := []contracts.Target{{Symbol: "2324"}, {Symbol: "6894"}}

	got := n.Normalize(context.Background(), targets, time.Now(), false)

	assert.Equal(t, 0, twse.calls)
	assert.Equal(t, contracts.SourceMIS, got["2324"].Source)
	assert.NotContains(t, got, "6894")
}

func TestNormalizeAfterCutoffOverlaysAndFilters(t *testing.T) {
	snap := &fakeSnapshot{batch: batch(contracts.SourceMIS,
		quote("2324", "31.5", contracts.SourceMIS),
		quote("6894", "88", contracts.SourceMIS),
	)}
	twse := &fakeSettlement{batch: batch(contracts.SourceTWSESettlement,
		quote("2324", "32", contracts.SourceTWSESettlement),
		quote("1101", "40", contracts.SourceTWSESettlement),
	)}
	tpex := &fakeSettlement{batch: contracts.FailedQuoteBatch(contracts.SourceTPExSettlement, errors.New("403"))}

	reference := time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)
	n := NewNormalizer(snap, logger.Nop(), twse, tpex)
	targets := []contracts.Target{{Symbol: "2324"}, {Symbol: "6894"}}

	got := n.Normalize(context.Background(), targets, reference, true)

	assert.Equal(t, 1, twse.calls)
	assert.Equal(t, 1, tpex.calls)
	assert.Equal(t, reference, twse.date)
	assert.Len(t, got, 2)
	assert.True(t, got["2324"].Close.Equal(decimal.RequireFromString("32")))
	assert.Equal(t, contracts.SourceMIS, got["6894"].Source)
	assert.NotContains(t, got, "1101")
}
