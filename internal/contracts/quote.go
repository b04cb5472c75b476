package contracts

import "github.com/shopspring/decimal"

// QuoteSource identifies the feed that produced a QuoteRecord
type QuoteSource string

const (
	SourceMIS            QuoteSource = "MIS"  // 盤中即時快照
	SourceTWSESettlement QuoteSource = "TWSE" // 上市盤後結算表
	SourceTPExSettlement QuoteSource = "TPEX" // 上櫃盤後結算表
)

// Authoritative reports whether the source is an end-of-day settlement table
func (s QuoteSource) Authoritative() bool {
	return s == SourceTWSESettlement || s == SourceTPExSettlement
}

// QuoteRecord is the canonical per-symbol price record for one run
type QuoteRecord struct {
	Symbol    string          `json:"symbol"`
	Close     decimal.Decimal `json:"close"`
	Change    decimal.Decimal `json:"change"`
	ChangePct float64         `json:"change_pct"`
	Volume    int64           `json:"volume"` // 張
	Source    QuoteSource     `json:"source"`
}

// NewQuoteRecord builds a record from close and change, deriving ChangePct
// against the previous close (close - change). A zero previous close yields 0.
func NewQuoteRecord(symbol string, close, change decimal.Decimal, volumeLots int64, source QuoteSource) QuoteRecord {
	return QuoteRecord{
		Symbol:    symbol,
		Close:     close,
		Change:    change,
		ChangePct: ChangePct(change, close.Sub(change)),
		Volume:    volumeLots,
		Source:    source,
	}
}

// ChangePct returns change / prevClose * 100, or 0 when prevClose is zero
func ChangePct(change, prevClose decimal.Decimal) float64 {
	if prevClose.IsZero() {
		return 0
	}
	pct, _ := change.Div(prevClose).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}
