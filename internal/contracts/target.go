package contracts

import "time"

// Strategy selects which classifier branch applies to a target
type Strategy string

const (
	StrategySTD    Strategy = "STD"    // 一般 CB：轉換價重設/定價
	StrategyECB    Strategy = "ECB"    // 海外可轉債，外資避險
	StrategyENT    Strategy = "ENT"    // 特殊題材，只看籌碼波動
	StrategyPRICED Strategy = "PRICED" // 已定價，等待掛牌
)

// Market is the exchange segment a symbol trades on
type Market string

const (
	MarketTSE Market = "tse" // 上市
	MarketOTC Market = "otc" // 上櫃
)

// DefaultThreshold is the material net-flow magnitude (lots) when a target sets none
const DefaultThreshold = 500

// Target is one watchlist entry. Immutable for the run.
type Target struct {
	Symbol        string    `json:"symbol"`
	Name          string    `json:"name"`
	EffectiveDate time.Time `json:"effective_date"`
	Strategy      Strategy  `json:"strategy"`
	Threshold     int64     `json:"threshold"`
	Market        Market    `json:"market"`
}

// EffectiveThreshold returns the threshold, falling back to DefaultThreshold
func (t Target) EffectiveThreshold() int64 {
	return ResolveThreshold(t.Threshold)
}

// ResolveThreshold maps an unset (non-positive) threshold to DefaultThreshold
func ResolveThreshold(threshold int64) int64 {
	if threshold <= 0 {
		return DefaultThreshold
	}
	return threshold
}
