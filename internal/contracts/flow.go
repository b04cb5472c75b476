package contracts

// SharesPerLot is the size of one round lot (張)
const SharesPerLot = 1000

// FlowRecord is the institutional net flow of one symbol, in round lots
type FlowRecord struct {
	Symbol     string `json:"symbol"`
	ForeignNet int64  `json:"foreign_net"` // 外資買賣超
	TrustNet   int64  `json:"trust_net"`   // 投信買賣超
}

// SharesToLots converts a raw share count to round lots with floor division,
// so -1500 shares is -2 lots.
func SharesToLots(shares int64) int64 {
	q := shares / SharesPerLot
	if shares%SharesPerLot != 0 && shares < 0 {
		q--
	}
	return q
}
