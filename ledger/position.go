package ledger

import "github.com/rustyeddy/papertrade/market"

// Position is an open holding in one asset. AvgBuyPrice is the
// volume-weighted average of all buy fills since the position was last
// fully closed; it never changes on a sell. A position with zero
// quantity is removed from the ledger, not zeroed in place.
type Position struct {
	Symbol       market.Symbol `json:"asset"`
	Quantity     float64       `json:"quantity"`
	AvgBuyPrice  float64       `json:"avgBuyPrice"`
	CurrentPrice float64       `json:"currentPrice"`
}

// MarketValue is the position valued at its last observed price.
func (p Position) MarketValue() float64 {
	return p.Quantity * p.CurrentPrice
}

// UnrealizedPnL is the open profit at the last observed price.
func (p Position) UnrealizedPnL() float64 {
	return (p.CurrentPrice - p.AvgBuyPrice) * p.Quantity
}
