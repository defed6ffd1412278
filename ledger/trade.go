package ledger

import (
	"time"

	"github.com/rustyeddy/papertrade/market"
)

type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Trade is an immutable record of one executed fill. RealizedPnL is
// present only on sells.
type Trade struct {
	ID          string        `json:"id"`
	Symbol      market.Symbol `json:"asset"`
	Side        Side          `json:"side"`
	Quantity    float64       `json:"quantity"`
	Price       float64       `json:"price"`
	Total       float64       `json:"total"`
	Time        time.Time     `json:"timestamp"`
	RealizedPnL *float64      `json:"realizedPnL,omitempty"`
}

// Recorder receives executed trades as a side effect of ledger
// operations. A recording failure never rolls back the in-memory
// mutation that produced the trade.
type Recorder interface {
	Record(Trade) error
}
