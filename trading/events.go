package trading

import (
	"github.com/rustyeddy/papertrade/ledger"
	"github.com/rustyeddy/papertrade/market"
)

// TickEvent is pushed to attached broadcasters after every tick so UI
// clients can render live price and portfolio updates.
type TickEvent struct {
	Type      string           `json:"type"`
	Symbol    market.Symbol    `json:"symbol"`
	Price     float64          `json:"price"`
	Quote     *market.Quote    `json:"quote,omitempty"`
	Candle    *market.Candle   `json:"candle,omitempty"`
	Portfolio *ledger.Snapshot `json:"portfolio,omitempty"`
}

// Broadcaster pushes tick events to interested clients. Implementations
// must not block; the session treats broadcasting as fire-and-forget.
type Broadcaster interface {
	BroadcastTick(TickEvent)
}
