package market

import (
	"context"
	"time"
)

// Quote is a point-in-time price observation for an asset.
// Stale marks a quote served from a last-known-good cache after the
// upstream feed failed; callers decide whether to display staleness.
type Quote struct {
	Symbol           Symbol    `json:"symbol"`
	Price            float64   `json:"price"`
	Change24h        float64   `json:"change24h"`
	ChangePercent24h float64   `json:"changePercent24h"`
	Time             time.Time `json:"time"`
	Stale            bool      `json:"stale,omitempty"`
}

type PriceSource interface {
	GetQuote(ctx context.Context, symbol Symbol) (Quote, error)
}

type CandleSource interface {
	GetCandles(ctx context.Context, symbol Symbol, days int) ([]Candle, error)
}
