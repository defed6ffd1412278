package market

import "time"

// Candle represents OHLC (Open, High, Low, Close) candlestick data
// for one discretized price interval.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume,omitempty"`
}
