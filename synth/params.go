// synth/params.go
package synth

import "fmt"

// Mode selects how aggressively the synthetic market moves.
type Mode string

const (
	Fast   Mode = "fast"
	Medium Mode = "medium"
	Slow   Mode = "slow"
)

// params are fixed per mode. Fast has the highest volatility and trend
// weight with the weakest mean-reversion pull; slow is the inverse.
type params struct {
	Volatility    float64 // max relative move per tick
	TrendStrength float64 // trend-following weight
	NoiseLevel    float64 // gaussian noise factor
	MeanReversion float64 // pull back toward the baseline
}

var modeParams = map[Mode]params{
	Fast: {
		Volatility:    0.02,
		TrendStrength: 0.6,
		NoiseLevel:    0.4,
		MeanReversion: 0.001,
	},
	Medium: {
		Volatility:    0.015,
		TrendStrength: 0.5,
		NoiseLevel:    0.5,
		MeanReversion: 0.002,
	},
	Slow: {
		Volatility:    0.01,
		TrendStrength: 0.4,
		NoiseLevel:    0.6,
		MeanReversion: 0.003,
	},
}

// ParseMode validates a mode string from config or persisted state.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case Fast, Medium, Slow:
		return Mode(s), nil
	}
	return "", fmt.Errorf("synth: unknown speed mode %q", s)
}
