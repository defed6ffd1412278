package market

// WindowCap is the number of candles retained per session.
const WindowCap = 100

// Window is a bounded rolling candle window. Pushing beyond the cap
// evicts the oldest candle. Candles are kept oldest-first.
type Window struct {
	cap     int
	candles []Candle
}

func NewWindow() *Window {
	return &Window{cap: WindowCap}
}

// NewWindowCap returns a window with a custom capacity, for tests and
// shorter chart histories. A non-positive cap falls back to WindowCap.
func NewWindowCap(n int) *Window {
	if n <= 0 {
		n = WindowCap
	}
	return &Window{cap: n}
}

func (w *Window) Push(c Candle) {
	w.candles = append(w.candles, c)
	if len(w.candles) > w.cap {
		w.candles = w.candles[len(w.candles)-w.cap:]
	}
}

// Candles returns a copy of the retained candles, oldest first.
func (w *Window) Candles() []Candle {
	out := make([]Candle, len(w.candles))
	copy(out, w.candles)
	return out
}

func (w *Window) Len() int { return len(w.candles) }

func (w *Window) Clear() { w.candles = w.candles[:0] }

// Oldest returns the oldest retained candle.
func (w *Window) Oldest() (Candle, bool) {
	if len(w.candles) == 0 {
		return Candle{}, false
	}
	return w.candles[0], true
}

// Latest returns the most recent candle.
func (w *Window) Latest() (Candle, bool) {
	if len(w.candles) == 0 {
		return Candle{}, false
	}
	return w.candles[len(w.candles)-1], true
}

// HighLow returns the extremes over the retained window.
func (w *Window) HighLow() (high, low float64) {
	for i, c := range w.candles {
		if i == 0 {
			high, low = c.High, c.Low
			continue
		}
		if c.High > high {
			high = c.High
		}
		if c.Low < low {
			low = c.Low
		}
	}
	return high, low
}
