package synth

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/rustyeddy/papertrade/market"
)

const (
	// Baseline is the price the session starts at and mean-reverts
	// toward.
	Baseline = 100

	// Floor keeps the price strictly positive no matter how large a
	// downward move the noise term produces.
	Floor = 1

	backfillCandles = 50
	stepsPerCandle  = 4
)

// Session is one synthetic market: a bounded random walk with trend,
// momentum and mean-reversion terms, emitting OHLC candles into a
// rolling window. Each session is independent; callers own the handle
// and there is no shared process-wide state.
type Session struct {
	mu       sync.Mutex
	price    float64
	trend    float64 // [-1, 1]
	momentum float64
	window   *market.Window

	rng *rand.Rand
	now func() time.Time
}

type Option func(*Session)

// WithRand supplies the random source, for deterministic tests.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) { s.rng = rng }
}

// WithClock supplies the candle timestamp source.
func WithClock(fn func() time.Time) Option {
	return func(s *Session) { s.now = fn }
}

func NewSession(opts ...Option) *Session {
	s := &Session{
		price:  Baseline,
		window: market.NewWindow(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return s
}

// gaussian draws a standard-normal sample via the Box-Muller transform.
func (s *Session) gaussian() float64 {
	u1 := s.rng.Float64()
	for u1 == 0 {
		u1 = s.rng.Float64()
	}
	u2 := s.rng.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// NextPrice advances the walk by one tick and returns the new price.
// This is the only state-mutating primitive; candles and backfill
// compose it.
func (s *Session) NextPrice(mode Mode) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextPriceLocked(mode)
}

func (s *Session) nextPriceLocked(mode Mode) float64 {
	p := modeParams[mode]

	noise := s.gaussian() * p.Volatility * p.NoiseLevel

	// Trend decays toward zero and drifts; it tends to keep its sign
	// across neighboring ticks, which is what gives runs their shape.
	s.trend = clamp(s.trend*0.95+(s.rng.Float64()-0.5)*0.2, -1, 1)
	trendMove := s.trend * p.Volatility * p.TrendStrength

	pull := (Baseline - s.price) / Baseline * p.MeanReversion

	momentumMove := s.momentum * 0.1

	change := s.price * (noise + trendMove + pull + momentumMove)

	s.momentum = s.momentum*0.9 + change/s.price

	s.price = math.Max(Floor, s.price+change)
	return s.price
}

// NextCandle advances the walk through one candle interval and appends
// the result to the rolling window.
func (s *Session) NextCandle(mode Mode) market.Candle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.candleLocked(mode, s.now())
}

func (s *Session) candleLocked(mode Mode, ts time.Time) market.Candle {
	open := s.price
	high, low := open, open

	for i := 0; i < stepsPerCandle; i++ {
		p := s.nextPriceLocked(mode)
		if p > high {
			high = p
		}
		if p < low {
			low = p
		}
	}

	c := market.Candle{
		Time:   ts,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  s.price,
		Volume: float64(s.rng.Intn(1000000) + 100000),
	}
	s.window.Push(c)
	return c
}

// InitializeSession resets the walk to the baseline, picks a small
// random initial trend, and backfills the candle window with 50 medium
// candles spaced one minute apart ending at the current time. This
// seeds a chart history before the first trade. It is also the reset
// path: calling it again discards the previous walk entirely.
func (s *Session) InitializeSession() []market.Candle {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.price = Baseline
	s.trend = (s.rng.Float64() - 0.5) * 0.4
	s.momentum = 0
	s.window.Clear()

	now := s.now()
	for i := 0; i < backfillCandles; i++ {
		ts := now.Add(time.Duration(i-backfillCandles+1) * time.Minute)
		s.candleLocked(Medium, ts)
	}

	return s.window.Candles()
}

// State is the generator's observable market state.
type State struct {
	Price            float64
	Candles          []market.Candle
	Change24h        float64
	ChangePercent24h float64
}

// State reports the current price and candle history. The "24h" change
// is measured against the open of the oldest retained candle, not a
// true calendar lookback; the window is the session's entire memory.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	ref := float64(Baseline)
	if oldest, ok := s.window.Oldest(); ok {
		ref = oldest.Open
	}

	st := State{
		Price:     s.price,
		Candles:   s.window.Candles(),
		Change24h: s.price - ref,
	}
	if ref != 0 {
		st.ChangePercent24h = st.Change24h / ref * 100
	}
	return st
}

// Price returns the current walk price.
func (s *Session) Price() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.price
}

// Momentum returns the accumulated momentum term.
func (s *Session) Momentum() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.momentum
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
