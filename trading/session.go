// Package trading wires the ledger, journal, synthetic generator,
// price feed and persistence into one user session. All methods are
// synchronous; periodic advancement is driven by an external scheduler
// calling Tick, which tolerates irregular or slower-than-configured
// invocation.
package trading

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/papertrade/journal"
	"github.com/rustyeddy/papertrade/ledger"
	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/store"
	"github.com/rustyeddy/papertrade/synth"
)

// Deps are the session's collaborators. Store and Broadcaster may be
// nil; Prices may be nil for synthetic-only sessions.
type Deps struct {
	Prices      market.PriceSource
	Store       store.Store
	Broadcaster Broadcaster
	Logger      logrus.FieldLogger
}

// Session owns one paper-trading run: a ledger, its journal, a
// synthetic market and the selected asset/speed mode. The in-memory
// state is authoritative; every mutation is followed by a fail-soft
// persist that never rolls back on error.
type Session struct {
	mu sync.Mutex

	ledger *ledger.Ledger
	trades *journal.Log
	synth  *synth.Session

	prices      market.PriceSource
	store       store.Store
	broadcaster Broadcaster
	log         logrus.FieldLogger

	asset       market.Symbol
	mode        synth.Mode
	initialized bool
	synthActive bool

	lastQuote map[market.Symbol]market.Quote
}

func NewSession(deps Deps) *Session {
	log := deps.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	st := deps.Store
	if st == nil {
		st = store.NewMem()
	}

	trades := journal.NewLog()

	return &Session{
		ledger:      ledger.New(trades),
		trades:      trades,
		synth:       synth.NewSession(),
		prices:      deps.Prices,
		store:       store.NewFailSoft(st, log),
		broadcaster: deps.Broadcaster,
		log:         log,
		asset:       market.BTC,
		mode:        synth.Medium,
		lastQuote:   make(map[market.Symbol]market.Quote),
	}
}

// Restore loads persisted session state. Absent or corrupt state
// leaves the session uninitialized with defaults; it never fails.
func (s *Session) Restore() {
	st := store.LoadState(s.store)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.asset = st.SelectedAsset
	s.mode = st.SpeedMode

	if !st.Initialized {
		return
	}
	if err := s.ledger.RestoreSnapshot(st.Portfolio); err != nil {
		s.log.WithError(err).Warn("session: persisted portfolio unusable, starting fresh")
		return
	}

	s.trades.Restore(st.Trades)
	s.initialized = true

	if s.asset.Synthetic() {
		s.synth.InitializeSession()
		s.synthActive = true
	}
}

// Initialize starts a session with the given capital, replacing any
// prior state.
func (s *Session) Initialize(capital float64) error {
	if err := s.ledger.Initialize(capital); err != nil {
		return err
	}

	s.mu.Lock()
	s.trades.Clear()
	s.initialized = true
	s.mu.Unlock()

	s.persist()
	return nil
}

// Initialized reports whether a session is active.
func (s *Session) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Buy executes a purchase at the supplied price and persists the new
// state.
func (s *Session) Buy(symbol market.Symbol, quantity, price float64) (ledger.Trade, error) {
	if !symbol.Valid() {
		return ledger.Trade{}, fmt.Errorf("session: unknown asset %q", symbol)
	}

	trade, err := s.ledger.Buy(symbol, quantity, price)
	if err != nil {
		return ledger.Trade{}, err
	}

	s.persist()
	return trade, nil
}

// Sell executes a sale at the supplied price and persists the new
// state.
func (s *Session) Sell(symbol market.Symbol, quantity, price float64) (ledger.Trade, error) {
	if !symbol.Valid() {
		return ledger.Trade{}, fmt.Errorf("session: unknown asset %q", symbol)
	}

	trade, err := s.ledger.Sell(symbol, quantity, price)
	if err != nil {
		return ledger.Trade{}, err
	}

	s.persist()
	return trade, nil
}

// MarkToMarket revalues positions using the session's current view of
// prices: the synthetic walk for FAKE, last fetched quotes for real
// assets. Assets with no known price keep their last valuation.
func (s *Session) MarkToMarket() ledger.Snapshot {
	return s.ledger.MarkToMarket(s.currentPrices())
}

func (s *Session) currentPrices() map[market.Symbol]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	prices := make(map[market.Symbol]float64, len(s.lastQuote)+1)
	for sym, q := range s.lastQuote {
		prices[sym] = q.Price
	}
	if s.synthActive {
		prices[market.FAKE] = s.synth.Price()
	}
	return prices
}

// SelectAsset switches the asset in view. Selecting the synthetic
// asset for the first time activates its market.
func (s *Session) SelectAsset(symbol market.Symbol) error {
	if !symbol.Valid() {
		return fmt.Errorf("session: unknown asset %q", symbol)
	}

	s.mu.Lock()
	s.asset = symbol
	if symbol.Synthetic() && !s.synthActive {
		s.synth.InitializeSession()
		s.synthActive = true
	}
	s.mu.Unlock()

	s.persist()
	return nil
}

// SelectedAsset returns the asset currently in view.
func (s *Session) SelectedAsset() market.Symbol {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.asset
}

// SetSpeedMode changes how fast the synthetic market moves and how
// often the caller should tick.
func (s *Session) SetSpeedMode(mode synth.Mode) error {
	if _, err := synth.ParseMode(string(mode)); err != nil {
		return err
	}

	s.mu.Lock()
	s.mode = mode
	s.mu.Unlock()

	s.persist()
	return nil
}

// SpeedMode returns the current speed mode.
func (s *Session) SpeedMode() synth.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Interval is the suggested scheduler period for a speed mode. The
// core only requires "no more often than this"; slower or irregular
// ticking is fine.
func Interval(mode synth.Mode) time.Duration {
	switch mode {
	case synth.Fast:
		return time.Second
	case synth.Slow:
		return 6 * time.Second
	default:
		return 3 * time.Second
	}
}

// Tick is one scheduler invocation: advance the market in view, mark
// positions to market, broadcast and persist. Feed failures surface as
// stale quotes, never as errors out of the core.
func (s *Session) Tick(ctx context.Context) ledger.Snapshot {
	s.mu.Lock()
	asset := s.asset
	mode := s.mode
	s.mu.Unlock()

	event := TickEvent{Type: "tick", Symbol: asset}

	if asset.Synthetic() {
		s.mu.Lock()
		if !s.synthActive {
			s.synth.InitializeSession()
			s.synthActive = true
		}
		s.mu.Unlock()

		candle := s.synth.NextCandle(mode)
		st := s.synth.State()
		event.Price = st.Price
		event.Candle = &candle
	} else if s.prices != nil {
		if q, err := s.prices.GetQuote(ctx, asset); err != nil {
			s.log.WithError(err).WithField("asset", asset).Warn("session: no usable quote")
		} else {
			s.mu.Lock()
			s.lastQuote[asset] = q
			s.mu.Unlock()
			event.Price = q.Price
			event.Quote = &q
		}
	}

	snap := s.ledger.MarkToMarket(s.currentPrices())
	event.Portfolio = &snap

	if s.broadcaster != nil {
		s.broadcaster.BroadcastTick(event)
	}

	s.persist()
	return snap
}

// CurrentPrice returns the session's latest view of one asset's price,
// zero when nothing has been observed yet.
func (s *Session) CurrentPrice(symbol market.Symbol) float64 {
	if symbol.Synthetic() {
		s.mu.Lock()
		active := s.synthActive
		s.mu.Unlock()
		if !active {
			return 0
		}
		return s.synth.Price()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if q, ok := s.lastQuote[symbol]; ok {
		return q.Price
	}
	return 0
}

// Snapshot returns the current portfolio.
func (s *Session) Snapshot() ledger.Snapshot {
	return s.ledger.Snapshot()
}

// Trades returns the journal, newest first.
func (s *Session) Trades() []ledger.Trade {
	return s.trades.Trades()
}

// Synth exposes the synthetic market session (chart history, state).
func (s *Session) Synth() *synth.Session {
	return s.synth
}

// Reset clears the ledger, journal and persisted state, and regenerates
// the synthetic market. The session returns to Uninitialized.
func (s *Session) Reset() {
	s.mu.Lock()
	s.initialized = false
	s.trades.Clear()
	s.ledger = ledger.New(s.trades)
	s.lastQuote = make(map[market.Symbol]market.Quote)
	if s.synthActive {
		s.synth.InitializeSession()
	}
	s.mu.Unlock()

	_ = s.store.Clear()
}

// persist writes the current state through the fail-soft store. Errors
// are logged inside the store wrapper and never reach the caller.
func (s *Session) persist() {
	s.mu.Lock()
	st := store.SessionState{
		Portfolio:       s.ledger.Snapshot(),
		Trades:          s.trades.Trades(),
		StartingCapital: s.ledger.StartingCapital(),
		SelectedAsset:   s.asset,
		SpeedMode:       s.mode,
		Initialized:     s.initialized,
	}
	s.mu.Unlock()

	if err := store.SaveState(s.store, st); err != nil {
		s.log.WithError(err).Warn("session: persist failed")
	}
}
