package ledger

import (
	"sync"
	"time"

	"github.com/rustyeddy/papertrade/internal/id"
	"github.com/rustyeddy/papertrade/market"
)

// Ledger owns cash, open positions and the session's starting capital,
// and applies buy/sell operations with average-cost accounting. All
// prices come from the caller; the ledger never fetches or races
// against a price source.
type Ledger struct {
	mu       sync.Mutex
	cash     float64
	starting float64
	position map[market.Symbol]*Position

	recorder Recorder
	newID    func() string
	now      func() time.Time
}

type Option func(*Ledger)

// WithIDFunc overrides trade ID generation, for deterministic tests.
func WithIDFunc(fn func() string) Option {
	return func(l *Ledger) { l.newID = fn }
}

// WithClock overrides the trade timestamp source.
func WithClock(fn func() time.Time) Option {
	return func(l *Ledger) { l.now = fn }
}

// New returns an uninitialized ledger. Initialize must be called with
// the session's starting capital before trading. recorder may be nil.
func New(recorder Recorder, opts ...Option) *Ledger {
	l := &Ledger{
		position: make(map[market.Symbol]*Position),
		recorder: recorder,
		newID:    id.New,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Initialize starts a fresh session: cash = capital, no positions.
// Replaces any prior session state.
func (l *Ledger) Initialize(capital float64) error {
	if capital <= 0 {
		return ErrInvalidCapital
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.cash = capital
	l.starting = capital
	l.position = make(map[market.Symbol]*Position)
	return nil
}

// Buy fills a purchase at the supplied price. The cost is deducted from
// cash and merged into the asset's position at a volume-weighted
// average price. Fails with ErrInsufficientFunds when the cost exceeds
// available cash; cost exactly equal to cash is allowed.
func (l *Ledger) Buy(symbol market.Symbol, quantity, price float64) (Trade, error) {
	if quantity <= 0 {
		return Trade{}, ErrInvalidQuantity
	}
	if price <= 0 {
		return Trade{}, ErrInvalidPrice
	}

	l.mu.Lock()

	total := quantity * price
	if total > l.cash {
		l.mu.Unlock()
		return Trade{}, ErrInsufficientFunds
	}

	l.cash -= total

	if pos, ok := l.position[symbol]; ok {
		newQty := pos.Quantity + quantity
		pos.AvgBuyPrice = (pos.AvgBuyPrice*pos.Quantity + total) / newQty
		pos.Quantity = newQty
		pos.CurrentPrice = price
	} else {
		l.position[symbol] = &Position{
			Symbol:       symbol,
			Quantity:     quantity,
			AvgBuyPrice:  price,
			CurrentPrice: price,
		}
	}

	trade := Trade{
		ID:       l.newID(),
		Symbol:   symbol,
		Side:     Buy,
		Quantity: quantity,
		Price:    price,
		Total:    total,
		Time:     l.now(),
	}

	l.mu.Unlock()

	l.record(trade)
	return trade, nil
}

// Sell fills a sale at the supplied price, crediting the proceeds to
// cash and crystallizing realized PnL against the position's average
// buy price. A position sold down to zero is removed entirely; its cost
// basis is discarded, so a later buy starts fresh. The average buy
// price of a partially sold position is unchanged.
func (l *Ledger) Sell(symbol market.Symbol, quantity, price float64) (Trade, error) {
	if quantity <= 0 {
		return Trade{}, ErrInvalidQuantity
	}
	if price <= 0 {
		return Trade{}, ErrInvalidPrice
	}

	l.mu.Lock()

	pos, ok := l.position[symbol]
	if !ok || quantity > pos.Quantity {
		l.mu.Unlock()
		return Trade{}, ErrInsufficientPosition
	}

	total := quantity * price
	pnl := (price - pos.AvgBuyPrice) * quantity

	l.cash += total
	pos.Quantity -= quantity
	if pos.Quantity <= 0 {
		delete(l.position, symbol)
	}

	trade := Trade{
		ID:          l.newID(),
		Symbol:      symbol,
		Side:        Sell,
		Quantity:    quantity,
		Price:       price,
		Total:       total,
		Time:        l.now(),
		RealizedPnL: &pnl,
	}

	l.mu.Unlock()

	l.record(trade)
	return trade, nil
}

// MarkToMarket revalues held positions at the supplied prices and
// returns the resulting snapshot. Assets missing from the map keep
// their last known price, so a partial or empty feed never zeroes out
// a valuation. Calling twice with the same map yields identical
// snapshots.
func (l *Ledger) MarkToMarket(prices map[market.Symbol]float64) Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	for sym, pos := range l.position {
		if p, ok := prices[sym]; ok && p > 0 {
			pos.CurrentPrice = p
		}
	}
	return l.snapshotLocked()
}

// Position returns the open position for symbol, if any.
func (l *Ledger) Position(symbol market.Symbol) (Position, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pos, ok := l.position[symbol]
	if !ok {
		return Position{}, false
	}
	return *pos, true
}

// Cash returns the available cash balance.
func (l *Ledger) Cash() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cash
}

// StartingCapital returns the capital captured at session start.
func (l *Ledger) StartingCapital() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.starting
}

func (l *Ledger) record(t Trade) {
	if l.recorder == nil {
		return
	}
	// Recording is a side effect; a failure must not undo the fill.
	_ = l.recorder.Record(t)
}
