// journal/journal.go
package journal

import (
	"sync"

	"github.com/rustyeddy/papertrade/ledger"
	"github.com/rustyeddy/papertrade/market"
)

// Archive is a durable sink for executed trades. The in-memory Log is
// the session's source of truth; archives are write-behind copies.
type Archive interface {
	Record(ledger.Trade) error
	Close() error
}

// Log is the append-only trade journal for one session, newest first.
// It satisfies ledger.Recorder.
type Log struct {
	mu     sync.Mutex
	trades []ledger.Trade
}

func NewLog() *Log {
	return &Log{}
}

// Record prepends the trade. Trades are immutable once recorded.
func (l *Log) Record(t ledger.Trade) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.trades = append([]ledger.Trade{t}, l.trades...)
	return nil
}

// Trades returns a copy of the journal, newest first.
func (l *Log) Trades() []ledger.Trade {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]ledger.Trade, len(l.trades))
	copy(out, l.trades)
	return out
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.trades)
}

// Clear discards all records; used on session reset.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.trades = nil
}

// Restore replaces the journal with persisted records (newest first).
func (l *Log) Restore(trades []ledger.Trade) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.trades = make([]ledger.Trade, len(trades))
	copy(l.trades, trades)
}

// BySymbol returns the recorded trades for one asset, newest first.
func (l *Log) BySymbol(symbol market.Symbol) []ledger.Trade {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []ledger.Trade
	for _, t := range l.trades {
		if t.Symbol == symbol {
			out = append(out, t)
		}
	}
	return out
}

// Tee fans a trade out to several recorders. Archive failures are
// reported but the Log entry stands; in-memory state never rolls back
// on a failed write-behind.
type Tee []ledger.Recorder

func (t Tee) Record(trade ledger.Trade) error {
	var firstErr error
	for _, r := range t {
		if err := r.Record(trade); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
