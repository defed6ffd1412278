package ledger

import (
	"fmt"
	"sort"

	"github.com/rustyeddy/papertrade/market"
)

// Snapshot is the portfolio state at one point in time. TotalValue is
// cash plus positions valued at their last observed prices; TotalPnL
// is measured against the immutable starting capital.
type Snapshot struct {
	Cash            float64    `json:"cash"`
	Positions       []Position `json:"positions"`
	TotalValue      float64    `json:"totalValue"`
	TotalPnL        float64    `json:"totalPnL"`
	TotalPnLPercent float64    `json:"totalPnLPercent"`
	StartingCapital float64    `json:"startingCapital"`
}

// Snapshot returns the current portfolio state.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

func (l *Ledger) snapshotLocked() Snapshot {
	positions := make([]Position, 0, len(l.position))
	value := l.cash
	for _, pos := range l.position {
		positions = append(positions, *pos)
		value += pos.MarketValue()
	}
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].Symbol < positions[j].Symbol
	})

	snap := Snapshot{
		Cash:            l.cash,
		Positions:       positions,
		TotalValue:      value,
		StartingCapital: l.starting,
	}
	if l.starting > 0 {
		snap.TotalPnL = value - l.starting
		snap.TotalPnLPercent = snap.TotalPnL / l.starting * 100
	}
	return snap
}

// RestoreSnapshot replaces ledger state with a previously persisted
// snapshot. Invalid persisted input is reported so the caller can fall
// back to defaults instead of loading a corrupt session.
func (l *Ledger) RestoreSnapshot(snap Snapshot) error {
	if snap.StartingCapital <= 0 {
		return fmt.Errorf("restore: %w", ErrInvalidCapital)
	}
	if snap.Cash < 0 {
		return fmt.Errorf("restore: negative cash %.2f", snap.Cash)
	}
	positions := make(map[market.Symbol]*Position, len(snap.Positions))
	for _, pos := range snap.Positions {
		if pos.Quantity <= 0 || pos.AvgBuyPrice <= 0 {
			return fmt.Errorf("restore: invalid position %s", pos.Symbol)
		}
		p := pos
		positions[pos.Symbol] = &p
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.cash = snap.Cash
	l.starting = snap.StartingCapital
	l.position = positions
	return nil
}
