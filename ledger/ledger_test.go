package ledger

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/rustyeddy/papertrade/market"
)

type testRecorder struct {
	trades []Trade
}

func (r *testRecorder) Record(t Trade) error {
	r.trades = append(r.trades, t)
	return nil
}

func newLedger(t *testing.T, capital float64) (*Ledger, *testRecorder) {
	t.Helper()

	rec := &testRecorder{}
	n := 0
	l := New(rec,
		WithIDFunc(func() string {
			n++
			return fmt.Sprintf("T%03d", n)
		}),
		WithClock(func() time.Time {
			return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
		}),
	)
	if err := l.Initialize(capital); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return l, rec
}

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// The worked example: 10000 capital, buy 1 @ 5000, buy 0.5 @ 6000,
// sell 1 @ 7000.
func TestBuySellWorkedExample(t *testing.T) {
	l, rec := newLedger(t, 10000)

	if _, err := l.Buy(market.BTC, 1, 5000); err != nil {
		t.Fatalf("buy 1: %v", err)
	}
	if !approxEqual(l.Cash(), 5000, 1e-9) {
		t.Fatalf("cash after first buy: got %.2f", l.Cash())
	}
	pos, ok := l.Position(market.BTC)
	if !ok || !approxEqual(pos.AvgBuyPrice, 5000, 1e-9) {
		t.Fatalf("position after first buy: %+v ok=%v", pos, ok)
	}

	if _, err := l.Buy(market.BTC, 0.5, 6000); err != nil {
		t.Fatalf("buy 2: %v", err)
	}
	pos, _ = l.Position(market.BTC)
	wantAvg := (5000*1 + 3000) / 1.5
	if !approxEqual(pos.AvgBuyPrice, wantAvg, 1e-6) {
		t.Fatalf("avg after second buy: got %.6f want %.6f", pos.AvgBuyPrice, wantAvg)
	}
	if !approxEqual(l.Cash(), 2000, 1e-9) {
		t.Fatalf("cash after second buy: got %.2f", l.Cash())
	}

	trade, err := l.Sell(market.BTC, 1, 7000)
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if trade.RealizedPnL == nil {
		t.Fatal("sell trade missing realized pnl")
	}
	wantPnL := (7000 - wantAvg) * 1
	if !approxEqual(*trade.RealizedPnL, wantPnL, 1e-6) {
		t.Fatalf("realized pnl: got %.6f want %.6f", *trade.RealizedPnL, wantPnL)
	}
	if !approxEqual(l.Cash(), 9000, 1e-9) {
		t.Fatalf("cash after sell: got %.2f", l.Cash())
	}

	pos, ok = l.Position(market.BTC)
	if !ok {
		t.Fatal("partial sell removed position")
	}
	if !approxEqual(pos.Quantity, 0.5, 1e-9) {
		t.Fatalf("remaining quantity: got %.6f", pos.Quantity)
	}
	// Average is untouched by the sell.
	if !approxEqual(pos.AvgBuyPrice, wantAvg, 1e-6) {
		t.Fatalf("avg changed on sell: got %.6f", pos.AvgBuyPrice)
	}

	if len(rec.trades) != 3 {
		t.Fatalf("journal: got %d trades", len(rec.trades))
	}
	if rec.trades[0].Side != Buy || rec.trades[2].Side != Sell {
		t.Fatalf("journal sides wrong: %+v", rec.trades)
	}
}

// avgBuyPrice is the volume-weighted mean of all fills since the
// position was opened.
func TestBuyAverageIsVolumeWeighted(t *testing.T) {
	l, _ := newLedger(t, 1000000)

	fills := []struct{ qty, price float64 }{
		{2, 100}, {3, 250}, {0.5, 90}, {10, 140},
	}

	var totalQty, totalCost float64
	for _, f := range fills {
		if _, err := l.Buy(market.ETH, f.qty, f.price); err != nil {
			t.Fatalf("buy %v: %v", f, err)
		}
		totalQty += f.qty
		totalCost += f.qty * f.price
	}

	pos, _ := l.Position(market.ETH)
	if !approxEqual(pos.AvgBuyPrice, totalCost/totalQty, 1e-9) {
		t.Fatalf("avg: got %.9f want %.9f", pos.AvgBuyPrice, totalCost/totalQty)
	}
	if !approxEqual(pos.Quantity, totalQty, 1e-9) {
		t.Fatalf("qty: got %.9f want %.9f", pos.Quantity, totalQty)
	}
}

// A fully-closing sell discards the cost basis; a later buy starts
// fresh instead of blending with pre-closure history.
func TestCostBasisResetsAfterFullClose(t *testing.T) {
	l, _ := newLedger(t, 100000)

	if _, err := l.Buy(market.SOL, 10, 200); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if _, err := l.Sell(market.SOL, 10, 150); err != nil {
		t.Fatalf("closing sell: %v", err)
	}
	if _, ok := l.Position(market.SOL); ok {
		t.Fatal("closed position still held")
	}

	if _, err := l.Buy(market.SOL, 1, 80); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	pos, _ := l.Position(market.SOL)
	if !approxEqual(pos.AvgBuyPrice, 80, 1e-9) {
		t.Fatalf("reopened avg blended with history: got %.4f", pos.AvgBuyPrice)
	}
}

func TestBuyInsufficientFundsLeavesStateUnchanged(t *testing.T) {
	l, rec := newLedger(t, 1000)

	if _, err := l.Buy(market.BTC, 0.1, 5000); err != nil {
		t.Fatalf("seed buy: %v", err)
	}

	before := l.Snapshot()
	_, err := l.Buy(market.BTC, 1, 5000)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
	after := l.Snapshot()

	if !reflect.DeepEqual(before, after) {
		t.Fatalf("state changed on rejected buy:\nbefore %+v\nafter  %+v", before, after)
	}
	if len(rec.trades) != 1 {
		t.Fatalf("rejected buy was journaled: %d trades", len(rec.trades))
	}
}

// Spending cash to exactly zero is allowed; cash never goes negative.
func TestBuyExactCashAllowed(t *testing.T) {
	l, _ := newLedger(t, 500)

	if _, err := l.Buy(market.ETH, 2, 250); err != nil {
		t.Fatalf("exact-cash buy rejected: %v", err)
	}
	if l.Cash() != 0 {
		t.Fatalf("cash: got %.9f", l.Cash())
	}
}

func TestSellInsufficientPositionLeavesStateUnchanged(t *testing.T) {
	l, _ := newLedger(t, 10000)

	if _, err := l.Buy(market.BTC, 0.5, 5000); err != nil {
		t.Fatalf("buy: %v", err)
	}

	before := l.Snapshot()
	_, err := l.Sell(market.BTC, 1, 6000)
	if !errors.Is(err, ErrInsufficientPosition) {
		t.Fatalf("want ErrInsufficientPosition, got %v", err)
	}
	if !reflect.DeepEqual(before, l.Snapshot()) {
		t.Fatal("state changed on rejected sell")
	}

	// No position at all.
	_, err = l.Sell(market.SOL, 1, 10)
	if !errors.Is(err, ErrInsufficientPosition) {
		t.Fatalf("want ErrInsufficientPosition for unheld asset, got %v", err)
	}
	if !reflect.DeepEqual(before, l.Snapshot()) {
		t.Fatal("state changed on rejected sell of unheld asset")
	}
}

func TestInvalidInputs(t *testing.T) {
	l, _ := newLedger(t, 10000)

	cases := []struct {
		name string
		fn   func() error
		want error
	}{
		{"buy zero qty", func() error { _, err := l.Buy(market.BTC, 0, 100); return err }, ErrInvalidQuantity},
		{"buy negative qty", func() error { _, err := l.Buy(market.BTC, -1, 100); return err }, ErrInvalidQuantity},
		{"buy zero price", func() error { _, err := l.Buy(market.BTC, 1, 0); return err }, ErrInvalidPrice},
		{"sell negative qty", func() error { _, err := l.Sell(market.BTC, -1, 100); return err }, ErrInvalidQuantity},
		{"sell negative price", func() error { _, err := l.Sell(market.BTC, 1, -5); return err }, ErrInvalidPrice},
	}

	before := l.Snapshot()
	for _, tc := range cases {
		if err := tc.fn(); !errors.Is(err, tc.want) {
			t.Errorf("%s: got %v want %v", tc.name, err, tc.want)
		}
	}
	if !reflect.DeepEqual(before, l.Snapshot()) {
		t.Fatal("state changed on invalid inputs")
	}
}

func TestInitializeRequiresPositiveCapital(t *testing.T) {
	l := New(nil)
	if err := l.Initialize(0); !errors.Is(err, ErrInvalidCapital) {
		t.Fatalf("want ErrInvalidCapital, got %v", err)
	}
	if err := l.Initialize(-100); !errors.Is(err, ErrInvalidCapital) {
		t.Fatalf("want ErrInvalidCapital, got %v", err)
	}
}

func TestInitializeReplacesPriorSession(t *testing.T) {
	l, _ := newLedger(t, 10000)

	if _, err := l.Buy(market.BTC, 1, 5000); err != nil {
		t.Fatalf("buy: %v", err)
	}
	if err := l.Initialize(2500); err != nil {
		t.Fatalf("re-initialize: %v", err)
	}

	snap := l.Snapshot()
	if snap.Cash != 2500 || snap.StartingCapital != 2500 || len(snap.Positions) != 0 {
		t.Fatalf("stale state after re-initialize: %+v", snap)
	}
	if snap.TotalPnL != 0 || snap.TotalPnLPercent != 0 {
		t.Fatalf("pnl not reset: %+v", snap)
	}
}
