package journal

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/papertrade/ledger"
	"github.com/rustyeddy/papertrade/market"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	j, err := NewSQLite(path)
	assert.NoError(t, err)

	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	var name string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='trades'`).Scan(&name)
	assert.NoError(t, err)
	assert.Equal(t, "trades", name)
}

func TestSQLiteRecordAndGetTrade(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	pnl := 1666.67
	rec := ledger.Trade{
		ID:          "T1",
		Symbol:      market.BTC,
		Side:        ledger.Sell,
		Quantity:    1,
		Price:       7000,
		Total:       7000,
		Time:        time.Date(2026, 8, 29, 9, 30, 0, 0, time.UTC),
		RealizedPnL: &pnl,
	}

	assert.NoError(t, j.Record(rec))

	got, err := j.GetTrade("T1")
	assert.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.Symbol, got.Symbol)
	assert.Equal(t, rec.Side, got.Side)
	assert.InDelta(t, rec.Quantity, got.Quantity, 1e-9)
	assert.InDelta(t, rec.Price, got.Price, 1e-9)
	if assert.NotNil(t, got.RealizedPnL) {
		assert.InDelta(t, pnl, *got.RealizedPnL, 1e-9)
	}
	assert.True(t, got.Time.Equal(rec.Time))
}

func TestSQLiteBuyHasNoRealizedPnL(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	assert.NoError(t, j.Record(ledger.Trade{
		ID:       "T2",
		Symbol:   market.ETH,
		Side:     ledger.Buy,
		Quantity: 2,
		Price:    1000,
		Total:    2000,
		Time:     time.Now().UTC(),
	}))

	got, err := j.GetTrade("T2")
	assert.NoError(t, err)
	assert.Nil(t, got.RealizedPnL)
}

func TestSQLiteGetTradeMissing(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	_, err := j.GetTrade("nope")
	assert.Error(t, err)
}

func TestSQLiteListTrades(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	t.Cleanup(func() { _ = j.Close() })

	base := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	for i, sym := range []market.Symbol{market.BTC, market.ETH, market.BTC} {
		assert.NoError(t, j.Record(ledger.Trade{
			ID:       string(rune('A' + i)),
			Symbol:   sym,
			Side:     ledger.Buy,
			Quantity: 1,
			Price:    100,
			Total:    100,
			Time:     base.Add(time.Duration(i) * time.Hour),
		}))
	}

	recs, err := j.ListTradesBetween(base, base.Add(2*time.Hour))
	assert.NoError(t, err)
	assert.Len(t, recs, 2)
	assert.Equal(t, "A", recs[0].ID)

	btc, err := j.ListTradesBySymbol(market.BTC)
	assert.NoError(t, err)
	assert.Len(t, btc, 2)
}
