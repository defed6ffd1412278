package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/papertrade/ledger"
	"github.com/rustyeddy/papertrade/market"
)

func TestCSVWritesHeaderAndRows(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trades.csv")

	j, err := NewCSV(path)
	assert.NoError(t, err)

	pnl := -50.0
	assert.NoError(t, j.Record(ledger.Trade{
		ID:       "T1",
		Symbol:   market.SOL,
		Side:     ledger.Buy,
		Quantity: 3,
		Price:    150,
		Total:    450,
		Time:     time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC),
	}))
	assert.NoError(t, j.Record(ledger.Trade{
		ID:          "T2",
		Symbol:      market.SOL,
		Side:        ledger.Sell,
		Quantity:    1,
		Price:       100,
		Total:       100,
		Time:        time.Date(2026, 8, 29, 9, 5, 0, 0, time.UTC),
		RealizedPnL: &pnl,
	}))
	assert.NoError(t, j.Close())

	f, err := os.Open(path)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	rows, err := csv.NewReader(f).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, rows, 3)

	assert.Equal(t, "trade_id", rows[0][0])
	assert.Equal(t, "T1", rows[1][0])
	assert.Equal(t, "buy", rows[1][2])
	assert.Empty(t, rows[1][7], "buy row must have empty realized_pnl")
	assert.Equal(t, "-50.000000", rows[2][7])
}
