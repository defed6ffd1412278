// journal/csv.go
package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/rustyeddy/papertrade/ledger"
)

type CSV struct {
	w *csv.Writer
	f *os.File
}

func NewCSV(path string) (*CSV, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)
	if err := w.Write([]string{"trade_id", "asset", "side", "quantity", "price", "total", "time", "realized_pnl"}); err != nil {
		f.Close()
		return nil, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, err
	}

	return &CSV{w: w, f: f}, nil
}

func (j *CSV) Record(t ledger.Trade) error {
	pnl := ""
	if t.RealizedPnL != nil {
		pnl = f(*t.RealizedPnL)
	}

	err := j.w.Write([]string{
		t.ID,
		string(t.Symbol),
		string(t.Side),
		f(t.Quantity),
		f(t.Price),
		f(t.Total),
		t.Time.Format(time.RFC3339),
		pnl,
	})
	if err != nil {
		return err
	}

	j.w.Flush()
	return j.w.Error()
}

func (j *CSV) Close() error {
	j.w.Flush()
	if err := j.w.Error(); err != nil {
		return err
	}
	return j.f.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
