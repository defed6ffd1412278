package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/papertrade/ledger"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) Record(t ledger.Trade) error {
	var pnl sql.NullFloat64
	if t.RealizedPnL != nil {
		pnl = sql.NullFloat64{Float64: *t.RealizedPnL, Valid: true}
	}

	_, err := j.db.Exec(`
		INSERT INTO trades
		(trade_id, asset, side, quantity, price, total, time, realized_pnl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, string(t.Symbol), string(t.Side), t.Quantity,
		t.Price, t.Total, t.Time, pnl,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
