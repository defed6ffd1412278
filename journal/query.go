package journal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rustyeddy/papertrade/ledger"
	"github.com/rustyeddy/papertrade/market"
)

// GetTrade returns a single archived trade by ID.
func (j *SQLite) GetTrade(tradeID string) (ledger.Trade, error) {
	row := j.db.QueryRow(`
		SELECT trade_id, asset, side, quantity, price, total, time, realized_pnl
		FROM trades
		WHERE trade_id = ?`, tradeID)

	rec, err := scanTrade(row)
	if err == sql.ErrNoRows {
		return rec, fmt.Errorf("trade %q not found", tradeID)
	}
	return rec, err
}

// ListTradesBetween returns trades executed in [start, end), oldest
// first.
func (j *SQLite) ListTradesBetween(start, end time.Time) ([]ledger.Trade, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, asset, side, quantity, price, total, time, realized_pnl
		FROM trades
		WHERE time >= ? AND time < ?
		ORDER BY time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTrades(rows)
}

// ListTradesBySymbol returns all archived trades for one asset, oldest
// first.
func (j *SQLite) ListTradesBySymbol(symbol market.Symbol) ([]ledger.Trade, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, asset, side, quantity, price, total, time, realized_pnl
		FROM trades
		WHERE asset = ?
		ORDER BY time ASC`, string(symbol))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectTrades(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(s scanner) (ledger.Trade, error) {
	var (
		rec    ledger.Trade
		symbol string
		side   string
		pnl    sql.NullFloat64
	)

	err := s.Scan(
		&rec.ID,
		&symbol,
		&side,
		&rec.Quantity,
		&rec.Price,
		&rec.Total,
		&rec.Time,
		&pnl,
	)
	if err != nil {
		return rec, err
	}

	rec.Symbol = market.Symbol(symbol)
	rec.Side = ledger.Side(side)
	if pnl.Valid {
		v := pnl.Float64
		rec.RealizedPnL = &v
	}
	return rec, nil
}

func collectTrades(rows *sql.Rows) ([]ledger.Trade, error) {
	var recs []ledger.Trade
	for rows.Next() {
		rec, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
