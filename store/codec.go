package store

import (
	"encoding/json"
	"strconv"

	"github.com/rustyeddy/papertrade/ledger"
	"github.com/rustyeddy/papertrade/market"
	"github.com/rustyeddy/papertrade/synth"
)

// SessionState is everything a session persists between runs.
type SessionState struct {
	Portfolio       ledger.Snapshot `json:"portfolio"`
	Trades          []ledger.Trade  `json:"trades"`
	StartingCapital float64         `json:"startingCapital"`
	SelectedAsset   market.Symbol   `json:"selectedAsset"`
	SpeedMode       synth.Mode      `json:"speedMode"`
	Initialized     bool            `json:"initialized"`
}

// DefaultState is what a load falls back to when nothing (or nothing
// usable) was persisted.
func DefaultState() SessionState {
	return SessionState{
		Portfolio: ledger.Snapshot{
			Cash:            10000,
			TotalValue:      10000,
			StartingCapital: 10000,
		},
		StartingCapital: 10000,
		SelectedAsset:   market.BTC,
		SpeedMode:       synth.Medium,
	}
}

// SaveState writes the session state across the fixed key set. The
// first failing key aborts the save; callers treat any error as
// non-fatal.
func SaveState(s Store, st SessionState) error {
	portfolio, err := json.Marshal(st.Portfolio)
	if err != nil {
		return err
	}
	trades, err := json.Marshal(st.Trades)
	if err != nil {
		return err
	}

	writes := []struct {
		key  string
		blob []byte
	}{
		{KeyPortfolio, portfolio},
		{KeyTrades, trades},
		{KeyStartingCapital, []byte(strconv.FormatFloat(st.StartingCapital, 'f', -1, 64))},
		{KeySelectedAsset, []byte(st.SelectedAsset)},
		{KeySpeedMode, []byte(st.SpeedMode)},
		{KeyInitialized, []byte(strconv.FormatBool(st.Initialized))},
	}
	for _, w := range writes {
		if err := s.Save(w.key, w.blob); err != nil {
			return err
		}
	}
	return nil
}

// LoadState reads back a persisted session. Absent or corrupted values
// fall back to defaults field by field; corrupted persisted input is
// never an error, it is treated as absent.
func LoadState(s Store) SessionState {
	st := DefaultState()

	if blob, ok, err := s.Load(KeyInitialized); err == nil && ok {
		st.Initialized, _ = strconv.ParseBool(string(blob))
	}
	if blob, ok, err := s.Load(KeyStartingCapital); err == nil && ok {
		if v, err := strconv.ParseFloat(string(blob), 64); err == nil && v > 0 {
			st.StartingCapital = v
		}
	}
	if blob, ok, err := s.Load(KeyPortfolio); err == nil && ok {
		var snap ledger.Snapshot
		if err := json.Unmarshal(blob, &snap); err == nil && snap.StartingCapital > 0 {
			st.Portfolio = snap
		}
	}
	if blob, ok, err := s.Load(KeyTrades); err == nil && ok {
		var trades []ledger.Trade
		if err := json.Unmarshal(blob, &trades); err == nil {
			st.Trades = trades
		}
	}
	if blob, ok, err := s.Load(KeySelectedAsset); err == nil && ok {
		if sym := market.Symbol(blob); sym.Valid() {
			st.SelectedAsset = sym
		}
	}
	if blob, ok, err := s.Load(KeySpeedMode); err == nil && ok {
		if mode, err := synth.ParseMode(string(blob)); err == nil {
			st.SpeedMode = mode
		}
	}

	return st
}
