// Package store persists session snapshots through a small key-value
// blob contract. The in-memory session is always the source of truth;
// the store is a fail-soft cache of it.
package store

import "sync"

// Storage keys. Values are opaque JSON blobs.
const (
	KeyPortfolio       = "portfolio"
	KeyTrades          = "trades"
	KeyStartingCapital = "starting-capital"
	KeySelectedAsset   = "selected-asset"
	KeySpeedMode       = "speed-mode"
	KeyInitialized     = "initialized"
)

type Store interface {
	Save(key string, blob []byte) error
	// Load returns the blob for key, or ok=false when absent.
	Load(key string) (blob []byte, ok bool, err error)
	Clear() error
}

// Mem is an in-memory Store for tests.
type Mem struct {
	mu sync.Mutex
	m  map[string][]byte
}

func NewMem() *Mem {
	return &Mem{m: make(map[string][]byte)}
}

func (s *Mem) Save(key string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := make([]byte, len(blob))
	copy(b, blob)
	s.m[key] = b
	return nil
}

func (s *Mem) Load(key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.m[key]
	return b, ok, nil
}

func (s *Mem) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = make(map[string][]byte)
	return nil
}
