package ledger

import "errors"

// Validation failures are local, synchronous and non-mutating: a
// rejected operation leaves the ledger exactly as it was.
var (
	ErrInsufficientFunds    = errors.New("ledger: insufficient funds")
	ErrInsufficientPosition = errors.New("ledger: insufficient position")
	ErrInvalidQuantity      = errors.New("ledger: quantity must be positive")
	ErrInvalidPrice         = errors.New("ledger: price must be positive")
	ErrInvalidCapital       = errors.New("ledger: starting capital must be positive")
)
