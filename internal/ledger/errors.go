package ledger

import (
	"errors"

	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/quotes"
)

var (
	// ErrUnknownSymbol is returned when the quote provider cannot
	// resolve the requested symbol.
	ErrUnknownSymbol = quotes.ErrUnknownSymbol

	// ErrInvalidQuantity is returned when a trade quantity is not a
	// positive whole number of shares.
	ErrInvalidQuantity = errors.New("ledger: quantity must be a positive whole number")

	// ErrInvalidAmount is returned when a deposit amount falls outside
	// the configured bounds.
	ErrInvalidAmount = errors.New("ledger: deposit amount out of bounds")

	// ErrInsufficientFunds is returned when a buy costs more than the
	// account's cash balance.
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")

	// ErrInsufficientShares is returned when a sell exceeds the shares
	// currently held.
	ErrInsufficientShares = errors.New("ledger: insufficient shares")

	// ErrCorruptState signals that a committed balance or holding was
	// observed negative. That can never result from a valid operation,
	// so it is an internal consistency failure, not a user rejection.
	ErrCorruptState = errors.New("ledger: internal consistency violation")
)
