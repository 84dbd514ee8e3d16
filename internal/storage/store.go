package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("storage: not found")

// ErrTransient marks a failure caused by lock contention or a transaction
// conflict. Callers may retry the whole atomic unit a bounded number of
// times; the retried unit observes a fresh, consistent state.
var ErrTransient = errors.New("storage: transient failure")

// ErrUsernameTaken is returned by CreateAccount when the username is
// already registered.
var ErrUsernameTaken = errors.New("storage: username taken")

// Store is the persistence boundary for accounts and ledger entries.
// Reads outside Atomically see only committed state.
type Store interface {
	// Atomically runs fn as one atomic unit: either every write fn
	// performs becomes visible on return, or none does. fn must not
	// retain the Tx beyond its own scope.
	Atomically(ctx context.Context, fn func(tx Tx) error) error

	CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error)
	Account(ctx context.Context, id int64) (*models.Account, error)
	AccountByUsername(ctx context.Context, username string) (*models.Account, error)

	// EntriesByAccount returns the account's ledger entries in append
	// order (ascending id).
	EntriesByAccount(ctx context.Context, accountID int64) ([]models.LedgerEntry, error)

	// HoldingsByAccount returns symbol -> SUM(quantity) for every symbol
	// with a strictly positive sum.
	HoldingsByAccount(ctx context.Context, accountID int64) (map[string]decimal.Decimal, error)
}

// Tx exposes the primitives composable into one atomic unit. All writes
// performed through a Tx take effect together at commit.
type Tx interface {
	// AccountForUpdate reads the account and locks it against concurrent
	// trading operations until the unit commits or rolls back.
	AccountForUpdate(ctx context.Context, id int64) (*models.Account, error)

	UpdateCashBalance(ctx context.Context, id int64, balance decimal.Decimal) error

	// AppendEntry persists a new ledger entry and returns it with the
	// store-assigned id and timestamp filled in.
	AppendEntry(ctx context.Context, entry *models.LedgerEntry) (*models.LedgerEntry, error)

	AppendCashEvent(ctx context.Context, event *models.CashEvent) error

	// SumQuantity returns SUM(quantity) over the account's entries for
	// the symbol, zero if there are none.
	SumQuantity(ctx context.Context, accountID int64, symbol string) (decimal.Decimal, error)
}
