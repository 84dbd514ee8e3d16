package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/models"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/storage"
)

// setupTestStore connects to the database named by TEST_DATABASE_URL
// and applies migrations; the test is skipped when the variable is not
// set.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	_, thisFile, _, _ := runtime.Caller(0)
	migrationsDir := "file://" + filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "migrations")
	require.NoError(t, RunMigrations(migrationsDir, databaseURL))

	store, err := Open(databaseURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func testAccount(t *testing.T, store *Store) *models.Account {
	t.Helper()

	account, err := store.CreateAccount(context.Background(), &models.Account{
		Username:    fmt.Sprintf("trader_%d", time.Now().UnixNano()),
		Credential:  "hashed",
		CashBalance: decimal.RequireFromString("10000.00"),
	})
	require.NoError(t, err)
	return account
}

func TestStore_TradeUnit(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	account := testAccount(t, store)

	err := store.Atomically(ctx, func(tx storage.Tx) error {
		locked, err := tx.AccountForUpdate(ctx, account.ID)
		if err != nil {
			return err
		}

		cost := decimal.RequireFromString("1500.00")
		if err := tx.UpdateCashBalance(ctx, account.ID, locked.CashBalance.Sub(cost)); err != nil {
			return err
		}

		_, err = tx.AppendEntry(ctx, &models.LedgerEntry{
			AccountID: account.ID,
			Symbol:    "AAPL",
			Quantity:  decimal.RequireFromString("10"),
			UnitPrice: decimal.RequireFromString("150.00"),
		})
		return err
	})
	require.NoError(t, err)

	reloaded, err := store.Account(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.CashBalance.Equal(decimal.RequireFromString("8500.00")))

	holdings, err := store.HoldingsByAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, holdings["AAPL"].Equal(decimal.RequireFromString("10")))
}

func TestStore_RollbackOnError(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	account := testAccount(t, store)

	boom := errors.New("boom")
	err := store.Atomically(ctx, func(tx storage.Tx) error {
		if err := tx.UpdateCashBalance(ctx, account.ID, decimal.Zero); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	reloaded, err := store.Account(ctx, account.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.CashBalance.Equal(decimal.RequireFromString("10000.00")))
}

func TestStore_DuplicateUsername(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	account := testAccount(t, store)

	_, err := store.CreateAccount(ctx, &models.Account{
		Username:    account.Username,
		Credential:  "hashed",
		CashBalance: decimal.Zero,
	})
	assert.ErrorIs(t, err, storage.ErrUsernameTaken)
}
