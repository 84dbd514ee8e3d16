package portfolio

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/models"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/quotes"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/storage"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/storage/memory"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func seedAccount(t *testing.T, store *memory.Store, cash string, entries ...models.LedgerEntry) int64 {
	t.Helper()
	ctx := context.Background()

	account, err := store.CreateAccount(ctx, &models.Account{
		Username:    "trader",
		Credential:  "hashed",
		CashBalance: dec(cash),
	})
	require.NoError(t, err)

	err = store.Atomically(ctx, func(tx storage.Tx) error {
		for _, entry := range entries {
			entry.AccountID = account.ID
			if _, err := tx.AppendEntry(ctx, &entry); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	return account.ID
}

func TestNetWorth(t *testing.T) {
	store := memory.NewStore()
	provider := quotes.NewStatic(
		models.Quote{Symbol: "AAPL", Name: "Apple Inc.", Price: dec("160.00")},
		models.Quote{Symbol: "MSFT", Name: "Microsoft Corporation", Price: dec("310.25")},
	)

	accountID := seedAccount(t, store, "9140.00",
		models.LedgerEntry{Symbol: "AAPL", Quantity: dec("10"), UnitPrice: dec("150.00")},
		models.LedgerEntry{Symbol: "AAPL", Quantity: dec("-4"), UnitPrice: dec("160.00")},
		models.LedgerEntry{Symbol: "MSFT", Quantity: dec("2"), UnitPrice: dec("300.00")},
	)

	valuation, err := NewValuator(store, provider).NetWorth(context.Background(), accountID)
	require.NoError(t, err)

	// 9140 + 6*160 + 2*310.25 = 10720.50
	assert.True(t, valuation.TotalValue.Equal(dec("10720.50")),
		"total %s", valuation.TotalValue)
	assert.True(t, valuation.Cash.Equal(dec("9140.00")))
	require.Len(t, valuation.Positions, 2)
	assert.Equal(t, "AAPL", valuation.Positions[0].Symbol)
	assert.True(t, valuation.Positions[0].MarketValue.Equal(dec("960.00")))
	assert.Empty(t, valuation.StaleSymbols)
}

func TestNetWorth_StaleQuoteExcludedAndFlagged(t *testing.T) {
	store := memory.NewStore()
	provider := quotes.NewStatic(
		models.Quote{Symbol: "AAPL", Name: "Apple Inc.", Price: dec("160.00")},
	)

	accountID := seedAccount(t, store, "1000.00",
		models.LedgerEntry{Symbol: "AAPL", Quantity: dec("2"), UnitPrice: dec("150.00")},
		models.LedgerEntry{Symbol: "GONE", Quantity: dec("5"), UnitPrice: dec("20.00")},
	)

	valuation, err := NewValuator(store, provider).NetWorth(context.Background(), accountID)
	require.NoError(t, err)

	// The delisted symbol is excluded from the total, never guessed.
	assert.True(t, valuation.TotalValue.Equal(dec("1320.00")),
		"total %s", valuation.TotalValue)
	assert.Equal(t, []string{"GONE"}, valuation.StaleSymbols)

	require.Len(t, valuation.Positions, 2)
	stale := valuation.Positions[1]
	assert.Equal(t, "GONE", stale.Symbol)
	assert.True(t, stale.Stale)
	assert.True(t, stale.Shares.Equal(dec("5")))
}

func TestNetWorth_CashOnly(t *testing.T) {
	store := memory.NewStore()
	accountID := seedAccount(t, store, "10000.00")

	valuation, err := NewValuator(store, quotes.NewStatic()).NetWorth(context.Background(), accountID)
	require.NoError(t, err)

	assert.True(t, valuation.TotalValue.Equal(dec("10000.00")))
	assert.Empty(t, valuation.Positions)
}

func TestNetWorth_UnknownAccount(t *testing.T) {
	store := memory.NewStore()

	_, err := NewValuator(store, quotes.NewStatic()).NetWorth(context.Background(), 42)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
