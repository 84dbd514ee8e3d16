package accounts

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/storage/memory"
)

func TestRegister(t *testing.T) {
	service := NewService(memory.NewStore(), decimal.RequireFromString("10000"))

	account, err := service.Register(context.Background(), "alice", "s3cret")
	require.NoError(t, err)

	assert.Equal(t, "alice", account.Username)
	assert.True(t, account.CashBalance.Equal(decimal.RequireFromString("10000")))
	assert.NotEqual(t, "s3cret", account.Credential, "credential must be stored hashed")
	assert.NotZero(t, account.ID)
}

func TestRegister_UsernameTaken(t *testing.T) {
	service := NewService(memory.NewStore(), decimal.RequireFromString("10000"))
	ctx := context.Background()

	_, err := service.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)

	_, err = service.Register(ctx, "alice", "other")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	// Uniqueness is case-insensitive.
	_, err = service.Register(ctx, "ALICE", "other")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegister_BlankInput(t *testing.T) {
	service := NewService(memory.NewStore(), decimal.RequireFromString("10000"))
	ctx := context.Background()

	_, err := service.Register(ctx, "  ", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = service.Register(ctx, "alice", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAuthenticate(t *testing.T) {
	service := NewService(memory.NewStore(), decimal.RequireFromString("10000"))
	ctx := context.Background()

	registered, err := service.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)

	account, err := service.Authenticate(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, account.ID)

	_, err = service.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Authenticate(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
