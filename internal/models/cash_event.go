package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashEvent records a deposit of funds into an account. Deposits are
// cash-only and carry no symbol, so they are kept out of the trading
// ledger and never participate in holding computation.
type CashEvent struct {
	ID        string          `json:"id"` // uuid
	AccountID int64           `json:"account_id"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}
