package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a registered user and their cash balance.
// CashBalance is only ever mutated by the ledger engine and must
// never be negative after a committed operation.
type Account struct {
	ID          int64           `json:"id"`
	Username    string          `json:"username"`
	Credential  string          `json:"-"` // hashed secret, never plaintext
	CashBalance decimal.Decimal `json:"cash_balance"`
	CreatedAt   time.Time       `json:"created_at"`
}
