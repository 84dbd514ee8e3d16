package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is the immutable record of one executed trade.
// Quantity is positive for a buy and negative for a sell; UnitPrice is
// the quoted price captured at execution time and is never recomputed.
// Entries are append-only: the current holding for an account+symbol
// pair is always derivable as the sum of Quantity over its entries.
type LedgerEntry struct {
	ID        int64           `json:"id"` // store-assigned, monotonic
	AccountID int64           `json:"account_id"`
	Symbol    string          `json:"symbol"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	CreatedAt time.Time       `json:"created_at"`
}
