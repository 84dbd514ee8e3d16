package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeRecorded is published after a buy or sell has been committed.
type TradeRecorded struct {
	EventID    string          `json:"event_id"`
	EntryID    int64           `json:"entry_id"`
	AccountID  int64           `json:"account_id"`
	Symbol     string          `json:"symbol"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// FundsDeposited is published after a deposit has been committed.
type FundsDeposited struct {
	EventID    string          `json:"event_id"`
	AccountID  int64           `json:"account_id"`
	Amount     decimal.Decimal `json:"amount"`
	OccurredAt time.Time       `json:"occurred_at"`
}
