package models

import "github.com/shopspring/decimal"

// Quote is a resolved price for a ticker symbol at lookup time.
type Quote struct {
	Symbol string          `json:"symbol"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
}
