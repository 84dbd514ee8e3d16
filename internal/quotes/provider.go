// Package quotes resolves ticker symbols to current name and price.
// The transport is opaque to callers; only the resolved quote or its
// absence matters.
package quotes

import (
	"context"
	"errors"
	"strings"

	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/models"
)

// ErrUnknownSymbol is returned when the provider cannot resolve a
// symbol to a quote.
var ErrUnknownSymbol = errors.New("quotes: unknown symbol")

// Provider resolves a ticker symbol to a current quote.
type Provider interface {
	Lookup(ctx context.Context, symbol string) (*models.Quote, error)
}

// Normalize canonicalizes a raw ticker symbol: trimmed, uppercased.
func Normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
