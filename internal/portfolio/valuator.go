// Package portfolio computes the current market value of an account:
// cash balance plus the value of every held position at live quoted
// prices. It persists nothing; valuation is a read-time aggregation
// over the ledger and the quote provider.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/ledger"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/quotes"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/storage"
)

// Position is the valuation of one held symbol. When the quote
// provider cannot resolve the symbol (delisted, provider outage) the
// position is flagged Stale and excluded from the total instead of
// being silently valued at zero.
type Position struct {
	Symbol      string          `json:"symbol"`
	Name        string          `json:"name,omitempty"`
	Shares      decimal.Decimal `json:"shares"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	MarketValue decimal.Decimal `json:"market_value"`
	Stale       bool            `json:"stale,omitempty"`
}

// Valuation is the result of a net-worth computation.
type Valuation struct {
	AccountID    int64           `json:"account_id"`
	Cash         decimal.Decimal `json:"cash"`
	Positions    []Position      `json:"positions"`
	TotalValue   decimal.Decimal `json:"total_value"`
	StaleSymbols []string        `json:"stale_symbols,omitempty"`
}

// Valuator composes ledger holdings with live quotes.
type Valuator struct {
	store  storage.Store
	quotes quotes.Provider
}

// NewValuator creates a valuator over the given store and provider.
func NewValuator(store storage.Store, provider quotes.Provider) *Valuator {
	return &Valuator{store: store, quotes: provider}
}

// NetWorth values the account at current quoted prices. Stale symbols
// are reported per position, never fatal to the rest of the
// computation.
func (v *Valuator) NetWorth(ctx context.Context, accountID int64) (*Valuation, error) {
	account, err := v.store.Account(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.CashBalance.IsNegative() {
		return nil, fmt.Errorf("%w: account %d cash balance is negative", ledger.ErrCorruptState, accountID)
	}

	holdings, err := v.store.HoldingsByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(holdings))
	for symbol := range holdings {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	valuation := &Valuation{
		AccountID:  accountID,
		Cash:       account.CashBalance,
		Positions:  make([]Position, 0, len(symbols)),
		TotalValue: account.CashBalance,
	}

	for _, symbol := range symbols {
		shares := holdings[symbol]
		if shares.IsNegative() {
			return nil, fmt.Errorf("%w: account %d holds %s shares of %s", ledger.ErrCorruptState, accountID, shares, symbol)
		}

		quote, err := v.quotes.Lookup(ctx, symbol)
		if err != nil {
			if !errors.Is(err, quotes.ErrUnknownSymbol) {
				return nil, err
			}

			logrus.WithFields(logrus.Fields{
				"account_id": accountID,
				"symbol":     symbol,
			}).Warn("stale quote, position excluded from total")

			valuation.Positions = append(valuation.Positions, Position{
				Symbol: symbol,
				Shares: shares,
				Stale:  true,
			})
			valuation.StaleSymbols = append(valuation.StaleSymbols, symbol)
			continue
		}

		marketValue := quote.Price.Mul(shares)
		valuation.Positions = append(valuation.Positions, Position{
			Symbol:      symbol,
			Name:        quote.Name,
			Shares:      shares,
			UnitPrice:   quote.Price,
			MarketValue: marketValue,
		})
		valuation.TotalValue = valuation.TotalValue.Add(marketValue)
	}

	return valuation, nil
}
