package quotes

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/models"
)

// Static serves quotes from a fixed in-memory table. It backs local
// runs without a quote endpoint and doubles as a test provider.
type Static struct {
	mu     sync.RWMutex
	quotes map[string]models.Quote
}

// NewStatic creates a provider preloaded with the given quotes.
func NewStatic(preloaded ...models.Quote) *Static {
	s := &Static{quotes: make(map[string]models.Quote)}
	for _, quote := range preloaded {
		s.Set(quote.Symbol, quote.Name, quote.Price)
	}
	return s
}

// Set adds or replaces the quote for a symbol.
func (s *Static) Set(symbol, name string, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	symbol = Normalize(symbol)
	s.quotes[symbol] = models.Quote{Symbol: symbol, Name: name, Price: price}
}

// Remove drops a symbol, making later lookups fail. Useful to simulate
// a delisted security.
func (s *Static) Remove(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.quotes, Normalize(symbol))
}

func (s *Static) Lookup(ctx context.Context, symbol string) (*models.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quote, ok := s.quotes[Normalize(symbol)]
	if !ok {
		return nil, ErrUnknownSymbol
	}
	return &quote, nil
}

// Compile-time check: Static implements Provider.
var _ Provider = (*Static)(nil)
