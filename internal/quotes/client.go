package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/models"
)

// Client fetches quotes from an HTTP JSON endpoint. The endpoint is
// expected to answer GET {baseURL}/quote?symbol=X with
// {"symbol": ..., "name": ..., "price": ...} and 404 for an unknown
// symbol.
type Client struct {
	baseURL string
	token   string
	client  http.Client
}

// NewClient creates a quote client for the given endpoint. The token
// is optional and sent as a bearer token when set.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		client: http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) Lookup(ctx context.Context, symbol string) (*models.Quote, error) {
	symbol = Normalize(symbol)
	if symbol == "" {
		return nil, ErrUnknownSymbol
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/quote", nil)
	if err != nil {
		return nil, fmt.Errorf("Lookup: failed to create request: %w", err)
	}

	q := req.URL.Query()
	q.Add("symbol", symbol)
	req.URL.RawQuery = q.Encode()

	req.Header.Add("Accept", "application/json")
	if c.token != "" {
		req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Lookup: failed to fetch quote: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, ErrUnknownSymbol
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Lookup: failed to fetch quote, http code %v", res.Status)
	}

	var dto struct {
		Symbol string          `json:"symbol"`
		Name   string          `json:"name"`
		Price  decimal.Decimal `json:"price"`
	}
	if err := json.NewDecoder(res.Body).Decode(&dto); err != nil {
		return nil, fmt.Errorf("Lookup: failed to decode json: %w", err)
	}

	if !dto.Price.IsPositive() {
		return nil, fmt.Errorf("Lookup: quoted price for %s is not positive", symbol)
	}

	return &models.Quote{
		Symbol: Normalize(dto.Symbol),
		Name:   dto.Name,
		Price:  dto.Price,
	}, nil
}

// Compile-time check: Client implements Provider.
var _ Provider = (*Client)(nil)
