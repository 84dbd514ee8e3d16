package quotes

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuoteServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("symbol") {
		case "AAPL":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"symbol":"AAPL","name":"Apple Inc.","price":"150.25"}`)
		case "BROKEN":
			fmt.Fprint(w, `{not json`)
		case "FREE":
			fmt.Fprint(w, `{"symbol":"FREE","name":"Free Corp","price":"0"}`)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestClientLookup(t *testing.T) {
	server := newQuoteServer(t)
	defer server.Close()

	client := NewClient(server.URL, "")

	quote, err := client.Lookup(context.Background(), " aapl ")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", quote.Symbol)
	assert.Equal(t, "Apple Inc.", quote.Name)
	assert.True(t, quote.Price.Equal(decimal.RequireFromString("150.25")))
}

func TestClientLookup_UnknownSymbol(t *testing.T) {
	server := newQuoteServer(t)
	defer server.Close()

	client := NewClient(server.URL, "")

	_, err := client.Lookup(context.Background(), "NOPE")
	assert.ErrorIs(t, err, ErrUnknownSymbol)

	_, err = client.Lookup(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}

func TestClientLookup_MalformedResponse(t *testing.T) {
	server := newQuoteServer(t)
	defer server.Close()

	client := NewClient(server.URL, "")

	_, err := client.Lookup(context.Background(), "BROKEN")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownSymbol)
}

func TestClientLookup_NonPositivePriceRejected(t *testing.T) {
	server := newQuoteServer(t)
	defer server.Close()

	client := NewClient(server.URL, "")

	_, err := client.Lookup(context.Background(), "FREE")
	assert.Error(t, err)
}

func TestStaticProvider(t *testing.T) {
	provider := NewStatic()
	provider.Set("aapl", "Apple Inc.", decimal.RequireFromString("150.00"))

	quote, err := provider.Lookup(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", quote.Symbol)

	provider.Remove("AAPL")
	_, err = provider.Lookup(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrUnknownSymbol)
}
