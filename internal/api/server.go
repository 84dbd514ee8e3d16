// Package api exposes the ledger operations over a thin JSON HTTP
// surface. Account identifiers are explicit path parameters; there is
// no ambient session state.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/accounts"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/ledger"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/portfolio"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/quotes"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/storage"
)

// Server wires the core services to HTTP routes.
type Server struct {
	accounts *accounts.Service
	ledger   *ledger.Ledger
	valuator *portfolio.Valuator
	quotes   quotes.Provider
}

// NewServer creates the HTTP surface over the given services.
func NewServer(accountsSvc *accounts.Service, ledgerSvc *ledger.Ledger, valuator *portfolio.Valuator, provider quotes.Provider) *Server {
	return &Server{
		accounts: accountsSvc,
		ledger:   ledgerSvc,
		valuator: valuator,
		quotes:   provider,
	}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/quote", s.handleQuote).Methods(http.MethodGet)

	r.HandleFunc("/accounts/{id:[0-9]+}/buy", s.handleBuy).Methods(http.MethodPost)
	r.HandleFunc("/accounts/{id:[0-9]+}/sell", s.handleSell).Methods(http.MethodPost)
	r.HandleFunc("/accounts/{id:[0-9]+}/deposit", s.handleDeposit).Methods(http.MethodPost)
	r.HandleFunc("/accounts/{id:[0-9]+}/holdings", s.handleHoldings).Methods(http.MethodGet)
	r.HandleFunc("/accounts/{id:[0-9]+}/history", s.handleHistory).Methods(http.MethodGet)
	r.HandleFunc("/accounts/{id:[0-9]+}/networth", s.handleNetWorth).Methods(http.MethodGet)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := s.accounts.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := s.accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is a mandatory field")
		return
	}

	quote, err := s.quotes.Lookup(r.Context(), symbol)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathAccountID(w, r)
	if !ok {
		return
	}

	var req struct {
		Symbol   string `json:"symbol"`
		Quantity int64  `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := s.ledger.RecordBuy(r.Context(), accountID, req.Symbol, req.Quantity)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathAccountID(w, r)
	if !ok {
		return
	}

	var req struct {
		Symbol   string `json:"symbol"`
		Quantity int64  `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := s.ledger.RecordSell(r.Context(), accountID, req.Symbol, req.Quantity)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathAccountID(w, r)
	if !ok {
		return
	}

	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	event, err := s.ledger.RecordDeposit(r.Context(), accountID, req.Amount)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (s *Server) handleHoldings(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathAccountID(w, r)
	if !ok {
		return
	}

	holdings, err := s.ledger.HoldingsFor(r.Context(), accountID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, holdings)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathAccountID(w, r)
	if !ok {
		return
	}

	entries, err := s.ledger.EntriesFor(r.Context(), accountID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleNetWorth(w http.ResponseWriter, r *http.Request) {
	accountID, ok := pathAccountID(w, r)
	if !ok {
		return
	}

	valuation, err := s.valuator.NetWorth(r.Context(), accountID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, valuation)
}

// writeServiceError maps core error kinds onto HTTP statuses.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrUnknownSymbol),
		errors.Is(err, ledger.ErrInvalidQuantity),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrInsufficientShares),
		errors.Is(err, accounts.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, accounts.ErrUsernameTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, accounts.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "account not found")
	case errors.Is(err, storage.ErrTransient):
		writeError(w, http.StatusServiceUnavailable, "temporarily unavailable, retry")
	default:
		logrus.WithError(err).Error("internal error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func pathAccountID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Error("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
