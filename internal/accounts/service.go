// Package accounts handles registration and credential verification.
// Credentials are stored bcrypt-hashed and never compared in
// plaintext. The cash balance set at registration is only ever mutated
// by the ledger engine afterwards.
package accounts

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/models"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/storage"
)

var (
	// ErrUsernameTaken is returned when the username is already
	// registered.
	ErrUsernameTaken = errors.New("accounts: username taken")

	// ErrInvalidInput is returned for a blank username or password.
	ErrInvalidInput = errors.New("accounts: username and password must not be blank")

	// ErrInvalidCredentials is returned when the username is unknown or
	// the password does not match.
	ErrInvalidCredentials = errors.New("accounts: invalid username or password")
)

// Service registers accounts and verifies credentials.
type Service struct {
	store        storage.Store
	startingCash decimal.Decimal
}

// NewService creates an account service. Every registered account
// starts with startingCash.
func NewService(store storage.Store, startingCash decimal.Decimal) *Service {
	return &Service{store: store, startingCash: startingCash}
}

// Register creates an account with the configured starting balance.
// Usernames are trimmed and unique regardless of case.
func (s *Service) Register(ctx context.Context, username, password string) (*models.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	account, err := s.store.CreateAccount(ctx, &models.Account{
		Username:    username,
		Credential:  string(hash),
		CashBalance: s.startingCash,
	})
	if errors.Is(err, storage.ErrUsernameTaken) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"account_id": account.ID,
		"username":   account.Username,
	}).Info("account registered")

	return account, nil
}

// Authenticate verifies a username/password pair and returns the
// account on success. Unknown usernames and wrong passwords are
// indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.Account, error) {
	account, err := s.store.AccountByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.Credential), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return account, nil
}
