// Package ledger implements the ledger engine: every buy, sell and
// deposit is validated, recorded and applied to the account's cash
// balance as one atomic unit. Ledger entries are append-only and are
// the source of truth; per-symbol holdings are always derived from the
// live sum of entry quantities, never from a separately maintained
// running column.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/events"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/models"
	modelevents "github.com/sheikh-saqib/stock-trading-ledger-system/internal/models/events"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/quotes"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/storage"
)

// transient store failures are retried this many times before the
// error is surfaced to the caller.
const maxAttempts = 3

const retryBackoff = 25 * time.Millisecond

// Config carries the deposit policy. Bounds are configuration, not
// business law; zero values disable the respective bound.
type Config struct {
	DepositMin decimal.Decimal
	DepositMax decimal.Decimal
}

// Ledger records trading operations against a transactional store.
// Operations on the same account serialize; different accounts proceed
// concurrently.
type Ledger struct {
	store     storage.Store
	quotes    quotes.Provider
	publisher events.Publisher
	config    Config

	muMap map[int64]*sync.Mutex // per-account locks
	mapMu sync.Mutex            // protects the muMap itself
}

// NewLedger creates a ledger engine over the given store, quote
// provider and event publisher.
func NewLedger(store storage.Store, provider quotes.Provider, publisher events.Publisher, config Config) *Ledger {
	return &Ledger{
		store:     store,
		quotes:    provider,
		publisher: publisher,
		config:    config,
		muMap:     make(map[int64]*sync.Mutex),
	}
}

func (l *Ledger) accountLock(accountID int64) *sync.Mutex {
	l.mapMu.Lock()
	defer l.mapMu.Unlock()

	if _, exists := l.muMap[accountID]; !exists {
		l.muMap[accountID] = &sync.Mutex{}
	}
	return l.muMap[accountID]
}

// RecordBuy purchases quantity whole shares of symbol at the currently
// quoted price. The quote is resolved before the account lock is taken
// so a slow provider never blocks other operations. The cash debit and
// the ledger entry commit together or not at all.
func (l *Ledger) RecordBuy(ctx context.Context, accountID int64, symbol string, quantity int64) (*models.LedgerEntry, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	quote, err := l.quotes.Lookup(ctx, symbol)
	if err != nil {
		return nil, err
	}

	shares := decimal.NewFromInt(quantity)
	cost := quote.Price.Mul(shares)

	lock := l.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	var entry *models.LedgerEntry
	err = l.atomically(ctx, func(tx storage.Tx) error {
		account, err := tx.AccountForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if account.CashBalance.IsNegative() {
			return fmt.Errorf("%w: account %d cash balance is negative", ErrCorruptState, accountID)
		}
		if cost.GreaterThan(account.CashBalance) {
			return ErrInsufficientFunds
		}

		if err := tx.UpdateCashBalance(ctx, accountID, account.CashBalance.Sub(cost)); err != nil {
			return err
		}

		entry, err = tx.AppendEntry(ctx, &models.LedgerEntry{
			AccountID: accountID,
			Symbol:    quote.Symbol,
			Quantity:  shares,
			UnitPrice: quote.Price,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"account_id": accountID,
		"symbol":     entry.Symbol,
		"entry_id":   entry.ID,
		"quantity":   quantity,
		"cost":       cost,
	}).Info("buy recorded")

	l.publishTrade(ctx, entry)

	return entry, nil
}

// RecordSell sells quantity whole shares of symbol at the currently
// quoted price. The shares check runs against the live sum of entry
// quantities inside the same atomic unit as the mutation, so a sell
// that would drive the holding negative is rejected before any entry
// is written.
func (l *Ledger) RecordSell(ctx context.Context, accountID int64, symbol string, quantity int64) (*models.LedgerEntry, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	quote, err := l.quotes.Lookup(ctx, symbol)
	if err != nil {
		return nil, err
	}

	shares := decimal.NewFromInt(quantity)
	proceeds := quote.Price.Mul(shares)

	lock := l.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	var entry *models.LedgerEntry
	err = l.atomically(ctx, func(tx storage.Tx) error {
		account, err := tx.AccountForUpdate(ctx, accountID)
		if err != nil {
			return err
		}

		held, err := tx.SumQuantity(ctx, accountID, quote.Symbol)
		if err != nil {
			return err
		}
		if held.IsNegative() {
			return fmt.Errorf("%w: account %d holds %s shares of %s", ErrCorruptState, accountID, held, quote.Symbol)
		}
		if held.LessThan(shares) {
			return ErrInsufficientShares
		}

		if err := tx.UpdateCashBalance(ctx, accountID, account.CashBalance.Add(proceeds)); err != nil {
			return err
		}

		entry, err = tx.AppendEntry(ctx, &models.LedgerEntry{
			AccountID: accountID,
			Symbol:    quote.Symbol,
			Quantity:  shares.Neg(),
			UnitPrice: quote.Price,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"account_id": accountID,
		"symbol":     entry.Symbol,
		"entry_id":   entry.ID,
		"quantity":   quantity,
		"proceeds":   proceeds,
	}).Info("sell recorded")

	l.publishTrade(ctx, entry)

	return entry, nil
}

// RecordDeposit credits amount to the account's cash balance. Deposits
// are recorded as cash events, not ledger entries, so they never leak
// into per-symbol holding computation.
func (l *Ledger) RecordDeposit(ctx context.Context, accountID int64, amount decimal.Decimal) (*models.CashEvent, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if !l.config.DepositMin.IsZero() && amount.LessThan(l.config.DepositMin) {
		return nil, ErrInvalidAmount
	}
	if !l.config.DepositMax.IsZero() && amount.GreaterThan(l.config.DepositMax) {
		return nil, ErrInvalidAmount
	}

	lock := l.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	event := &models.CashEvent{
		ID:        uuid.New().String(),
		AccountID: accountID,
		Amount:    amount,
	}

	err := l.atomically(ctx, func(tx storage.Tx) error {
		account, err := tx.AccountForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if account.CashBalance.IsNegative() {
			return fmt.Errorf("%w: account %d cash balance is negative", ErrCorruptState, accountID)
		}

		if err := tx.UpdateCashBalance(ctx, accountID, account.CashBalance.Add(amount)); err != nil {
			return err
		}

		return tx.AppendCashEvent(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"account_id": accountID,
		"amount":     amount,
	}).Info("deposit recorded")

	l.publish(ctx, modelevents.FundsDeposited{
		EventID:    event.ID,
		AccountID:  accountID,
		Amount:     amount,
		OccurredAt: time.Now(),
	})

	return event, nil
}

// HoldingsFor returns the account's strictly positive holdings, symbol
// to share count. Fully sold symbols are omitted.
func (l *Ledger) HoldingsFor(ctx context.Context, accountID int64) (map[string]decimal.Decimal, error) {
	return l.store.HoldingsByAccount(ctx, accountID)
}

// EntriesFor returns the account's ledger entries in append order.
func (l *Ledger) EntriesFor(ctx context.Context, accountID int64) ([]models.LedgerEntry, error) {
	return l.store.EntriesByAccount(ctx, accountID)
}

// atomically runs one atomic unit against the store, retrying transient
// failures a bounded number of times before giving up.
func (l *Ledger) atomically(ctx context.Context, fn func(tx storage.Tx) error) error {
	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = l.store.Atomically(ctx, fn)
		if !errors.Is(err, storage.ErrTransient) {
			return err
		}

		logrus.WithError(err).WithField("attempt", attempt).
			Warn("transient store failure, retrying")

		select {
		case <-time.After(time.Duration(attempt) * retryBackoff):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (l *Ledger) publishTrade(ctx context.Context, entry *models.LedgerEntry) {
	l.publish(ctx, modelevents.TradeRecorded{
		EventID:    uuid.New().String(),
		EntryID:    entry.ID,
		AccountID:  entry.AccountID,
		Symbol:     entry.Symbol,
		Quantity:   entry.Quantity,
		UnitPrice:  entry.UnitPrice,
		OccurredAt: entry.CreatedAt,
	})
}

// publish is best effort: the operation is already committed, so a
// publish failure is logged and swallowed.
func (l *Ledger) publish(ctx context.Context, event any) {
	if err := l.publisher.Publish(ctx, event); err != nil {
		logrus.WithError(err).Warn("could not publish ledger event")
	}
}
