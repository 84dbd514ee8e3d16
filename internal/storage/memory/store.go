// Package memory provides an in-memory storage.Store used by tests and
// local runs. It is thread-safe and mirrors the transactional semantics
// of the Postgres store: writes inside Atomically are staged on a copy
// of the state and only become visible when the unit commits.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/models"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/storage"
)

type state struct {
	accounts    map[int64]models.Account
	entries     []models.LedgerEntry
	cashEvents  []models.CashEvent
	nextAccount int64
	nextEntry   int64
	lastEntryAt map[int64]time.Time
}

func (s *state) clone() *state {
	c := &state{
		accounts:    make(map[int64]models.Account, len(s.accounts)),
		entries:     make([]models.LedgerEntry, len(s.entries)),
		cashEvents:  make([]models.CashEvent, len(s.cashEvents)),
		nextAccount: s.nextAccount,
		nextEntry:   s.nextEntry,
		lastEntryAt: make(map[int64]time.Time, len(s.lastEntryAt)),
	}
	for id, account := range s.accounts {
		c.accounts[id] = account
	}
	copy(c.entries, s.entries)
	copy(c.cashEvents, s.cashEvents)
	for id, at := range s.lastEntryAt {
		c.lastEntryAt[id] = at
	}
	return c
}

// Store is an in-memory implementation of storage.Store.
type Store struct {
	mu    sync.Mutex
	state *state
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		state: &state{
			accounts:    make(map[int64]models.Account),
			nextAccount: 1,
			nextEntry:   1,
			lastEntryAt: make(map[int64]time.Time),
		},
	}
}

// Atomically stages fn's writes on a copy of the state and swaps the
// copy in only if fn succeeds, so a failed unit leaves no trace.
func (s *Store) Atomically(ctx context.Context, fn func(tx storage.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	staged := s.state.clone()
	if err := fn(&memTx{state: staged}); err != nil {
		return err
	}

	s.state = staged
	return nil
}

func (s *Store) CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.state.accounts {
		if strings.EqualFold(existing.Username, account.Username) {
			return nil, storage.ErrUsernameTaken
		}
	}

	created := *account
	created.ID = s.state.nextAccount
	created.CreatedAt = time.Now()
	s.state.nextAccount++
	s.state.accounts[created.ID] = created

	return &created, nil
}

func (s *Store) Account(ctx context.Context, id int64) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.state.accounts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &account, nil
}

func (s *Store) AccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, account := range s.state.accounts {
		if account.Username == username {
			found := account
			return &found, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *Store) EntriesByAccount(ctx context.Context, accountID int64) ([]models.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var entries []models.LedgerEntry
	for _, entry := range s.state.entries {
		if entry.AccountID == accountID {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

func (s *Store) HoldingsByAccount(ctx context.Context, accountID int64) (map[string]decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sums := make(map[string]decimal.Decimal)
	for _, entry := range s.state.entries {
		if entry.AccountID != accountID {
			continue
		}
		sums[entry.Symbol] = sums[entry.Symbol].Add(entry.Quantity)
	}

	holdings := make(map[string]decimal.Decimal)
	for symbol, sum := range sums {
		if sum.IsPositive() {
			holdings[symbol] = sum
		}
	}
	return holdings, nil
}

// memTx mutates the staged state; the store's mutex is held for the
// whole unit, so no additional locking is needed here.
type memTx struct {
	state *state
}

func (t *memTx) AccountForUpdate(ctx context.Context, id int64) (*models.Account, error) {
	account, ok := t.state.accounts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &account, nil
}

func (t *memTx) UpdateCashBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	account, ok := t.state.accounts[id]
	if !ok {
		return storage.ErrNotFound
	}
	account.CashBalance = balance
	t.state.accounts[id] = account
	return nil
}

func (t *memTx) AppendEntry(ctx context.Context, entry *models.LedgerEntry) (*models.LedgerEntry, error) {
	created := *entry
	created.ID = t.state.nextEntry
	created.CreatedAt = entryTime(t.state, entry.AccountID)
	t.state.nextEntry++
	t.state.entries = append(t.state.entries, created)
	return &created, nil
}

func (t *memTx) AppendCashEvent(ctx context.Context, event *models.CashEvent) error {
	created := *event
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now()
	}
	t.state.cashEvents = append(t.state.cashEvents, created)
	return nil
}

func (t *memTx) SumQuantity(ctx context.Context, accountID int64, symbol string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, entry := range t.state.entries {
		if entry.AccountID == accountID && entry.Symbol == symbol {
			sum = sum.Add(entry.Quantity)
		}
	}
	return sum, nil
}

// entryTime keeps per-account entry timestamps non-decreasing even if
// the wall clock steps backwards between entries.
func entryTime(st *state, accountID int64) time.Time {
	now := time.Now()
	if last, ok := st.lastEntryAt[accountID]; ok && now.Before(last) {
		now = last
	}
	st.lastEntryAt[accountID] = now
	return now
}

// Compile-time check: Store implements storage.Store.
var _ storage.Store = (*Store)(nil)
