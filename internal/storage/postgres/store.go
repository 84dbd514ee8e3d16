// Package postgres implements storage.Store on top of a PostgreSQL
// database. Each atomic unit maps to one SQL transaction; the account
// row is locked with SELECT ... FOR UPDATE so trading operations on the
// same account serialize, while other accounts proceed concurrently.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/models"
	"github.com/sheikh-saqib/stock-trading-ledger-system/internal/storage"
)

// Store is a PostgreSQL implementation of storage.Store.
type Store struct {
	db *sql.DB
}

// Open connects to the database and verifies the connection.
func Open(databaseURL string) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("could not connect database: %w", err)
	}

	return &Store{db: db}, nil
}

// NewStore wraps an existing database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Atomically runs fn inside a single SQL transaction. Serialization
// conflicts and lock timeouts surface as storage.ErrTransient so the
// caller can retry the whole unit.
func (s *Store) Atomically(ctx context.Context, fn func(tx storage.Tx) error) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(err)
	}

	defer func() {
		if err != nil {
			_ = dbTx.Rollback()
		}
	}()

	if err = fn(&pgTx{tx: dbTx}); err != nil {
		return err
	}

	if err = dbTx.Commit(); err != nil {
		return classify(err)
	}
	return nil
}

func (s *Store) CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	const query = `INSERT INTO accounts (username, credential, cash_balance)
	VALUES ($1, $2, $3)
	RETURNING id, created_at`

	created := *account
	err := s.db.QueryRowContext(ctx, query,
		account.Username, account.Credential, account.CashBalance,
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, storage.ErrUsernameTaken
		}
		return nil, classify(err)
	}

	return &created, nil
}

func (s *Store) Account(ctx context.Context, id int64) (*models.Account, error) {
	const query = `SELECT id, username, credential, cash_balance, created_at
	FROM accounts WHERE id = $1`

	return scanAccount(s.db.QueryRowContext(ctx, query, id))
}

func (s *Store) AccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	const query = `SELECT id, username, credential, cash_balance, created_at
	FROM accounts WHERE username = $1`

	return scanAccount(s.db.QueryRowContext(ctx, query, username))
}

func (s *Store) EntriesByAccount(ctx context.Context, accountID int64) ([]models.LedgerEntry, error) {
	const query = `SELECT id, account_id, symbol, quantity, unit_price, created_at
	FROM ledger_entries WHERE account_id = $1 ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var entries []models.LedgerEntry
	for rows.Next() {
		var entry models.LedgerEntry
		err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&entry.Symbol,
			&entry.Quantity,
			&entry.UnitPrice,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, classify(err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return entries, nil
}

func (s *Store) HoldingsByAccount(ctx context.Context, accountID int64) (map[string]decimal.Decimal, error) {
	const query = `SELECT symbol, SUM(quantity) AS shares
	FROM ledger_entries WHERE account_id = $1
	GROUP BY symbol HAVING SUM(quantity) > 0`

	rows, err := s.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	holdings := make(map[string]decimal.Decimal)
	for rows.Next() {
		var symbol string
		var shares decimal.Decimal
		if err := rows.Scan(&symbol, &shares); err != nil {
			return nil, classify(err)
		}
		holdings[symbol] = shares
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return holdings, nil
}

type pgTx struct {
	tx *sql.Tx
}

func (t *pgTx) AccountForUpdate(ctx context.Context, id int64) (*models.Account, error) {
	const query = `SELECT id, username, credential, cash_balance, created_at
	FROM accounts WHERE id = $1 FOR UPDATE`

	return scanAccount(t.tx.QueryRowContext(ctx, query, id))
}

func (t *pgTx) UpdateCashBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	const query = `UPDATE accounts SET cash_balance = $1 WHERE id = $2`

	result, err := t.tx.ExecContext(ctx, query, balance, id)
	if err != nil {
		return classify(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return classify(err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (t *pgTx) AppendEntry(ctx context.Context, entry *models.LedgerEntry) (*models.LedgerEntry, error) {
	const query = `INSERT INTO ledger_entries (account_id, symbol, quantity, unit_price)
	VALUES ($1, $2, $3, $4)
	RETURNING id, created_at`

	created := *entry
	err := t.tx.QueryRowContext(ctx, query,
		entry.AccountID, entry.Symbol, entry.Quantity, entry.UnitPrice,
	).Scan(&created.ID, &created.CreatedAt)
	if err != nil {
		return nil, classify(err)
	}
	return &created, nil
}

func (t *pgTx) AppendCashEvent(ctx context.Context, event *models.CashEvent) error {
	const query = `INSERT INTO cash_events (id, account_id, amount)
	VALUES ($1, $2, $3)`

	_, err := t.tx.ExecContext(ctx, query, event.ID, event.AccountID, event.Amount)
	if err != nil {
		return classify(err)
	}
	return nil
}

func (t *pgTx) SumQuantity(ctx context.Context, accountID int64, symbol string) (decimal.Decimal, error) {
	const query = `SELECT COALESCE(SUM(quantity), 0)
	FROM ledger_entries WHERE account_id = $1 AND symbol = $2`

	var sum decimal.Decimal
	err := t.tx.QueryRowContext(ctx, query, accountID, symbol).Scan(&sum)
	if err != nil {
		return decimal.Zero, classify(err)
	}
	return sum, nil
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Credential,
		&account.CashBalance,
		&account.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, classify(err)
	}
	return &account, nil
}

// classify maps retryable Postgres failures onto storage.ErrTransient:
// 40001 serialization_failure, 40P01 deadlock_detected, 55P03
// lock_not_available.
func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01", "55P03":
			return fmt.Errorf("%w: %v", storage.ErrTransient, err)
		}
	}
	return err
}

// Compile-time check: Store implements storage.Store.
var _ storage.Store = (*Store)(nil)
