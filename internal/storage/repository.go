// Package storage provides the durable SQLite implementation of the ledger
// store ports.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"finone/internal/core"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateAccount implements ledger.AccountWriter.
func (r *SQLiteRepository) CreateAccount(ctx context.Context, draft core.AccountDraft) (int64, error) {
	if err := draft.Validate(); err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (name, type, currency, created_at) VALUES (?, ?, ?, ?)`,
		draft.Name, string(draft.Type), string(draft.Currency), time.Now().UTC().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("insert account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("account insert id: %w", err)
	}

	slog.InfoContext(ctx, "Account created",
		"id", id,
		"name", draft.Name,
		"type", draft.Type,
		"currency", draft.Currency)
	return id, nil
}

// UpdateAccount implements ledger.AccountWriter.
func (r *SQLiteRepository) UpdateAccount(ctx context.Context, id int64, draft core.AccountDraft) error {
	if err := draft.Validate(); err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET name = ?, type = ?, currency = ?, updated_at = ? WHERE id = ?`,
		draft.Name, string(draft.Type), string(draft.Currency), time.Now().UTC().UnixNano(), id)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update account rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteAccount removes the account's balance history and the account itself
// in one transaction, so no orphan rows survive a mid-operation failure.
func (r *SQLiteRepository) DeleteAccount(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM balances WHERE account_id = ?`, id); err != nil {
		return fmt.Errorf("delete balances: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete account rows: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete tx: %w", err)
	}

	slog.InfoContext(ctx, "Account deleted", "id", id)
	return nil
}

// ListAccounts implements ledger.AccountReader. Ordering is byte-wise by
// name (SQLite BINARY collation) with id as tie-break, so it is deterministic.
func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, type, currency, created_at, updated_at FROM accounts ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}

// RecordBalance implements ledger.BalanceWriter. The existence check and the
// insert share a transaction; deletion of the account between them cannot
// produce an orphan row.
func (r *SQLiteRepository) RecordBalance(ctx context.Context, accountID int64, amount core.Amount, notes string) (int64, error) {
	now := time.Now().UTC()
	y, m, d := now.Date()
	b := core.Balance{
		AccountID: accountID,
		Amount:    amount,
		Date:      core.NewDate(y, int(m), d),
		Notes:     notes,
		CreatedAt: now,
	}
	if err := b.Validate(); err != nil {
		return 0, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin balance tx: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE id = ?)`, accountID).Scan(&exists); err != nil {
		return 0, fmt.Errorf("check account: %w", err)
	}
	if !exists {
		return 0, core.ErrNotFound
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO balances (account_id, balance, date, notes, created_at) VALUES (?, ?, ?, ?, ?)`,
		accountID, b.Amount.Decimal.String(), b.Date.String(), b.Notes, b.CreatedAt.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("insert balance: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("balance insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit balance tx: %w", err)
	}

	slog.InfoContext(ctx, "Balance recorded",
		"id", id,
		"account_id", accountID,
		"balance", b.Amount.Decimal.String(),
		"date", b.Date.String())
	return id, nil
}

// ListBalances implements ledger.BalanceReader.
func (r *SQLiteRepository) ListBalances(ctx context.Context) ([]core.Balance, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, account_id, balance, date, notes, created_at FROM balances ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()

	var balances []core.Balance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate balances: %w", err)
	}
	return balances, nil
}

// ExportAll implements ledger.BackupStore.
func (r *SQLiteRepository) ExportAll(ctx context.Context) ([]core.Account, []core.Balance, error) {
	accounts, err := r.ListAccounts(ctx)
	if err != nil {
		return nil, nil, err
	}
	balances, err := r.ListBalances(ctx)
	if err != nil {
		return nil, nil, err
	}
	return accounts, balances, nil
}

// ImportAll clears both collections and bulk-inserts the given records in a
// single transaction, keeping the document's ids. A failure anywhere rolls
// the whole restore back.
func (r *SQLiteRepository) ImportAll(ctx context.Context, accounts []core.Account, balances []core.Balance) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM balances`); err != nil {
		return fmt.Errorf("clear balances: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM accounts`); err != nil {
		return fmt.Errorf("clear accounts: %w", err)
	}

	for _, a := range accounts {
		var updatedAt any
		if a.UpdatedAt != nil {
			updatedAt = a.UpdatedAt.UTC().UnixNano()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO accounts (id, name, type, currency, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
			a.ID, a.Name, string(a.Type), string(a.Currency), a.CreatedAt.UTC().UnixNano(), updatedAt); err != nil {
			return fmt.Errorf("restore account %d: %w", a.ID, err)
		}
	}
	for _, b := range balances {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO balances (id, account_id, balance, date, notes, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			b.ID, b.AccountID, b.Amount.Decimal.String(), b.Date.String(), b.Notes, b.CreatedAt.UTC().UnixNano()); err != nil {
			return fmt.Errorf("restore balance %d: %w", b.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import tx: %w", err)
	}

	slog.InfoContext(ctx, "Store restored from backup",
		"accounts", len(accounts),
		"balances", len(balances))
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(rs rowScanner) (core.Account, error) {
	var (
		a         core.Account
		typ       string
		currency  string
		createdAt int64
		updatedAt sql.NullInt64
	)
	if err := rs.Scan(&a.ID, &a.Name, &typ, &currency, &createdAt, &updatedAt); err != nil {
		return core.Account{}, fmt.Errorf("scan account: %w", err)
	}
	a.Type = core.AccountType(typ)
	a.Currency = core.Currency(currency)
	a.CreatedAt = time.Unix(0, createdAt).UTC()
	if updatedAt.Valid {
		t := time.Unix(0, updatedAt.Int64).UTC()
		a.UpdatedAt = &t
	}
	return a, nil
}

func scanBalance(rs rowScanner) (core.Balance, error) {
	var (
		b         core.Balance
		amount    string
		date      string
		createdAt int64
	)
	if err := rs.Scan(&b.ID, &b.AccountID, &amount, &date, &b.Notes, &createdAt); err != nil {
		return core.Balance{}, fmt.Errorf("scan balance: %w", err)
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return core.Balance{}, fmt.Errorf("parse stored balance %q: %w", amount, err)
	}
	b.Amount = core.Amount{Decimal: d}
	if date != "" {
		parsed, err := core.ParseDate(date)
		if err != nil {
			return core.Balance{}, fmt.Errorf("parse stored date: %w", err)
		}
		b.Date = parsed
	}
	b.CreatedAt = time.Unix(0, createdAt).UTC()
	return b, nil
}
