// Package ledger defines the ports between the presentation layer and the
// persistence store, plus the derived read views composed from them.
package ledger

import (
	"context"

	"finone/internal/core"
)

// Ports for outbound store adapters.
type (
	AccountWriter interface {
		// CreateAccount assigns an id and creation timestamp and returns the id.
		CreateAccount(ctx context.Context, draft core.AccountDraft) (int64, error)
		// UpdateAccount replaces the user-editable fields and stamps updated_at.
		// Returns core.ErrNotFound for an unknown id.
		UpdateAccount(ctx context.Context, id int64, draft core.AccountDraft) error
		// DeleteAccount removes the account and all of its balance history in
		// one transaction. Returns core.ErrNotFound for an unknown id.
		DeleteAccount(ctx context.Context, id int64) error
	}

	AccountReader interface {
		// ListAccounts returns all accounts ordered by name ascending.
		ListAccounts(ctx context.Context) ([]core.Account, error)
	}

	BalanceWriter interface {
		// RecordBalance appends a snapshot dated today. Returns
		// core.ErrInvalidAmount for negative amounts and core.ErrNotFound for
		// an unknown account.
		RecordBalance(ctx context.Context, accountID int64, amount core.Amount, notes string) (int64, error)
	}

	BalanceReader interface {
		// ListBalances returns every snapshot in insertion order.
		ListBalances(ctx context.Context) ([]core.Balance, error)
	}

	BackupStore interface {
		// ExportAll returns both collections without mutation.
		ExportAll(ctx context.Context) ([]core.Account, []core.Balance, error)
		// ImportAll transactionally clears both collections and bulk-inserts
		// the given records, preserving their ids. All-or-nothing.
		ImportAll(ctx context.Context, accounts []core.Account, balances []core.Balance) error
	}

	// Store is the full persistence surface a backend must provide.
	Store interface {
		AccountWriter
		AccountReader
		BalanceWriter
		BalanceReader
		BackupStore
	}
)

// Summaries derives latest-balance views for every account, in list order.
func Summaries(ctx context.Context, s Store) ([]core.AccountView, error) {
	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	balances, err := s.ListBalances(ctx)
	if err != nil {
		return nil, err
	}
	return core.LatestBalances(accounts, balances), nil
}

// CurrencyTotals sums latest balances per currency.
func CurrencyTotals(ctx context.Context, s Store) (map[core.Currency]core.Amount, error) {
	views, err := Summaries(ctx, s)
	if err != nil {
		return nil, err
	}
	return core.TotalsByCurrency(views), nil
}
