package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"finone/internal/core"
	"finone/internal/ledger"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "finone.db"))
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestCreateAndListAccounts(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for _, draft := range []core.AccountDraft{
		{Name: "Wallet", Type: core.AccountTypeWallet, Currency: "ETB"},
		{Name: "Bank", Type: core.AccountTypeBank, Currency: "USD"},
	} {
		if _, err := repo.CreateAccount(ctx, draft); err != nil {
			t.Fatalf("create %q: %v", draft.Name, err)
		}
	}

	accounts, err := repo.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(accounts) != 2 || accounts[0].Name != "Bank" || accounts[1].Name != "Wallet" {
		t.Fatalf("expected name-ordered accounts, got %+v", accounts)
	}
	if accounts[0].CreatedAt.IsZero() {
		t.Fatalf("expected created_at to be set")
	}
	if accounts[0].UpdatedAt != nil {
		t.Fatalf("expected nil updated_at on fresh account")
	}
}

func TestCreateAccountValidation(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	cases := []core.AccountDraft{
		{Name: "", Type: core.AccountTypeBank, Currency: "USD"},
		{Name: "X", Type: "savings", Currency: "USD"},
		{Name: "X", Type: core.AccountTypeBank, Currency: "usd"},
	}
	for i, draft := range cases {
		if _, err := repo.CreateAccount(ctx, draft); err == nil {
			t.Fatalf("case %d expected validation error", i)
		}
	}
}

func TestDeleteAccountCascades(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	keep, _ := repo.CreateAccount(ctx, core.AccountDraft{Name: "Keep", Type: core.AccountTypeBank, Currency: "USD"})
	gone, _ := repo.CreateAccount(ctx, core.AccountDraft{Name: "Gone", Type: core.AccountTypeCard, Currency: "USD"})
	if _, err := repo.RecordBalance(ctx, keep, core.AmountFromInt(1), ""); err != nil {
		t.Fatalf("record keep: %v", err)
	}
	if _, err := repo.RecordBalance(ctx, gone, core.AmountFromInt(2), ""); err != nil {
		t.Fatalf("record gone: %v", err)
	}

	if err := repo.DeleteAccount(ctx, gone); err != nil {
		t.Fatalf("delete: %v", err)
	}

	accounts, _ := repo.ListAccounts(ctx)
	if len(accounts) != 1 || accounts[0].ID != keep {
		t.Fatalf("expected only the kept account, got %+v", accounts)
	}
	balances, _ := repo.ListBalances(ctx)
	for _, b := range balances {
		if b.AccountID == gone {
			t.Fatalf("orphan balance survived delete: %+v", b)
		}
	}
	if len(balances) != 1 {
		t.Fatalf("expected 1 remaining balance, got %d", len(balances))
	}

	if err := repo.DeleteAccount(ctx, gone); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestRecordBalanceRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if _, err := repo.RecordBalance(ctx, 404, core.AmountFromInt(1), ""); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found for unknown account, got %v", err)
	}

	id, _ := repo.CreateAccount(ctx, core.AccountDraft{Name: "Cash", Type: core.AccountTypeWallet, Currency: "USD"})
	if _, err := repo.RecordBalance(ctx, id, core.AmountFromInt(-10), ""); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	balances, _ := repo.ListBalances(ctx)
	if len(balances) != 0 {
		t.Fatalf("rejected amount must not be stored, got %+v", balances)
	}
}

func TestLatestBalanceAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "finone.db")

	repo, err := NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	id, _ := repo.CreateAccount(ctx, core.AccountDraft{Name: "Cash", Type: core.AccountTypeWallet, Currency: "USD"})
	if _, err := repo.RecordBalance(ctx, id, core.AmountFromInt(100), "initial"); err != nil {
		t.Fatalf("record 100: %v", err)
	}
	if _, err := repo.RecordBalance(ctx, id, core.AmountFromInt(80), "spent"); err != nil {
		t.Fatalf("record 80: %v", err)
	}
	repo.Close()

	// Reopen: data must survive and migrations must be a no-op.
	repo, err = NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()

	views, err := ledger.Summaries(ctx, repo)
	if err != nil {
		t.Fatalf("summaries: %v", err)
	}
	if len(views) != 1 || !views[0].LatestBalance.Equal(core.AmountFromInt(80)) {
		t.Fatalf("expected latest 80 after reopen, got %+v", views)
	}
	if !views[0].HasHistory() {
		t.Fatalf("expected last_updated to be set")
	}
}

func TestImportAllReplacesAndPreservesIDs(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	// Pre-existing data that the import must wipe.
	old, _ := repo.CreateAccount(ctx, core.AccountDraft{Name: "Old", Type: core.AccountTypeBank, Currency: "EUR"})
	if _, err := repo.RecordBalance(ctx, old, core.AmountFromInt(5), ""); err != nil {
		t.Fatalf("seed: %v", err)
	}

	src := newTestRepo(t)
	restored, _ := src.CreateAccount(ctx, core.AccountDraft{Name: "Restored", Type: core.AccountTypeExchange, Currency: "USD"})
	if _, err := src.RecordBalance(ctx, restored, core.AmountFromInt(50), "snapshot"); err != nil {
		t.Fatalf("src record: %v", err)
	}
	accounts, balances, err := src.ExportAll(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	if err := repo.ImportAll(ctx, accounts, balances); err != nil {
		t.Fatalf("import: %v", err)
	}

	gotAccounts, gotBalances, err := repo.ExportAll(ctx)
	if err != nil {
		t.Fatalf("re-export: %v", err)
	}
	if len(gotAccounts) != 1 || gotAccounts[0].ID != restored || gotAccounts[0].Name != "Restored" {
		t.Fatalf("expected restored account with original id, got %+v", gotAccounts)
	}
	if len(gotBalances) != 1 || gotBalances[0].ID != balances[0].ID {
		t.Fatalf("expected restored balance with original id, got %+v", gotBalances)
	}
	if !gotBalances[0].Amount.Equal(core.AmountFromInt(50)) {
		t.Fatalf("expected amount 50, got %s", gotBalances[0].Amount)
	}
	if !gotBalances[0].CreatedAt.Equal(balances[0].CreatedAt) {
		t.Fatalf("created_at changed across import: %v vs %v", gotBalances[0].CreatedAt, balances[0].CreatedAt)
	}
}

func TestImportAllEmptyClearsStore(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	id, _ := repo.CreateAccount(ctx, core.AccountDraft{Name: "Old", Type: core.AccountTypeBank, Currency: "EUR"})
	if _, err := repo.RecordBalance(ctx, id, core.AmountFromInt(5), ""); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := repo.ImportAll(ctx, nil, nil); err != nil {
		t.Fatalf("import empty: %v", err)
	}
	accounts, balances, _ := repo.ExportAll(ctx)
	if len(accounts) != 0 || len(balances) != 0 {
		t.Fatalf("expected empty store, got %d accounts %d balances", len(accounts), len(balances))
	}
}
