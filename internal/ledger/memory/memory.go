// Package memory implements the ledger store ports in process memory. It is
// the test double for HTTP and backup tests and the DATA_BACKEND=memory
// fallback (data is lost on exit, useful for trying the app out).
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"finone/internal/core"
)

type Store struct {
	mu        sync.Mutex
	accounts  map[int64]core.Account
	balances  map[int64]core.Balance
	nextAcct  int64
	nextBal   int64
	clock     func() time.Time
}

func New() *Store {
	return &Store{
		accounts: make(map[int64]core.Account),
		balances: make(map[int64]core.Balance),
		nextAcct: 1,
		nextBal:  1,
		clock:    time.Now,
	}
}

// WithClock overrides the timestamp source. Tests use it to force created_at
// ordering and collisions.
func (s *Store) WithClock(clock func() time.Time) *Store {
	s.clock = clock
	return s
}

func (s *Store) CreateAccount(_ context.Context, draft core.AccountDraft) (int64, error) {
	if err := draft.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextAcct
	s.nextAcct++
	s.accounts[id] = core.Account{
		ID:        id,
		Name:      draft.Name,
		Type:      draft.Type,
		Currency:  draft.Currency,
		CreatedAt: s.clock().UTC(),
	}
	return id, nil
}

func (s *Store) UpdateAccount(_ context.Context, id int64, draft core.AccountDraft) error {
	if err := draft.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return core.ErrNotFound
	}
	now := s.clock().UTC()
	a.Name = draft.Name
	a.Type = draft.Type
	a.Currency = draft.Currency
	a.UpdatedAt = &now
	s.accounts[id] = a
	return nil
}

func (s *Store) DeleteAccount(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return core.ErrNotFound
	}
	for bid, b := range s.balances {
		if b.AccountID == id {
			delete(s.balances, bid)
		}
	}
	delete(s.accounts, id)
	return nil
}

func (s *Store) ListAccounts(_ context.Context) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) RecordBalance(_ context.Context, accountID int64, amount core.Amount, notes string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[accountID]; !ok {
		return 0, core.ErrNotFound
	}
	now := s.clock().UTC()
	b := core.Balance{
		AccountID: accountID,
		Amount:    amount,
		Notes:     notes,
		CreatedAt: now,
	}
	y, m, d := now.Date()
	b.Date = core.NewDate(y, int(m), d)
	if err := b.Validate(); err != nil {
		return 0, err
	}
	b.ID = s.nextBal
	s.nextBal++
	s.balances[b.ID] = b
	return b.ID, nil
}

func (s *Store) ListBalances(_ context.Context) ([]core.Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Balance, 0, len(s.balances))
	for _, b := range s.balances {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ExportAll(ctx context.Context) ([]core.Account, []core.Balance, error) {
	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		return nil, nil, err
	}
	balances, err := s.ListBalances(ctx)
	if err != nil {
		return nil, nil, err
	}
	return accounts, balances, nil
}

func (s *Store) ImportAll(_ context.Context, accounts []core.Account, balances []core.Balance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	nextAccounts := make(map[int64]core.Account, len(accounts))
	nextBalances := make(map[int64]core.Balance, len(balances))
	var maxAcct, maxBal int64
	for _, a := range accounts {
		nextAccounts[a.ID] = a
		if a.ID > maxAcct {
			maxAcct = a.ID
		}
	}
	for _, b := range balances {
		nextBalances[b.ID] = b
		if b.ID > maxBal {
			maxBal = b.ID
		}
	}

	// Swap in one step so a caller never observes a half-restored store.
	s.accounts = nextAccounts
	s.balances = nextBalances
	s.nextAcct = maxAcct + 1
	s.nextBal = maxBal + 1
	return nil
}
