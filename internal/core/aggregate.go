package core

// AccountView combines an account with its latest balance snapshot. An
// account with no history has LatestBalance 0 and a zero LastUpdated.
type AccountView struct {
	Account
	LatestBalance Amount
	LastUpdated   Date
}

// HasHistory reports whether at least one snapshot exists for the account.
func (v AccountView) HasHistory() bool {
	return !v.LastUpdated.IsZero()
}

// LatestBalances derives one view per account, preserving the order of
// accounts. For each account the winning snapshot is the one with the
// greatest CreatedAt; on equal CreatedAt the larger id wins, so the result is
// deterministic regardless of input order.
func LatestBalances(accounts []Account, balances []Balance) []AccountView {
	latest := make(map[int64]Balance, len(accounts))
	for _, b := range balances {
		cur, ok := latest[b.AccountID]
		if !ok || newerThan(b, cur) {
			latest[b.AccountID] = b
		}
	}

	views := make([]AccountView, 0, len(accounts))
	for _, a := range accounts {
		v := AccountView{Account: a}
		if b, ok := latest[a.ID]; ok {
			v.LatestBalance = b.Amount
			v.LastUpdated = b.Date
		}
		views = append(views, v)
	}
	return views
}

func newerThan(a, b Balance) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID > b.ID
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// TotalsByCurrency sums latest balances grouped by exact currency string.
// An empty view set yields an empty map.
func TotalsByCurrency(views []AccountView) map[Currency]Amount {
	totals := make(map[Currency]Amount, len(views))
	for _, v := range views {
		totals[v.Currency] = totals[v.Currency].Add(v.LatestBalance)
	}
	return totals
}
