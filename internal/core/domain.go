package core

import (
	"errors"
	"strings"
	"time"
	"unicode"
)

const (
	AccountTypeBank     AccountType = "bank"
	AccountTypeWallet   AccountType = "wallet"
	AccountTypeCard     AccountType = "card"
	AccountTypeExchange AccountType = "exchange"

	// AccountTypeUnknown is the read-side fallback for values that predate
	// write-boundary validation (old backups, hand-edited documents).
	AccountTypeUnknown AccountType = "unknown"
)

type (
	AccountType string

	Currency string

	Account struct {
		ID        int64       `json:"id"`
		Name      string      `json:"name"`
		Type      AccountType `json:"type"`
		Currency  Currency    `json:"currency"`
		CreatedAt time.Time   `json:"created_at"`
		UpdatedAt *time.Time  `json:"updated_at,omitempty"`
	}

	// AccountDraft carries the user-supplied fields of an account before the
	// store assigns an id and timestamps.
	AccountDraft struct {
		Name     string
		Type     AccountType
		Currency Currency
	}

	// Balance is one snapshot in an account's append-only history. CreatedAt
	// is the authoritative recency key; Date is the day the entry is
	// nominally for.
	Balance struct {
		ID        int64     `json:"id"`
		AccountID int64     `json:"account_id"`
		Amount    Amount    `json:"balance"`
		Date      Date      `json:"date"`
		Notes     string    `json:"notes"`
		CreatedAt time.Time `json:"created_at"`
	}
)

var (
	ErrEmptyName          = errors.New("empty account name")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrInvalidCurrency    = errors.New("invalid currency")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrNotFound           = errors.New("account not found")
)

// Valid reports whether t is one of the supported account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeBank, AccountTypeWallet, AccountTypeCard, AccountTypeExchange:
		return true
	default:
		return false
	}
}

// Normalize maps unrecognized values to AccountTypeUnknown. Consumers render
// unknown types with a default icon instead of failing.
func (t AccountType) Normalize() AccountType {
	if t.Valid() {
		return t
	}
	return AccountTypeUnknown
}

func (t AccountType) String() string {
	return string(t)
}

// Validate checks that c is a plausible currency token: uppercase letters and
// digits, at most 12 characters. No ISO list is enforced.
func (c Currency) Validate() error {
	if c == "" || len(c) > 12 {
		return ErrInvalidCurrency
	}
	for _, r := range c {
		if !unicode.IsUpper(r) && !unicode.IsDigit(r) {
			return ErrInvalidCurrency
		}
	}
	return nil
}

func (c Currency) String() string {
	return string(c)
}

func (d AccountDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if len(d.Name) > 120 {
		return errors.New("account name too long (max 120 characters)")
	}
	if !d.Type.Valid() {
		return ErrInvalidAccountType
	}
	return d.Currency.Validate()
}

// Validate rejects negative snapshot amounts. Zero is a legal balance.
func (b Balance) Validate() error {
	if b.Amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if len(b.Notes) > 200 {
		return errors.New("notes too long (max 200 characters)")
	}
	return nil
}
