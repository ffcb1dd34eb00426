// Package core holds the account/balance domain model and the read-only
// aggregations derived from it.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a decimal balance amount. It embeds shopspring decimal so all
// arithmetic is exact; float64 never touches stored values.
type Amount struct {
	decimal.Decimal
}

// Zero is the latest balance of an account with no history.
var Zero = Amount{}

// ParseAmount parses a user-supplied amount string. It accepts both dot and
// comma decimal separators and rejects negative values.
//
//	ParseAmount("12.34") -> 12.34
//	ParseAmount("12,34") -> 12.34
//	ParseAmount("-1")    -> ErrInvalidAmount
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, ErrInvalidAmount
	}
	if d.Sign() < 0 {
		return Amount{}, ErrInvalidAmount
	}
	return Amount{Decimal: d}, nil
}

// AmountFromInt is a convenience constructor, mostly for tests.
func AmountFromInt(v int64) Amount {
	return Amount{Decimal: decimal.NewFromInt(v)}
}

// Add returns a+b.
func (a Amount) Add(b Amount) Amount {
	return Amount{Decimal: a.Decimal.Add(b.Decimal)}
}

// Equal reports numeric equality, ignoring exponent representation.
func (a Amount) Equal(b Amount) bool {
	return a.Decimal.Equal(b.Decimal)
}

// MarshalJSON emits the amount as a bare JSON number, matching the backup
// document format. Unmarshaling is inherited from decimal, which accepts both
// quoted and unquoted numbers.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}
