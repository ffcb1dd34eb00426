package core

import "testing"

func TestAccountTypeValid(t *testing.T) {
	for _, typ := range []AccountType{AccountTypeBank, AccountTypeWallet, AccountTypeCard, AccountTypeExchange} {
		if !typ.Valid() {
			t.Fatalf("%q expected valid", typ)
		}
	}
	for _, typ := range []AccountType{"", "Bank", "savings", AccountTypeUnknown} {
		if typ.Valid() {
			t.Fatalf("%q expected invalid", typ)
		}
	}
	if got := AccountType("savings").Normalize(); got != AccountTypeUnknown {
		t.Fatalf("expected unknown fallback, got %q", got)
	}
	if got := AccountTypeWallet.Normalize(); got != AccountTypeWallet {
		t.Fatalf("expected wallet to survive normalize, got %q", got)
	}
}

func TestCurrencyValidate(t *testing.T) {
	cases := []struct {
		c  Currency
		ok bool
	}{
		{"USD", true},
		{"ETB", true},
		{"USDT2", true},
		{"", false},
		{"usd", false},
		{"U S", false},
		{"TOOLONGCURRENCY", false},
	}
	for i, tc := range cases {
		err := tc.c.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d (%q) expected ok, got %v", i, tc.c, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d (%q) expected error", i, tc.c)
		}
	}
}

func TestAccountDraftValidate(t *testing.T) {
	good := AccountDraft{Name: "Cash", Type: AccountTypeWallet, Currency: "USD"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []AccountDraft{
		{Name: "", Type: AccountTypeBank, Currency: "USD"},
		{Name: "   ", Type: AccountTypeBank, Currency: "USD"},
		{Name: "Cash", Type: "savings", Currency: "USD"},
		{Name: "Cash", Type: AccountTypeBank, Currency: "usd"},
		{Name: "Cash", Type: AccountTypeBank, Currency: ""},
	}
	for i, d := range bads {
		if err := d.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestBalanceValidate(t *testing.T) {
	ok := Balance{Amount: AmountFromInt(100)}
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	zero := Balance{Amount: Zero}
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero balance expected ok, got %v", err)
	}
	neg := Balance{Amount: AmountFromInt(-1)}
	if err := neg.Validate(); err == nil {
		t.Fatalf("negative balance expected error")
	}
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0", "0", true},
		{" 2.50 ", "2.5", true},
		{"-1", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Decimal.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got.Decimal.String(), err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}
