package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"finone/internal/core"
	"finone/internal/ledger/memory"
)

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	id, _ := s.CreateAccount(ctx, core.AccountDraft{Name: "Cash", Type: core.AccountTypeWallet, Currency: "USD"})
	if _, err := s.RecordBalance(ctx, id, core.AmountFromInt(100), "initial"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := s.RecordBalance(ctx, id, core.AmountFromInt(80), ""); err != nil {
		t.Fatalf("record: %v", err)
	}

	doc, err := Export(ctx, s)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if doc.ExportedAt.IsZero() {
		t.Fatalf("expected exported_at stamp")
	}

	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		t.Fatalf("encode: %v", err)
	}

	// Restore into a fresh store and compare.
	dst := memory.New()
	if err := Import(ctx, dst, buf.Bytes()); err != nil {
		t.Fatalf("import: %v", err)
	}
	srcAccounts, srcBalances, _ := s.ExportAll(ctx)
	dstAccounts, dstBalances, _ := dst.ExportAll(ctx)
	if len(dstAccounts) != len(srcAccounts) || dstAccounts[0].ID != srcAccounts[0].ID {
		t.Fatalf("accounts did not round-trip: %+v vs %+v", dstAccounts, srcAccounts)
	}
	if len(dstBalances) != len(srcBalances) {
		t.Fatalf("balances did not round-trip: %d vs %d", len(dstBalances), len(srcBalances))
	}
	for i := range srcBalances {
		if dstBalances[i].ID != srcBalances[i].ID || !dstBalances[i].Amount.Equal(srcBalances[i].Amount) {
			t.Fatalf("balance %d did not round-trip: %+v vs %+v", i, dstBalances[i], srcBalances[i])
		}
	}
}

func TestEncodeShape(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	id, _ := s.CreateAccount(ctx, core.AccountDraft{Name: "Cash", Type: core.AccountTypeWallet, Currency: "USD"})
	if _, err := s.RecordBalance(ctx, id, mustAmount(t, "80.50"), "note"); err != nil {
		t.Fatalf("record: %v", err)
	}

	doc, err := Export(ctx, s)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out := buf.String()

	// Amounts must be bare JSON numbers, not quoted strings.
	if !strings.Contains(out, `"balance": 80.5`) {
		t.Fatalf("expected numeric balance in output:\n%s", out)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatalf("output not a JSON object: %v", err)
	}
	for _, key := range []string{"accounts", "balances", "exported_at"} {
		if _, ok := raw[key]; !ok {
			t.Fatalf("missing %q key in output:\n%s", key, out)
		}
	}
}

func TestDecodeMissingCollectionsAreEmpty(t *testing.T) {
	doc, err := Decode([]byte(`{"exported_at":"2025-01-01T00:00:00Z"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(doc.Accounts) != 0 || len(doc.Balances) != 0 {
		t.Fatalf("expected empty collections, got %+v", doc)
	}
}

func TestImportMissingArrayClearsCollection(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	id, _ := s.CreateAccount(ctx, core.AccountDraft{Name: "Old", Type: core.AccountTypeBank, Currency: "EUR"})
	if _, err := s.RecordBalance(ctx, id, core.AmountFromInt(1), ""); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := Import(ctx, s, []byte(`{"accounts":[{"id":9,"name":"Only","type":"bank","currency":"USD","created_at":"2025-01-01T00:00:00Z"}]}`)); err != nil {
		t.Fatalf("import: %v", err)
	}
	accounts, balances, _ := s.ExportAll(ctx)
	if len(accounts) != 1 || accounts[0].ID != 9 {
		t.Fatalf("expected only imported account, got %+v", accounts)
	}
	if len(balances) != 0 {
		t.Fatalf("expected balances cleared, got %+v", balances)
	}
}

func TestImportRejectsNonObject(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	if _, err := s.CreateAccount(ctx, core.AccountDraft{Name: "Keep", Type: core.AccountTypeBank, Currency: "USD"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	for _, in := range []string{`[]`, `"hello"`, `42`, `null`, `not json`, ``} {
		err := Import(ctx, s, []byte(in))
		if !errors.Is(err, ErrMalformedDocument) {
			t.Fatalf("%q: expected malformed document error, got %v", in, err)
		}
	}

	// Store must be untouched after every rejected import.
	accounts, _, _ := s.ExportAll(ctx)
	if len(accounts) != 1 || accounts[0].Name != "Keep" {
		t.Fatalf("store mutated by rejected import: %+v", accounts)
	}
}

func mustAmount(t *testing.T, s string) core.Amount {
	t.Helper()
	a, err := core.ParseAmount(s)
	if err != nil {
		t.Fatalf("parse amount %q: %v", s, err)
	}
	return a
}
