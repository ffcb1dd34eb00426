// Package backup serializes the full store to a portable JSON document and
// restores it. The document shape is stable so older backup files keep
// importing.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"finone/internal/core"
	"finone/internal/ledger"
)

// ErrMalformedDocument marks input that is not a JSON object of the expected
// shape. It is always returned before any mutation.
var ErrMalformedDocument = errors.New("malformed backup document")

// Document is the full-store snapshot.
type Document struct {
	Accounts   []core.Account `json:"accounts"`
	Balances   []core.Balance `json:"balances"`
	ExportedAt time.Time      `json:"exported_at"`
}

// Export reads both collections and stamps the snapshot time.
func Export(ctx context.Context, store ledger.BackupStore) (Document, error) {
	accounts, balances, err := store.ExportAll(ctx)
	if err != nil {
		return Document{}, fmt.Errorf("export store: %w", err)
	}
	return Document{
		Accounts:   accounts,
		Balances:   balances,
		ExportedAt: time.Now().UTC(),
	}, nil
}

// Encode writes the document as two-space indented JSON so backups stay
// readable and diffable.
func Encode(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	return nil
}

// Decode parses a backup document. Non-object input (arrays, strings,
// numbers, invalid JSON) fails with ErrMalformedDocument; a missing
// collection key is an empty collection, not an error.
func Decode(data []byte) (Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		// json.Unmarshal would accept null or a bare value here.
		return Document{}, fmt.Errorf("%w: not a JSON object", ErrMalformedDocument)
	}
	var doc Document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return doc, nil
}

// Import decodes and transactionally replaces the store contents. Decoding
// failures leave the store untouched.
func Import(ctx context.Context, store ledger.BackupStore, data []byte) error {
	doc, err := Decode(data)
	if err != nil {
		return err
	}
	if err := store.ImportAll(ctx, doc.Accounts, doc.Balances); err != nil {
		return fmt.Errorf("restore store: %w", err)
	}
	return nil
}
