package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"finone/internal/core"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// parseID parses a positive int64 form value.
func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// Template row types. Amounts are preformatted so templates stay dumb.
type (
	totalRow struct {
		Currency string
		Amount   string
	}

	accountRow struct {
		ID          int64
		Name        string
		Type        string
		Icon        string
		Currency    string
		Balance     string
		LastUpdated string
	}
)

// formatAmount renders an amount with two decimal places.
func formatAmount(a core.Amount) string {
	return a.StringFixed(2)
}

func totalRows(totals map[core.Currency]core.Amount) []totalRow {
	rows := make([]totalRow, 0, len(totals))
	for currency, amount := range totals {
		rows = append(rows, totalRow{Currency: currency.String(), Amount: formatAmount(amount)})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Currency < rows[j].Currency })
	return rows
}

func accountRows(views []core.AccountView) []accountRow {
	rows := make([]accountRow, 0, len(views))
	for _, v := range views {
		row := accountRow{
			ID:          v.ID,
			Name:        v.Name,
			Type:        v.Type.String(),
			Icon:        v.Type.Normalize().String(),
			Currency:    v.Currency.String(),
			Balance:     formatAmount(v.LatestBalance),
			LastUpdated: "Never",
		}
		if v.HasHistory() {
			row.LastUpdated = v.LastUpdated.String()
		}
		rows = append(rows, row)
	}
	return rows
}

func writeFragment(w http.ResponseWriter, status int, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(html))
}
