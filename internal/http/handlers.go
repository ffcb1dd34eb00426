package http

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/sync/errgroup"

	"finone/internal/core"
)

var accountTypeOptions = []core.AccountType{
	core.AccountTypeBank,
	core.AccountTypeWallet,
	core.AccountTypeCard,
	core.AccountTypeExchange,
}

type dashboardData struct {
	Totals   []totalRow
	Accounts []accountRow
	Recent   []accountRow
	Types    []core.AccountType
}

func (s *Server) loadDashboard(ctx context.Context) (dashboardData, error) {
	var (
		data dashboardData
		g    errgroup.Group
	)
	g.Go(func() error {
		views, err := s.getSummaries(ctx)
		if err != nil {
			return err
		}
		data.Accounts = accountRows(views)
		return nil
	})
	g.Go(func() error {
		totals, err := s.getTotals(ctx)
		if err != nil {
			return err
		}
		data.Totals = totalRows(totals)
		return nil
	})
	if err := g.Wait(); err != nil {
		return dashboardData{}, err
	}

	data.Recent = data.Accounts
	if len(data.Recent) > 5 {
		data.Recent = data.Recent[:5]
	}
	data.Types = accountTypeOptions
	return data, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	data, err := s.loadDashboard(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Dashboard load error", "error", err)
		http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleAccountsPartial(w http.ResponseWriter, r *http.Request) {
	s.renderPartial(w, r, "accounts_list.html")
}

func (s *Server) handleTotalsPartial(w http.ResponseWriter, r *http.Request) {
	s.renderPartial(w, r, "totals.html")
}

func (s *Server) renderPartial(w http.ResponseWriter, r *http.Request, name string) {
	data, err := s.loadDashboard(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Partial load error", "error", err, "template", name)
		writeFragment(w, http.StatusInternalServerError, `<div class="error">Failed to load view</div>`)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Partial template execution failed", "error", err, "template", name)
	}
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "url", r.URL.Path)
		writeFragment(w, http.StatusBadRequest, `<div class="error">Invalid request format</div>`)
		return
	}

	draft := core.AccountDraft{
		Name:     sanitizeInput(r.Form.Get("name")),
		Type:     core.AccountType(sanitizeInput(r.Form.Get("type"))),
		Currency: core.Currency(strings.ToUpper(sanitizeInput(r.Form.Get("currency")))),
	}
	if err := draft.Validate(); err != nil {
		writeFragment(w, http.StatusUnprocessableEntity,
			`<div class="error">Invalid account: `+template.HTMLEscapeString(err.Error())+`</div>`)
		return
	}

	id, err := s.store.CreateAccount(r.Context(), draft)
	if err != nil {
		slog.ErrorContext(r.Context(), "Account create error", "error", err, "name", draft.Name)
		writeFragment(w, http.StatusInternalServerError, `<div class="error">Failed to save account</div>`)
		return
	}

	s.invalidateViews()
	w.Header().Set("HX-Trigger", "ledger:changed")
	writeFragment(w, http.StatusOK,
		`<div class="success">Account added: `+template.HTMLEscapeString(draft.Name)+
			` (`+template.HTMLEscapeString(draft.Currency.String())+`)</div>`)
	slog.InfoContext(r.Context(), "Account created via UI", "id", id)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeFragment(w, http.StatusBadRequest, `<div class="error">Invalid request format</div>`)
		return
	}

	id, ok := parseID(r.Form.Get("id"))
	if !ok {
		writeFragment(w, http.StatusUnprocessableEntity, `<div class="error">Invalid account id</div>`)
		return
	}

	// Confirmation happens in the UI; by the time this handler runs the
	// delete is decided.
	if err := s.store.DeleteAccount(r.Context(), id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			writeFragment(w, http.StatusNotFound, `<div class="error">Account not found</div>`)
			return
		}
		slog.ErrorContext(r.Context(), "Account delete error", "error", err, "id", id)
		writeFragment(w, http.StatusInternalServerError, `<div class="error">Failed to delete account</div>`)
		return
	}

	s.invalidateViews()
	w.Header().Set("HX-Trigger", "ledger:changed")
	writeFragment(w, http.StatusOK, `<div class="success">Account and its history deleted</div>`)
}

func (s *Server) handleRecordBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeFragment(w, http.StatusBadRequest, `<div class="error">Invalid request format</div>`)
		return
	}

	id, ok := parseID(r.Form.Get("account_id"))
	if !ok {
		writeFragment(w, http.StatusUnprocessableEntity, `<div class="error">Invalid account id</div>`)
		return
	}
	amount, err := core.ParseAmount(r.Form.Get("amount"))
	if err != nil {
		writeFragment(w, http.StatusUnprocessableEntity, `<div class="error">Invalid amount</div>`)
		return
	}
	notes := sanitizeInput(r.Form.Get("notes"))

	if _, err := s.store.RecordBalance(r.Context(), id, amount, notes); err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			writeFragment(w, http.StatusNotFound, `<div class="error">Account not found</div>`)
		case errors.Is(err, core.ErrInvalidAmount):
			writeFragment(w, http.StatusUnprocessableEntity, `<div class="error">Invalid amount</div>`)
		default:
			slog.ErrorContext(r.Context(), "Balance record error", "error", err, "account_id", id)
			writeFragment(w, http.StatusInternalServerError, `<div class="error">Failed to save balance</div>`)
		}
		return
	}

	s.invalidateViews()
	w.Header().Set("HX-Trigger", "ledger:changed")
	writeFragment(w, http.StatusOK,
		`<div class="success">Balance updated: `+template.HTMLEscapeString(formatAmount(amount))+`</div>`)
}
