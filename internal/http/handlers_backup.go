package http

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"finone/internal/backup"
)

// handleExport streams the full-store snapshot as a downloadable JSON file.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := backup.Export(r.Context(), s.store)
	if err != nil {
		slog.ErrorContext(r.Context(), "Backup export error", "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	filename := "finone-backup-" + time.Now().Format("2006-01-02") + ".json"
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := backup.Encode(w, doc); err != nil {
		// Headers are gone already; log and give up on this response.
		slog.ErrorContext(r.Context(), "Backup encode error", "error", err)
		return
	}

	slog.InfoContext(r.Context(), "Backup exported",
		"accounts", len(doc.Accounts),
		"balances", len(doc.Balances))
}

// handleImport replaces the store contents from an uploaded backup file.
// The UI asks for confirmation before posting here.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	data, err := s.readBackupUpload(r)
	if err != nil {
		slog.WarnContext(r.Context(), "Backup upload read error", "error", err)
		writeFragment(w, http.StatusBadRequest, `<div class="error">Could not read backup file</div>`)
		return
	}

	if err := backup.Import(r.Context(), s.store, data); err != nil {
		if errors.Is(err, backup.ErrMalformedDocument) {
			writeFragment(w, http.StatusUnprocessableEntity, `<div class="error">Not a valid backup file</div>`)
			return
		}
		slog.ErrorContext(r.Context(), "Backup import error", "error", err)
		writeFragment(w, http.StatusInternalServerError, `<div class="error">Import failed, data unchanged</div>`)
		return
	}

	s.invalidateViews()
	w.Header().Set("HX-Trigger", "ledger:changed")
	writeFragment(w, http.StatusOK, `<div class="success">Backup imported</div>`)
	slog.InfoContext(r.Context(), "Backup imported")
}

// readBackupUpload accepts either a multipart form with a "backup" file field
// or a raw JSON body, capped at the configured size.
func (s *Server) readBackupUpload(r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, s.opts.MaxImportBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, _, err := r.FormFile("backup")
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return io.ReadAll(io.LimitReader(file, s.opts.MaxImportBytes))
	}

	return io.ReadAll(r.Body)
}
