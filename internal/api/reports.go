package api

import (
	"bytes"
	"database/sql"
	"net/http"
	"strings"

	"github.com/erazemk/izposoja/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportsHandler serves XLSX exports.
type ReportsHandler struct {
	DB *sql.DB
	Options
}

// Download handles GET /api/reports/{kind}.xlsx. Stats accept ?year=.
func (h *ReportsHandler) Download(w http.ResponseWriter, r *http.Request) {
	name, ok := strings.CutSuffix(r.PathValue("file"), ".xlsx")
	if !ok {
		jsonError(w, http.StatusNotFound, CodeNotFound, "unknown report")
		return
	}
	kind, err := report.ParseKind(name)
	if err != nil {
		jsonError(w, http.StatusNotFound, CodeNotFound, err.Error())
		return
	}
	year, ok := queryInt(r, "year")
	if !ok {
		badRequest(w, "invalid year")
		return
	}

	opts := report.Options{Today: h.Today(), CriticalBelow: h.CriticalIntegrity, Year: year}

	// Buffered so a failure can still produce a JSON error.
	var buf bytes.Buffer
	if err := report.Write(r.Context(), h.DB, kind, opts, &buf); err != nil {
		storeError(w, r, "building report", err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+kind.Filename()+`"`)
	w.Write(buf.Bytes())
}
