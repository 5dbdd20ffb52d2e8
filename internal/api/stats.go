package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// StatsHandler serves the read-only aggregations.
type StatsHandler struct {
	DB *sql.DB
	Options
}

func rankingLimit(r *http.Request) (int, bool) {
	limit, ok := queryInt(r, "limit")
	if !ok {
		return 0, false
	}
	if limit == 0 {
		limit = store.DefaultRankingLimit
	}
	return limit, true
}

// Popular handles GET /api/stats/popular?limit=.
func (h *StatsHandler) Popular(w http.ResponseWriter, r *http.Request) {
	limit, ok := rankingLimit(r)
	if !ok {
		badRequest(w, "invalid limit")
		return
	}

	items, err := store.MostRented(r.Context(), h.DB, limit)
	if err != nil {
		storeError(w, r, "ranking popular items", err)
		return
	}
	if items == nil {
		items = []model.PopularItem{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Wear handles GET /api/stats/wear?limit=.
func (h *StatsHandler) Wear(w http.ResponseWriter, r *http.Request) {
	limit, ok := rankingLimit(r)
	if !ok {
		badRequest(w, "invalid limit")
		return
	}

	items, err := store.MostWorn(r.Context(), h.DB, limit)
	if err != nil {
		storeError(w, r, "ranking worn items", err)
		return
	}
	if items == nil {
		items = []model.WornItem{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Monthly handles GET /api/stats/monthly?year=. Without a year all years are counted.
func (h *StatsHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	year, ok := queryInt(r, "year")
	if !ok {
		badRequest(w, "invalid year")
		return
	}

	months, err := store.MonthlyRentals(r.Context(), h.DB, year)
	if err != nil {
		storeError(w, r, "counting monthly rentals", err)
		return
	}
	jsonResponse(w, http.StatusOK, months)
}

// Summary handles GET /api/stats/summary.
func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := store.GetSummary(r.Context(), h.DB, h.Today(), h.CriticalIntegrity)
	if err != nil {
		storeError(w, r, "summarizing", err)
		return
	}
	jsonResponse(w, http.StatusOK, summary)
}
