package api

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erazemk/izposoja/internal/model"
)

// Options configure the API.
type Options struct {
	// CriticalIntegrity flags items below this integrity. Zero flags nothing.
	CriticalIntegrity int
	// Today returns the day rental labels are derived for. Nil means model.Today.
	Today func() model.Date
}

func (o Options) withDefaults() Options {
	if o.Today == nil {
		o.Today = model.Today
	}
	return o
}

// NewRouter creates the API router with all endpoints registered, wrapped in
// the metrics middleware.
func NewRouter(db *sql.DB, opts Options) http.Handler {
	opts = opts.withDefaults()
	mux := http.NewServeMux()

	catalog := &CatalogHandler{DB: db}
	items := &ItemsHandler{DB: db, Options: opts}
	rentals := &RentalsHandler{DB: db, Options: opts}
	stats := &StatsHandler{DB: db, Options: opts}
	reports := &ReportsHandler{DB: db, Options: opts}

	// Catalog.
	mux.HandleFunc("GET /api/categories", catalog.ListCategories)
	mux.HandleFunc("POST /api/categories", catalog.CreateCategory)
	mux.HandleFunc("PUT /api/categories/{id}", catalog.RenameCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", catalog.DeleteCategory)
	mux.HandleFunc("GET /api/statuses", catalog.ListStatuses)
	mux.HandleFunc("GET /api/conditions", catalog.ListConditions)

	// Items.
	mux.HandleFunc("GET /api/items", items.List)
	mux.HandleFunc("POST /api/items", items.Create)
	mux.HandleFunc("GET /api/items/{id}", items.Get)
	mux.HandleFunc("PUT /api/items/{id}", items.Update)
	mux.HandleFunc("DELETE /api/items/{id}", items.Delete)
	mux.HandleFunc("PUT /api/items/{id}/image", items.UploadImage)
	mux.HandleFunc("GET /api/items/{id}/image", items.GetImage)
	mux.HandleFunc("GET /api/items/{id}/rentals", items.Rentals)

	// Rentals.
	mux.HandleFunc("POST /api/rentals", rentals.Create)
	mux.HandleFunc("GET /api/rentals", rentals.List)
	mux.HandleFunc("DELETE /api/rentals", rentals.Purge)
	mux.HandleFunc("GET /api/rentals/active", rentals.Active)
	mux.HandleFunc("GET /api/rentals/{id}", rentals.Get)
	mux.HandleFunc("POST /api/rentals/{id}/return", rentals.Return)

	// Statistics.
	mux.HandleFunc("GET /api/stats/popular", stats.Popular)
	mux.HandleFunc("GET /api/stats/wear", stats.Wear)
	mux.HandleFunc("GET /api/stats/monthly", stats.Monthly)
	mux.HandleFunc("GET /api/stats/summary", stats.Summary)

	// Spreadsheet exports.
	mux.HandleFunc("GET /api/reports/{file}", reports.Download)

	// Operations.
	mux.HandleFunc("GET /healthz", healthHandler(db))
	mux.Handle("GET /metrics", promhttp.Handler())

	return MetricsMiddleware(mux)
}

func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			jsonError(w, http.StatusServiceUnavailable, CodeInternalError, "database unavailable")
			return
		}
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
