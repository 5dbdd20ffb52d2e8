package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// RentalsHandler handles the rental lifecycle endpoints.
type RentalsHandler struct {
	DB *sql.DB
	Options
}

// returnRequest is the body of POST /api/rentals/{id}/return. The return
// date defaults to today; integrity is required.
type returnRequest struct {
	ReturnedDate        model.Date `json:"returned_date"`
	IntegrityPercentage *int       `json:"integrity_percentage"`
	Notes               string     `json:"notes"`
}

type purgeResponse struct {
	Deleted int64 `json:"deleted"`
}

// Create handles POST /api/rentals.
func (h *RentalsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.RentalInput
	if err := decodeJSON(r, &in); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	id, err := store.RentItem(r.Context(), h.DB, in)
	if err != nil {
		storeError(w, r, "renting item", err)
		return
	}
	rentalsOpened.Inc()

	rental, err := store.GetRental(r.Context(), h.DB, id, h.Today())
	if err != nil {
		storeError(w, r, "getting rental", err)
		return
	}

	slog.Info("rental opened", "rental_id", id, "item_id", rental.ItemID, "user", rental.UserName,
		"start", rental.StartDate, "end", rental.EndDate)
	jsonResponse(w, http.StatusCreated, rental)
}

// List handles GET /api/rentals?sort=&search=&status=.
func (h *RentalsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.RentalFilter{
		Search: q.Get("search"),
		Status: q.Get("status"),
		Sort:   q.Get("sort"),
	}

	switch filter.Status {
	case "", model.RentalFilterActive, model.RentalFilterOverdue, model.RentalFilterReturned:
	default:
		badRequest(w, "status must be one of: active, overdue, returned")
		return
	}

	rentals, err := store.ListRentals(r.Context(), h.DB, filter, h.Today())
	if err != nil {
		storeError(w, r, "listing rentals", err)
		return
	}
	if rentals == nil {
		rentals = []model.Rental{}
	}
	jsonResponse(w, http.StatusOK, rentals)
}

// Active handles GET /api/rentals/active.
func (h *RentalsHandler) Active(w http.ResponseWriter, r *http.Request) {
	rentals, err := store.ListActiveRentals(r.Context(), h.DB, h.Today())
	if err != nil {
		storeError(w, r, "listing active rentals", err)
		return
	}
	if rentals == nil {
		rentals = []model.Rental{}
	}
	jsonResponse(w, http.StatusOK, rentals)
}

// Get handles GET /api/rentals/{id}.
func (h *RentalsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid rental id")
		return
	}

	rental, err := store.GetRental(r.Context(), h.DB, id, h.Today())
	if err != nil {
		storeError(w, r, "getting rental", err)
		return
	}
	jsonResponse(w, http.StatusOK, rental)
}

// Return handles POST /api/rentals/{id}/return.
func (h *RentalsHandler) Return(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid rental id")
		return
	}

	var req returnRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.IntegrityPercentage == nil {
		badRequest(w, "integrity_percentage required")
		return
	}

	today := h.Today()
	in := model.ReturnInput{
		ReturnedDate:        req.ReturnedDate,
		IntegrityPercentage: *req.IntegrityPercentage,
		Notes:               req.Notes,
	}
	if in.ReturnedDate.IsZero() {
		in.ReturnedDate = today
	}

	if err := store.ReturnItem(r.Context(), h.DB, id, in); err != nil {
		storeError(w, r, "returning item", err)
		return
	}

	rental, err := store.GetRental(r.Context(), h.DB, id, today)
	if err != nil {
		storeError(w, r, "getting rental", err)
		return
	}

	late := rental.Status == model.RentalStatusReturnedLate
	rentalsClosed.WithLabelValues(strconv.FormatBool(late)).Inc()
	slog.Info("rental closed", "rental_id", id, "item_id", rental.ItemID,
		"returned", rental.ReturnedDate, "late", late, "integrity", in.IntegrityPercentage)
	jsonResponse(w, http.StatusOK, rental)
}

// Purge handles DELETE /api/rentals?confirm=true. Only closed rentals are removed.
func (h *RentalsHandler) Purge(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		badRequest(w, "purging history requires confirm=true")
		return
	}

	n, err := store.PurgeHistory(r.Context(), h.DB)
	if err != nil {
		storeError(w, r, "purging history", err)
		return
	}
	historyPurged.Add(float64(n))

	slog.Info("history purged", "deleted", n)
	jsonResponse(w, http.StatusOK, purgeResponse{Deleted: n})
}
