package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/izposoja/internal/imaging"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// ItemsHandler handles item CRUD endpoints.
type ItemsHandler struct {
	DB *sql.DB
	Options
}

// itemRequest is the body of POST and PUT /api/items. A category may be
// given by id or by name; a new name creates the category together with the
// item. Omitted status and integrity default to Available and 100 on create
// and keep their stored values on update.
type itemRequest struct {
	InventoryNumber     string     `json:"inventory_number"`
	Name                string     `json:"name"`
	CategoryID          int64      `json:"category_id"`
	CategoryName        string     `json:"category_name"`
	StatusID            int64      `json:"status_id"`
	IntegrityPercentage *int       `json:"integrity_percentage"`
	PurchaseDate        model.Date `json:"purchase_date"`
	Notes               string     `json:"notes"`
}

// itemInput turns the request into registry input. base is the stored item
// on update and nil on create.
func (h *ItemsHandler) itemInput(r *http.Request, req itemRequest, base *model.Item) (model.ItemInput, error) {
	in := model.ItemInput{
		InventoryNumber:     req.InventoryNumber,
		Name:                req.Name,
		CategoryID:          req.CategoryID,
		CategoryName:        req.CategoryName,
		StatusID:            req.StatusID,
		IntegrityPercentage: model.MaxIntegrity,
		PurchaseDate:        req.PurchaseDate,
		Notes:               req.Notes,
	}

	switch {
	case req.IntegrityPercentage != nil:
		in.IntegrityPercentage = *req.IntegrityPercentage
	case base != nil:
		in.IntegrityPercentage = base.IntegrityPercentage
	}

	if base != nil {
		if in.CategoryID == 0 && in.CategoryName == "" {
			in.CategoryID = base.CategoryID
		}
		if in.StatusID == 0 {
			in.StatusID = base.StatusID
		}
	}

	if in.StatusID == 0 {
		id, err := store.StatusIDByName(r.Context(), h.DB, model.StatusAvailable)
		if err != nil {
			return in, err
		}
		in.StatusID = id
	}
	return in, nil
}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := queryInt(r, "category_id")
	if !ok {
		badRequest(w, "invalid category_id")
		return
	}
	statusID, ok := queryInt(r, "status_id")
	if !ok {
		badRequest(w, "invalid status_id")
		return
	}

	filter := model.ItemFilter{
		Search:     r.URL.Query().Get("search"),
		CategoryID: int64(categoryID),
		StatusID:   int64(statusID),
	}
	items, err := store.ListItemDetails(r.Context(), h.DB, filter, h.CriticalIntegrity)
	if err != nil {
		storeError(w, r, "listing items", err)
		return
	}
	if items == nil {
		items = []model.ItemDetail{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	in, err := h.itemInput(r, req, nil)
	if err != nil {
		storeError(w, r, "creating item", err)
		return
	}

	item, err := store.CreateItem(r.Context(), h.DB, in)
	if err != nil {
		storeError(w, r, "creating item", err)
		return
	}

	slog.Info("item created", "item_id", item.ID, "inventory_number", item.InventoryNumber,
		"name", item.Name, "category_id", item.CategoryID)
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, "getting item", err)
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid item id")
		return
	}

	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	current, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, "getting item", err)
		return
	}

	in, err := h.itemInput(r, req, current)
	if err != nil {
		storeError(w, r, "updating item", err)
		return
	}

	if err := store.UpdateItem(r.Context(), h.DB, id, in); err != nil {
		storeError(w, r, "updating item", err)
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, "getting item", err)
		return
	}
	slog.Info("item updated", "item_id", id, "status_id", item.StatusID, "integrity", item.IntegrityPercentage)
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid item id")
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, id); err != nil {
		storeError(w, r, "deleting item", err)
		return
	}

	slog.Info("item deleted", "item_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// UploadImage handles PUT /api/items/{id}/image with a multipart "image" field.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid item id")
		return
	}

	// Room for the multipart envelope on top of the image itself.
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+1<<20)

	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusRequestEntityTooLarge, CodeValidationError, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		badRequest(w, "image file required")
		return
	}
	defer file.Close()

	photo, err := imaging.PreparePhoto(file)
	switch {
	case errors.Is(err, imaging.ErrTooLarge):
		jsonError(w, http.StatusRequestEntityTooLarge, CodeValidationError, err.Error())
		return
	case errors.Is(err, imaging.ErrUnsupported):
		badRequest(w, err.Error())
		return
	case err != nil:
		slog.Error("processing image", "error", err, "request_id", RequestID(r.Context()))
		jsonError(w, http.StatusInternalServerError, CodeInternalError, "processing image failed")
		return
	}

	if err := store.SetItemImage(r.Context(), h.DB, id, photo.Data, photo.MIME); err != nil {
		storeError(w, r, "saving image", err)
		return
	}

	slog.Info("item image updated", "item_id", id, "width", photo.Width, "height", photo.Height)
	jsonResponse(w, http.StatusOK, map[string]any{"width": photo.Width, "height": photo.Height})
}

// GetImage handles GET /api/items/{id}/image. With ?size=thumb a thumbnail is returned.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid item id")
		return
	}

	data, mime, err := store.GetItemImage(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, "getting image", err)
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, CodeNotFound, "item has no image")
		return
	}

	if r.URL.Query().Get("size") == "thumb" {
		thumb, err := imaging.Thumbnail(data)
		if err != nil {
			slog.Error("making thumbnail", "item_id", id, "error", err)
			jsonError(w, http.StatusInternalServerError, CodeInternalError, "making thumbnail failed")
			return
		}
		data, mime = thumb.Data, thumb.MIME
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=60")
	w.Write(data)
}

// Rentals handles GET /api/items/{id}/rentals.
func (h *ItemsHandler) Rentals(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid item id")
		return
	}

	if _, err := store.GetItem(r.Context(), h.DB, id); err != nil {
		storeError(w, r, "getting item", err)
		return
	}

	rentals, err := store.ListRentals(r.Context(), h.DB, model.RentalFilter{ItemID: id}, h.Today())
	if err != nil {
		storeError(w, r, "listing rentals", err)
		return
	}
	if rentals == nil {
		rentals = []model.Rental{}
	}
	jsonResponse(w, http.StatusOK, rentals)
}
