package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// CatalogHandler handles categories and the fixed reference lists.
type CatalogHandler struct {
	DB *sql.DB
}

type categoryRequest struct {
	Name string `json:"name"`
}

type createCategoryResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Created bool   `json:"created"`
}

// ListCategories handles GET /api/categories.
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := store.ListCategories(r.Context(), h.DB)
	if err != nil {
		storeError(w, r, "listing categories", err)
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	jsonResponse(w, http.StatusOK, categories)
}

// CreateCategory handles POST /api/categories. An existing category with the
// same name is returned with 200 instead of being duplicated.
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	id, created, err := store.GetOrCreateCategory(r.Context(), h.DB, req.Name)
	if err != nil {
		storeError(w, r, "creating category", err)
		return
	}

	category, err := store.GetCategory(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, "getting category", err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		slog.Info("category created", "category_id", id, "name", category.Name)
	}
	jsonResponse(w, status, createCategoryResponse{ID: id, Name: category.Name, Created: created})
}

// RenameCategory handles PUT /api/categories/{id}.
func (h *CatalogHandler) RenameCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid category id")
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	if err := store.RenameCategory(r.Context(), h.DB, id, req.Name); err != nil {
		storeError(w, r, "renaming category", err)
		return
	}

	category, err := store.GetCategory(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, "getting category", err)
		return
	}
	slog.Info("category renamed", "category_id", id, "name", category.Name)
	jsonResponse(w, http.StatusOK, category)
}

// DeleteCategory handles DELETE /api/categories/{id}.
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid category id")
		return
	}

	if err := store.DeleteCategory(r.Context(), h.DB, id); err != nil {
		storeError(w, r, "deleting category", err)
		return
	}

	slog.Info("category deleted", "category_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// ListStatuses handles GET /api/statuses.
func (h *CatalogHandler) ListStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := store.ListStatuses(r.Context(), h.DB)
	if err != nil {
		storeError(w, r, "listing statuses", err)
		return
	}
	jsonResponse(w, http.StatusOK, statuses)
}

// ListConditions handles GET /api/conditions.
func (h *CatalogHandler) ListConditions(w http.ResponseWriter, r *http.Request) {
	conditions, err := store.ListConditions(r.Context(), h.DB)
	if err != nil {
		storeError(w, r, "listing conditions", err)
		return
	}
	jsonResponse(w, http.StatusOK, conditions)
}
