package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/catalog"
)

type ProductHandler struct {
	catalog *catalog.Service
}

func NewProductHandler(svc *catalog.Service) *ProductHandler {
	return &ProductHandler{catalog: svc}
}

type ProductRequestDTO struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	ImageRefs   []string `json:"image_refs"`
}

type SetFeaturedRequestDTO struct {
	Featured bool `json:"featured"`
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) ListFeatured(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListFeatured(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller := principalFromContext(r.Context())
	if caller.IsZero() {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing caller principal")
		return
	}

	var req ProductRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	product, err := h.catalog.Create(r.Context(), caller, req.Name, req.Price, req.Description, req.ImageRefs)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller := principalFromContext(r.Context())
	if caller.IsZero() {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing caller principal")
		return
	}

	var req ProductRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	product, err := h.catalog.Update(r.Context(), caller, chi.URLParam(r, "id"), req.Name, req.Price, req.Description, req.ImageRefs)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := principalFromContext(r.Context())
	if caller.IsZero() {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing caller principal")
		return
	}

	if err := h.catalog.Delete(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *ProductHandler) SetFeatured(w http.ResponseWriter, r *http.Request) {
	caller := principalFromContext(r.Context())
	if caller.IsZero() {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing caller principal")
		return
	}

	var req SetFeaturedRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.catalog.SetFeatured(r.Context(), caller, chi.URLParam(r, "id"), req.Featured); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
