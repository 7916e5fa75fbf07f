package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/cart"
)

type CartHandler struct {
	carts *cart.Service
}

func NewCartHandler(svc *cart.Service) *CartHandler {
	return &CartHandler{carts: svc}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *CartHandler) Summary(w http.ResponseWriter, r *http.Request) {
	caller := principalFromContext(r.Context())
	if caller.IsZero() {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing caller principal")
		return
	}

	summary, err := h.carts.Summary(r.Context(), caller)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	caller := principalFromContext(r.Context())
	if caller.IsZero() {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing caller principal")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	if err := h.carts.Add(r.Context(), caller, req.ProductID, req.Quantity); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, nil)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	caller := principalFromContext(r.Context())
	if caller.IsZero() {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing caller principal")
		return
	}

	if err := h.carts.Remove(r.Context(), caller, chi.URLParam(r, "product_id")); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	caller := principalFromContext(r.Context())
	if caller.IsZero() {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing caller principal")
		return
	}

	if err := h.carts.Clear(r.Context(), caller); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
