package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/checkout"
)

type CheckoutHandler struct {
	checkout *checkout.Service
}

func NewCheckoutHandler(svc *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{checkout: svc}
}

type CreateSessionRequestDTO struct {
	SuccessURL string `json:"success_url"`
	CancelURL  string `json:"cancel_url"`
}

func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	caller := principalFromContext(r.Context())
	if caller.IsZero() {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing caller principal")
		return
	}

	var req CreateSessionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	encoded, err := h.checkout.CreateSession(r.Context(), caller, req.SuccessURL, req.CancelURL)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	// CreateSession already returns the {id,url} pair as a JSON string.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	w.Write([]byte(encoded))
}

func (h *CheckoutHandler) SessionStatus(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.checkout.SessionStatus(r.Context(), chi.URLParam(r, "session_id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, outcome)
}
