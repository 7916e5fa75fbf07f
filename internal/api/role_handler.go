package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"storefront/internal/auth"
	"storefront/internal/domain"
)

type RoleHandler struct {
	auth *auth.Service
}

func NewRoleHandler(svc *auth.Service) *RoleHandler {
	return &RoleHandler{auth: svc}
}

type RoleResponseDTO struct {
	Principal string `json:"principal"`
	Role      string `json:"role"`
	IsAdmin   bool   `json:"is_admin"`
}

type AssignRoleRequestDTO struct {
	Role string `json:"role"`
}

// CallerRole reports the caller's own role. Unknown principals are
// guests, so this never 404s.
func (h *RoleHandler) CallerRole(w http.ResponseWriter, r *http.Request) {
	caller := principalFromContext(r.Context())
	if caller.IsZero() {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing caller principal")
		return
	}

	role, err := h.auth.Role(r.Context(), caller)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, RoleResponseDTO{
		Principal: string(caller),
		Role:      role.String(),
		IsAdmin:   role == domain.RoleAdmin,
	})
}

func (h *RoleHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	caller := principalFromContext(r.Context())
	if caller.IsZero() {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing caller principal")
		return
	}

	var req AssignRoleRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	target := domain.Principal(chi.URLParam(r, "principal"))
	if err := h.auth.AssignRole(r.Context(), caller, target, domain.Role(req.Role)); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
