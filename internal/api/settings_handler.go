package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/settings"
)

type SettingsHandler struct {
	settings *settings.Service
}

func NewSettingsHandler(svc *settings.Service) *SettingsHandler {
	return &SettingsHandler{settings: svc}
}

type BannerRequestDTO struct {
	URL string `json:"url"`
}

type ConfigurationDTO struct {
	SecretKey        string   `json:"secret_key"`
	AllowedCountries []string `json:"allowed_countries"`
}

type ConfiguredResponseDTO struct {
	Configured bool `json:"configured"`
}

func (h *SettingsHandler) ListBanners(w http.ResponseWriter, r *http.Request) {
	banners, err := h.settings.Banners(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, banners)
}

func (h *SettingsHandler) AddBanner(w http.ResponseWriter, r *http.Request) {
	caller := principalFromContext(r.Context())
	if caller.IsZero() {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing caller principal")
		return
	}

	var req BannerRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.settings.AddBanner(r.Context(), caller, req.URL); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, BannerRequestDTO{URL: req.URL})
}

// DeleteBanner takes the banner URL as a query parameter because
// banner identifiers are themselves URLs.
func (h *SettingsHandler) DeleteBanner(w http.ResponseWriter, r *http.Request) {
	caller := principalFromContext(r.Context())
	if caller.IsZero() {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing caller principal")
		return
	}

	url := r.URL.Query().Get("url")
	if url == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "url query parameter is required")
		return
	}

	if err := h.settings.DeleteBanner(r.Context(), caller, url); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *SettingsHandler) GetConfiguration(w http.ResponseWriter, r *http.Request) {
	caller := principalFromContext(r.Context())
	if caller.IsZero() {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing caller principal")
		return
	}

	cfg, err := h.settings.Configuration(r.Context(), caller)
	if err != nil {
		if errors.Is(err, settings.ErrNotConfigured) {
			respondError(w, http.StatusNotFound, "not_configured", "gateway configuration is not set")
			return
		}
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ConfigurationDTO{
		SecretKey:        cfg.SecretKey,
		AllowedCountries: cfg.AllowedCountries,
	})
}

func (h *SettingsHandler) SetConfiguration(w http.ResponseWriter, r *http.Request) {
	caller := principalFromContext(r.Context())
	if caller.IsZero() {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing caller principal")
		return
	}

	var req ConfigurationDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	cfg := domain.GatewayConfig{SecretKey: req.SecretKey, AllowedCountries: req.AllowedCountries}
	if err := h.settings.SetConfiguration(r.Context(), caller, cfg); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *SettingsHandler) IsConfigured(w http.ResponseWriter, r *http.Request) {
	configured, err := h.settings.IsConfigured(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ConfiguredResponseDTO{Configured: configured})
}
