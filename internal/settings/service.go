package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"storefront/internal/domain"
)

// Authorizer gates mutations behind the admin role.
type Authorizer interface {
	RequireAdmin(ctx context.Context, p domain.Principal) error
}

// Service owns promotional banners and the gateway credential
// singleton. Reads are open; every mutation requires admin.
type Service struct {
	store Store
	authz Authorizer
	log   *logrus.Logger
}

func NewService(store Store, authz Authorizer, log *logrus.Logger) *Service {
	return &Service{store: store, authz: authz, log: log}
}

func (s *Service) Banners(ctx context.Context) ([]string, error) {
	return s.store.Banners(ctx)
}

func (s *Service) AddBanner(ctx context.Context, caller domain.Principal, url string) error {
	if err := s.authz.RequireAdmin(ctx, caller); err != nil {
		return err
	}
	if url == "" {
		return fmt.Errorf("%w: banner url must not be empty", domain.ErrInvalidInput)
	}

	if err := s.store.AddBanner(ctx, url); err != nil {
		if errors.Is(err, ErrDuplicateBanner) {
			return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		return err
	}

	s.log.WithField("url", url).Info("banner added")
	return nil
}

func (s *Service) DeleteBanner(ctx context.Context, caller domain.Principal, url string) error {
	if err := s.authz.RequireAdmin(ctx, caller); err != nil {
		return err
	}
	return s.store.DeleteBanner(ctx, url)
}

// Configuration returns the stored gateway configuration. Only admins
// may read it back; the secret must not leak to regular callers.
func (s *Service) Configuration(ctx context.Context, caller domain.Principal) (domain.GatewayConfig, error) {
	if err := s.authz.RequireAdmin(ctx, caller); err != nil {
		return domain.GatewayConfig{}, err
	}
	return s.store.Configuration(ctx)
}

// GatewayConfiguration is the unauthenticated internal read used by
// the checkout orchestrator.
func (s *Service) GatewayConfiguration(ctx context.Context) (domain.GatewayConfig, error) {
	return s.store.Configuration(ctx)
}

func (s *Service) SetConfiguration(ctx context.Context, caller domain.Principal, cfg domain.GatewayConfig) error {
	if err := s.authz.RequireAdmin(ctx, caller); err != nil {
		return err
	}
	if cfg.SecretKey == "" {
		return fmt.Errorf("%w: secret key must not be empty", domain.ErrInvalidInput)
	}

	if err := s.store.SetConfiguration(ctx, cfg); err != nil {
		return fmt.Errorf("failed to store gateway configuration: %w", err)
	}

	s.log.WithField("allowed_countries", len(cfg.AllowedCountries)).Info("gateway configuration updated")
	return nil
}

// IsConfigured reports whether a non-empty secret is stored. Open to
// all callers so the storefront can decide whether checkout is live.
func (s *Service) IsConfigured(ctx context.Context) (bool, error) {
	cfg, err := s.store.Configuration(ctx)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return false, nil
		}
		return false, err
	}
	return cfg.IsConfigured(), nil
}
