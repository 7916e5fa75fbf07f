package auth

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"storefront/internal/domain"
)

// Service is the role authority. Role storage is intentionally flat:
// three mutually exclusive levels, no hierarchy.
type Service struct {
	store RoleStore
	log   *logrus.Logger
}

func NewService(store RoleStore, log *logrus.Logger) *Service {
	return &Service{store: store, log: log}
}

// Role returns the caller's role. Principals never assigned one are
// guests; this never fails on absence.
func (s *Service) Role(ctx context.Context, p domain.Principal) (domain.Role, error) {
	return s.store.Get(ctx, p)
}

// IsAdmin is a convenience predicate with no side effects.
func (s *Service) IsAdmin(ctx context.Context, p domain.Principal) (bool, error) {
	role, err := s.store.Get(ctx, p)
	if err != nil {
		return false, err
	}
	return role == domain.RoleAdmin, nil
}

// AssignRole sets target's role. Only admins may assign roles.
// Reassigning the same role is a no-op success.
func (s *Service) AssignRole(ctx context.Context, caller, target domain.Principal, role domain.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}

	if err := s.RequireAdmin(ctx, caller); err != nil {
		return err
	}

	current, err := s.store.Get(ctx, target)
	if err != nil {
		return fmt.Errorf("failed to read current role: %w", err)
	}
	if current == role {
		return nil
	}

	if err := s.store.Set(ctx, target, role); err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"target": string(target),
		"role":   role.String(),
	}).Info("role assigned")
	return nil
}

// RequireAdmin is the capability predicate checked once at the entry
// of every privileged operation.
func (s *Service) RequireAdmin(ctx context.Context, p domain.Principal) error {
	admin, err := s.IsAdmin(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to resolve caller role: %w", err)
	}
	if !admin {
		return domain.ErrUnauthorized
	}
	return nil
}
