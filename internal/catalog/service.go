package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"storefront/internal/domain"
)

// Authorizer gates catalog mutations behind the admin role.
type Authorizer interface {
	RequireAdmin(ctx context.Context, p domain.Principal) error
}

// Service owns product records. Reads are unauthenticated; every
// mutation requires admin and is validated before any write.
type Service struct {
	repo  Repository
	authz Authorizer
	log   *logrus.Logger
	now   func() time.Time
}

func NewService(repo Repository, authz Authorizer, log *logrus.Logger) *Service {
	return &Service{
		repo:  repo,
		authz: authz,
		log:   log,
		now:   time.Now,
	}
}

func (s *Service) Create(ctx context.Context, caller domain.Principal, name string, price int64, description string, imageRefs []string) (*domain.Product, error) {
	if err := s.authz.RequireAdmin(ctx, caller); err != nil {
		return nil, err
	}
	if err := validateProduct(name, price); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := &domain.Product{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		Price:       price,
		ImageRefs:   imageRefs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.log.WithFields(logrus.Fields{"product_id": p.ID, "price": price}).Info("product created")
	return p, nil
}

func (s *Service) Update(ctx context.Context, caller domain.Principal, id, name string, price int64, description string, imageRefs []string) (*domain.Product, error) {
	if err := s.authz.RequireAdmin(ctx, caller); err != nil {
		return nil, err
	}
	if err := validateProduct(name, price); err != nil {
		return nil, err
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}

	p := &domain.Product{
		ID:          existing.ID,
		Name:        name,
		Description: description,
		Price:       price,
		ImageRefs:   imageRefs,
		Featured:    existing.Featured,
		CreatedAt:   existing.CreatedAt,
		UpdatedAt:   s.now().UTC(),
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, mapNotFound(err)
	}
	return p, nil
}

// Delete removes the record. Cart lines still holding the id are left
// alone; summary reads drop them lazily.
func (s *Service) Delete(ctx context.Context, caller domain.Principal, id string) error {
	if err := s.authz.RequireAdmin(ctx, caller); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return mapNotFound(err)
	}

	s.log.WithField("product_id", id).Info("product deleted")
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.List(ctx)
}

// ListFeatured returns flagged products in catalog creation order, not
// toggle order.
func (s *Service) ListFeatured(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.ListFeatured(ctx)
}

// SetFeatured is an admin-only metadata toggle; price, description and
// cart state are untouched.
func (s *Service) SetFeatured(ctx context.Context, caller domain.Principal, id string, featured bool) error {
	if err := s.authz.RequireAdmin(ctx, caller); err != nil {
		return err
	}

	if err := s.repo.SetFeatured(ctx, id, featured); err != nil {
		return mapNotFound(err)
	}
	return nil
}

func validateProduct(name string, price int64) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: product name must not be empty", domain.ErrInvalidInput)
	}
	if price < 0 {
		return fmt.Errorf("%w: price must not be negative", domain.ErrInvalidInput)
	}
	return nil
}

func mapNotFound(err error) error {
	if errors.Is(err, ErrProductNotFound) {
		return fmt.Errorf("%w: %v", domain.ErrNotFound, err)
	}
	return err
}
