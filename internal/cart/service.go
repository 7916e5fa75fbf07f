package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"storefront/internal/cart/cache"
	"storefront/internal/domain"
)

// ProductResolver is the slice of the catalog the cart needs: price
// and existence at read time.
type ProductResolver interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
}

// Service is the per-principal cart store. Lines hold product
// references only; pricing is resolved from the live catalog on every
// summary read, so a price change is visible immediately until
// checkout snapshots it.
type Service struct {
	repo     Repository
	cache    cache.Cache
	products ProductResolver
	log      *logrus.Logger
	sfg      singleflight.Group // Prevents cache stampede
}

func NewService(repo Repository, c cache.Cache, products ProductResolver, log *logrus.Logger) *Service {
	return &Service{
		repo:     repo,
		cache:    c,
		products: products,
		log:      log,
	}
}

// Add upserts a line for the principal, summing the quantity when the
// product is already in the cart.
func (s *Service) Add(ctx context.Context, p domain.Principal, productID string, quantity int) error {
	if quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", domain.ErrInvalidInput)
	}

	// The product must exist at add time; the reference is validated
	// again on every summary read.
	if _, err := s.products.Get(ctx, productID); err != nil {
		return err
	}

	if err := s.repo.AddLine(ctx, p, productID, quantity); err != nil {
		s.log.WithError(err).Warn("repo add line failed")
		return err
	}

	s.invalidateCache(p)
	return nil
}

// Remove deletes the line for the product. Removing something not in
// the cart succeeds and changes nothing.
func (s *Service) Remove(ctx context.Context, p domain.Principal, productID string) error {
	if err := s.repo.RemoveLine(ctx, p, productID); err != nil {
		s.log.WithError(err).Warn("repo remove line failed")
		return err
	}

	s.invalidateCache(p)
	return nil
}

// Clear removes every line for the principal. Idempotent.
func (s *Service) Clear(ctx context.Context, p domain.Principal) error {
	if err := s.repo.Clear(ctx, p); err != nil {
		s.log.WithError(err).Warn("repo clear cart failed")
		return err
	}

	s.invalidateCache(p)
	return nil
}

// Summary resolves the cart against current product state. Lines whose
// product has been deleted are dropped, and the total always reflects
// prices as of this read.
func (s *Service) Summary(ctx context.Context, p domain.Principal) (*domain.CartSummary, error) {
	cart, err := s.getCart(ctx, p)
	if err != nil {
		return nil, err
	}

	summary := &domain.CartSummary{Items: make([]domain.CartItem, 0, len(cart.Lines))}
	for _, line := range cart.Lines {
		product, err := s.products.Get(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue // orphaned line, deleted product
			}
			return nil, fmt.Errorf("failed to resolve product %s: %w", line.ProductID, err)
		}

		summary.Items = append(summary.Items, domain.CartItem{Product: *product, Quantity: line.Quantity})
		summary.TotalAmount += product.Price * int64(line.Quantity)
	}

	return summary, nil
}

func (s *Service) getCart(ctx context.Context, p domain.Principal) (*domain.Cart, error) {
	// Singleflight collapses concurrent cache misses for the same key.
	v, err, _ := s.sfg.Do(string(p), func() (interface{}, error) {
		cart, err := s.cache.Get(ctx, p)
		if err == nil {
			return cart, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.WithError(err).Warn("cache get failed") // log cache error but continue
		}

		cart, errGet := s.repo.Get(ctx, p)
		if errGet != nil {
			if errors.Is(errGet, ErrCartNotFound) {
				// A principal with no cart document has an empty cart.
				return &domain.Cart{Principal: p}, nil
			}
			return nil, errGet
		}

		// Populate synchronously: a write that follows this read then
		// invalidates strictly after the set, so the cache never
		// reinstates a cart from before that write.
		if errSet := s.cache.Set(ctx, p, cart); errSet != nil {
			s.log.WithError(errSet).Warn("cache set failed")
		}

		return cart, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

func (s *Service) invalidateCache(p domain.Principal) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, p); err != nil {
		s.log.WithError(err).Warn("cache invalidate failed")
	}
}
