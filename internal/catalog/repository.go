package catalog

import (
	"context"
	"errors"

	"storefront/internal/domain"
)

// Common errors returned by the repository
var ErrProductNotFound = errors.New("product not found")

// Repository defines the interface for product storage operations.
// Consumers define this interface, not the implementation.
type Repository interface {
	// Create stores a new product record.
	Create(ctx context.Context, p *domain.Product) error

	// Update replaces an existing record. Returns ErrProductNotFound if
	// the id is unknown.
	Update(ctx context.Context, p *domain.Product) error

	// Delete removes a record. Returns ErrProductNotFound if the id is
	// unknown.
	Delete(ctx context.Context, id string) error

	// Get returns a single product by id.
	Get(ctx context.Context, id string) (*domain.Product, error)

	// List returns all products in creation order.
	List(ctx context.Context) ([]*domain.Product, error)

	// ListFeatured returns currently-flagged products in creation order.
	ListFeatured(ctx context.Context) ([]*domain.Product, error)

	// SetFeatured toggles the featured flag without touching any other
	// attribute.
	SetFeatured(ctx context.Context, id string, featured bool) error
}
