package cart

import (
	"context"
	"errors"

	"storefront/internal/domain"
)

// Common errors returned by the repository
var ErrCartNotFound = errors.New("cart not found")

// Repository defines the interface for cart data operations.
// Consumers define this interface, not the MongoDB implementation.
type Repository interface {
	// Get returns a principal's cart, or ErrCartNotFound if the
	// principal has never added anything.
	Get(ctx context.Context, p domain.Principal) (*domain.Cart, error)

	// AddLine upserts a line, summing quantity when a line for that
	// product already exists.
	AddLine(ctx context.Context, p domain.Principal, productID string, quantity int) error

	// RemoveLine deletes a line. Absent lines and absent carts are a
	// no-op.
	RemoveLine(ctx context.Context, p domain.Principal, productID string) error

	// Clear removes all lines for the principal. Idempotent.
	Clear(ctx context.Context, p domain.Principal) error
}
