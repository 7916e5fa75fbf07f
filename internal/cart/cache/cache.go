package cache

import (
	"context"
	"errors"

	"storefront/internal/domain"
)

// Cache holds recently-read carts keyed by principal.
type Cache interface {
	Get(ctx context.Context, p domain.Principal) (*domain.Cart, error)
	Set(ctx context.Context, p domain.Principal, cart *domain.Cart) error
	Delete(ctx context.Context, p domain.Principal) error
}

var ErrCacheMiss = errors.New("cache miss")
