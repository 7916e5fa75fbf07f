package auth

import (
	"context"

	"storefront/internal/domain"
)

// RoleStore defines the interface for role storage operations.
// Consumers define this interface, not the implementation.
type RoleStore interface {
	// Get returns the stored role for a principal, or RoleGuest if the
	// principal was never assigned one.
	Get(ctx context.Context, p domain.Principal) (domain.Role, error)

	// Set assigns a role to a principal, replacing any previous one.
	Set(ctx context.Context, p domain.Principal, role domain.Role) error
}
