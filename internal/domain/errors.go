package domain

import "errors"

// Shared error taxonomy. Services return these (possibly wrapped) so
// the HTTP layer can classify with errors.Is without importing every
// package's sentinels.
var (
	ErrUnauthorized         = errors.New("caller lacks the required role")
	ErrNotFound             = errors.New("not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrEmptyCart            = errors.New("cart is empty, nothing to checkout")
	ErrGatewayNotConfigured = errors.New("payment gateway is not configured")
	ErrGateway              = errors.New("payment gateway error")
	ErrSessionUnresolved    = errors.New("checkout session has no terminal status yet")
)
