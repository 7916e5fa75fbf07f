package settings

import (
	"context"
	"errors"

	"storefront/internal/domain"
)

// Common errors returned by the store
var (
	ErrDuplicateBanner = errors.New("banner url already exists")
	ErrNotConfigured   = errors.New("no gateway configuration stored")
)

// Store defines the interface for banner and gateway-configuration
// storage. Banners are an ordered, duplicate-rejecting sequence; the
// gateway configuration is a wholesale-overwritten singleton.
type Store interface {
	// Banners returns all banner urls in insertion order.
	Banners(ctx context.Context) ([]string, error)

	// AddBanner appends a banner url. Returns ErrDuplicateBanner if the
	// url is already present.
	AddBanner(ctx context.Context, url string) error

	// DeleteBanner removes a banner url. Absent urls are a no-op.
	DeleteBanner(ctx context.Context, url string) error

	// Configuration returns the stored gateway configuration, or
	// ErrNotConfigured when none has been set.
	Configuration(ctx context.Context) (domain.GatewayConfig, error)

	// SetConfiguration overwrites the singleton wholesale.
	SetConfiguration(ctx context.Context, cfg domain.GatewayConfig) error
}
