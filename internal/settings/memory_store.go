package settings

import (
	"context"
	"sync"

	"storefront/internal/domain"
)

// MemoryStore implements Store with in-memory storage.
type MemoryStore struct {
	mu      sync.RWMutex
	banners []string
	config  *domain.GatewayConfig
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Banners(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.banners))
	copy(out, s.banners)
	return out, nil
}

func (s *MemoryStore) AddBanner(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.banners {
		if existing == url {
			return ErrDuplicateBanner
		}
	}
	s.banners = append(s.banners, url)
	return nil
}

func (s *MemoryStore) DeleteBanner(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.banners {
		if existing == url {
			s.banners = append(s.banners[:i], s.banners[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *MemoryStore) Configuration(_ context.Context) (domain.GatewayConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.config == nil {
		return domain.GatewayConfig{}, ErrNotConfigured
	}

	cfg := domain.GatewayConfig{
		SecretKey:        s.config.SecretKey,
		AllowedCountries: make([]string, len(s.config.AllowedCountries)),
	}
	copy(cfg.AllowedCountries, s.config.AllowedCountries)
	return cfg, nil
}

func (s *MemoryStore) SetConfiguration(_ context.Context, cfg domain.GatewayConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := domain.GatewayConfig{
		SecretKey:        cfg.SecretKey,
		AllowedCountries: make([]string, len(cfg.AllowedCountries)),
	}
	copy(stored.AllowedCountries, cfg.AllowedCountries)
	s.config = &stored
	return nil
}
