package auth

import (
	"context"
	"sync"

	"storefront/internal/domain"
)

// MemoryStore implements RoleStore with in-memory storage.
type MemoryStore struct {
	mu    sync.RWMutex
	roles map[domain.Principal]domain.Role
}

// NewMemoryStore creates a new in-memory role store. Optionally seeds
// bootstrap admins so a fresh deployment has at least one principal
// able to assign roles.
func NewMemoryStore(admins ...domain.Principal) *MemoryStore {
	s := &MemoryStore{
		roles: make(map[domain.Principal]domain.Role),
	}
	for _, p := range admins {
		s.roles[p] = domain.RoleAdmin
	}
	return s
}

func (s *MemoryStore) Get(_ context.Context, p domain.Principal) (domain.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if role, exists := s.roles[p]; exists {
		return role, nil
	}
	return domain.RoleGuest, nil
}

func (s *MemoryStore) Set(_ context.Context, p domain.Principal, role domain.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.roles[p] = role
	return nil
}
