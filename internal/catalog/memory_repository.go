package catalog

import (
	"context"
	"sync"

	"storefront/internal/domain"
)

// MemoryRepository implements Repository with in-memory storage. The
// backing slice keeps creation order, so List and ListFeatured match
// the postgres implementation's ordering.
type MemoryRepository struct {
	mu       sync.RWMutex
	products []*domain.Product
	index    map[string]int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		index: make(map[string]int),
	}
}

func (r *MemoryRepository) Create(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *p
	r.products = append(r.products, &stored)
	r.index[p.ID] = len(r.products) - 1
	return nil
}

func (r *MemoryRepository) Update(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, exists := r.index[p.ID]
	if !exists {
		return ErrProductNotFound
	}

	stored := *p
	stored.Featured = r.products[i].Featured
	r.products[i] = &stored
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, exists := r.index[id]
	if !exists {
		return ErrProductNotFound
	}

	r.products = append(r.products[:i], r.products[i+1:]...)
	delete(r.index, id)
	for j := i; j < len(r.products); j++ {
		r.index[r.products[j].ID] = j
	}
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, exists := r.index[id]
	if !exists {
		return nil, ErrProductNotFound
	}

	p := *r.products[i]
	return &p, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *MemoryRepository) ListFeatured(_ context.Context) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Product
	for _, p := range r.products {
		if p.Featured {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *MemoryRepository) SetFeatured(_ context.Context, id string, featured bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, exists := r.index[id]
	if !exists {
		return ErrProductNotFound
	}

	r.products[i].Featured = featured
	return nil
}
