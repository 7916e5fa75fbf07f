package cart

import (
	"context"
	"sync"
	"time"

	"storefront/internal/domain"
)

// MemoryRepository implements Repository with in-memory storage, one
// lock-guarded cart per principal.
type MemoryRepository struct {
	mu    sync.RWMutex
	carts map[domain.Principal]*domain.Cart
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		carts: make(map[domain.Principal]*domain.Cart),
	}
}

func (r *MemoryRepository) Get(_ context.Context, p domain.Principal) (*domain.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, exists := r.carts[p]
	if !exists {
		return nil, ErrCartNotFound
	}

	cp := *cart
	cp.Lines = make([]domain.CartLine, len(cart.Lines))
	copy(cp.Lines, cart.Lines)
	return &cp, nil
}

func (r *MemoryRepository) AddLine(_ context.Context, p domain.Principal, productID string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cart, exists := r.carts[p]
	if !exists {
		cart = &domain.Cart{Principal: p, CreatedAt: now}
		r.carts[p] = cart
	}

	cart.UpdatedAt = now
	for i := range cart.Lines {
		if cart.Lines[i].ProductID == productID {
			cart.Lines[i].Quantity += quantity
			return nil
		}
	}

	cart.Lines = append(cart.Lines, domain.CartLine{
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   now,
	})
	return nil
}

func (r *MemoryRepository) RemoveLine(_ context.Context, p domain.Principal, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, exists := r.carts[p]
	if !exists {
		return nil
	}

	for i, line := range cart.Lines {
		if line.ProductID == productID {
			cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
			cart.UpdatedAt = time.Now()
			return nil
		}
	}
	return nil
}

func (r *MemoryRepository) Clear(_ context.Context, p domain.Principal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, p)
	return nil
}
