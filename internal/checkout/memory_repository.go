package checkout

import (
	"context"
	"sync"
	"time"

	"storefront/internal/domain"
)

// MemoryRepository implements Repository with in-memory storage.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	outbox   []*OutboxEvent
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		sessions: make(map[string]*domain.Session),
	}
}

func (r *MemoryRepository) CreateSession(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *s
	stored.Items = make([]domain.LineItem, len(s.Items))
	copy(stored.Items, s.Items)
	r.sessions[s.ID] = &stored
	return nil
}

func (r *MemoryRepository) GetSession(_ context.Context, id string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.sessions[id]
	if !exists {
		return nil, ErrSessionNotFound
	}

	cp := *s
	cp.Items = make([]domain.LineItem, len(s.Items))
	copy(cp.Items, s.Items)
	return &cp, nil
}

func (r *MemoryRepository) CompleteSession(_ context.Context, id, rawResponse string, event *OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, exists := r.sessions[id]
	if !exists {
		return ErrSessionNotFound
	}

	if s.Status == domain.SessionStatusCompleted {
		return nil
	}
	if !domain.CanTransitionTo(s.Status, domain.SessionStatusCompleted) {
		return ErrIllegalTransition
	}

	s.Status = domain.SessionStatusCompleted
	s.RawResponse = rawResponse
	s.UpdatedAt = time.Now()
	r.outbox = append(r.outbox, event)
	return nil
}

func (r *MemoryRepository) FailSession(_ context.Context, id, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, exists := r.sessions[id]
	if !exists {
		return ErrSessionNotFound
	}

	if s.Status == domain.SessionStatusFailed {
		return nil
	}
	if !domain.CanTransitionTo(s.Status, domain.SessionStatusFailed) {
		return ErrIllegalTransition
	}

	s.Status = domain.SessionStatusFailed
	s.FailureMsg = reason
	s.UpdatedAt = time.Now()
	return nil
}

func (r *MemoryRepository) UnprocessedEvents(_ context.Context, limit int) ([]*OutboxEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var events []*OutboxEvent
	for _, e := range r.outbox {
		if e.ProcessedAt == nil {
			events = append(events, e)
			if len(events) == limit {
				break
			}
		}
	}
	return events, nil
}

func (r *MemoryRepository) MarkEventProcessed(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, e := range r.outbox {
		if e.ID == id {
			e.ProcessedAt = &now
			return nil
		}
	}
	return nil
}
