package checkout

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain"
)

// Common errors returned by the repository
var (
	ErrSessionNotFound   = errors.New("checkout session not found")
	ErrIllegalTransition = errors.New("illegal transition of session status")
)

// OutboxEvent is one row of the transactional outbox: terminal-state
// transitions are recorded together with the event announcing them,
// and a poller publishes events afterwards.
type OutboxEvent struct {
	ID          string
	AggregateID string // session id, used as the kafka partition key
	EventType   string
	Payload     []byte
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// Repository defines the interface for session and outbox persistence.
type Repository interface {
	// CreateSession stores a freshly created pending session.
	CreateSession(ctx context.Context, s *domain.Session) error

	// GetSession returns the local record for a session id.
	GetSession(ctx context.Context, id string) (*domain.Session, error)

	// CompleteSession transitions pending -> completed and enqueues the
	// outbox event in the same transaction. Completing an
	// already-completed session is a no-op; any other terminal state
	// returns ErrIllegalTransition.
	CompleteSession(ctx context.Context, id, rawResponse string, event *OutboxEvent) error

	// FailSession transitions pending -> failed. Failing an
	// already-failed session is a no-op.
	FailSession(ctx context.Context, id, reason string) error

	// UnprocessedEvents returns up to limit unpublished outbox events,
	// oldest first.
	UnprocessedEvents(ctx context.Context, limit int) ([]*OutboxEvent, error)

	// MarkEventProcessed stamps an event as published.
	MarkEventProcessed(ctx context.Context, id string) error
}
