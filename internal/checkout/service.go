package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"storefront/internal/domain"
	"storefront/internal/settings"
	"storefront/internal/stripe"
)

const (
	snapshotCurrency = "usd"

	// EventCheckoutCompleted is the outbox event type announcing a paid
	// session.
	EventCheckoutCompleted = "checkout.completed"
)

// CartReader is the slice of the cart store the orchestrator needs.
type CartReader interface {
	Summary(ctx context.Context, p domain.Principal) (*domain.CartSummary, error)
}

// ConfigReader supplies the gateway credential singleton.
type ConfigReader interface {
	GatewayConfiguration(ctx context.Context) (domain.GatewayConfig, error)
}

// EncodedSession is the application-level encoding handed back to the
// storefront: the session id plus the hosted payment page url.
type EncodedSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Service orchestrates checkout: it snapshots the cart into frozen
// line items, creates the hosted session at the gateway, and answers
// status lookups. The cart snapshot is taken synchronously before the
// gateway call, so no store lock is held while the call is in flight
// and concurrent cart edits cannot touch an already-created session.
type Service struct {
	carts   CartReader
	config  ConfigReader
	gateway stripe.Client
	repo    Repository
	log     *logrus.Logger
	timeout time.Duration
	now     func() time.Time
}

func NewService(carts CartReader, config ConfigReader, gateway stripe.Client, repo Repository, log *logrus.Logger, gatewayTimeout time.Duration) *Service {
	return &Service{
		carts:   carts,
		config:  config,
		gateway: gateway,
		repo:    repo,
		log:     log,
		timeout: gatewayTimeout,
		now:     time.Now,
	}
}

// CreateSession converts the caller's cart into a hosted checkout
// session and returns the JSON-encoded {id,url} pair. The cart is not
// cleared; that happens only after a terminal completed status is
// observed. Every invocation creates a brand-new session — retries are
// the caller's decision and produce independent sessions.
func (s *Service) CreateSession(ctx context.Context, p domain.Principal, successURL, cancelURL string) (string, error) {
	if successURL == "" || cancelURL == "" {
		return "", fmt.Errorf("%w: both redirect urls are required", domain.ErrInvalidInput)
	}

	cfg, err := s.config.GatewayConfiguration(ctx)
	if err != nil {
		if errors.Is(err, settings.ErrNotConfigured) {
			return "", domain.ErrGatewayNotConfigured
		}
		return "", fmt.Errorf("failed to read gateway configuration: %w", err)
	}
	if !cfg.IsConfigured() {
		return "", domain.ErrGatewayNotConfigured
	}

	summary, err := s.carts.Summary(ctx, p)
	if err != nil {
		return "", fmt.Errorf("failed to read cart: %w", err)
	}
	if len(summary.Items) == 0 {
		return "", domain.ErrEmptyCart
	}

	items := snapshotItems(summary)

	gwCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	created, err := s.gateway.CreateSession(gwCtx, cfg.SecretKey, &stripe.SessionRequest{
		Items:           items,
		SuccessURL:      successURL,
		CancelURL:       cancelURL,
		ClientReference: string(p),
	})
	if err != nil {
		// Abort entirely: no session object is persisted or returned.
		return "", fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}

	now := s.now().UTC()
	session := &domain.Session{
		ID:          created.ID,
		Principal:   p,
		Items:       items,
		Status:      domain.SessionStatusPending,
		URL:         created.URL,
		RawResponse: created.Raw,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		// Without the local record a later paid status could never be
		// recorded or published. The gateway session is abandoned and
		// the caller retries with a brand-new one.
		s.log.WithError(err).WithField("session_id", created.ID).Error("failed to persist session record")
		return "", fmt.Errorf("failed to persist session record: %w", err)
	}

	encoded, err := json.Marshal(EncodedSession{ID: created.ID, URL: created.URL})
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"session_id": created.ID,
		"line_items": len(items),
	}).Info("checkout session created")
	return string(encoded), nil
}

// SessionStatus queries the gateway for a terminal answer. A session
// the gateway still considers open is surfaced as ErrSessionUnresolved
// rather than a third result value; the local record keeps the full
// three-state machine.
func (s *Service) SessionStatus(ctx context.Context, sessionID string) (*domain.SessionOutcome, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", domain.ErrInvalidInput)
	}

	cfg, err := s.config.GatewayConfiguration(ctx)
	if err != nil {
		if errors.Is(err, settings.ErrNotConfigured) {
			return nil, domain.ErrGatewayNotConfigured
		}
		return nil, fmt.Errorf("failed to read gateway configuration: %w", err)
	}
	if !cfg.IsConfigured() {
		return nil, domain.ErrGatewayNotConfigured
	}

	gwCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	state, err := s.gateway.GetSession(gwCtx, cfg.SecretKey, sessionID)
	if err != nil {
		if errors.Is(err, stripe.ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: session %s", domain.ErrNotFound, sessionID)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrGateway, err)
	}

	switch {
	case state.Paid():
		s.recordCompleted(ctx, sessionID, state)
		return &domain.SessionOutcome{
			Completed: &domain.SessionCompleted{
				Principal:   domain.Principal(state.ClientReference),
				RawResponse: state.Raw,
			},
		}, nil

	case state.Terminal():
		reason := fmt.Sprintf("session %s with payment status %s", state.Status, state.PaymentStatus)
		s.recordFailed(ctx, sessionID, reason)
		return &domain.SessionOutcome{
			Failed: &domain.SessionFailed{Error: reason},
		}, nil

	default:
		return nil, domain.ErrSessionUnresolved
	}
}

// recordCompleted applies the one-way transition locally and enqueues
// the outbox event. Failure to record never masks the outcome already
// confirmed by the gateway.
func (s *Service) recordCompleted(ctx context.Context, sessionID string, state *stripe.SessionState) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			s.log.WithError(err).WithField("session_id", sessionID).Warn("failed to load session record")
		}
		return
	}
	if session.Status.IsTerminal() {
		return
	}

	event, err := completedEvent(session, s.now().UTC())
	if err != nil {
		s.log.WithError(err).WithField("session_id", sessionID).Error("failed to build outbox event")
		return
	}

	if err := s.repo.CompleteSession(ctx, sessionID, state.Raw, event); err != nil {
		s.log.WithError(err).WithField("session_id", sessionID).Warn("failed to record completed session")
	}
}

func (s *Service) recordFailed(ctx context.Context, sessionID, reason string) {
	if err := s.repo.FailSession(ctx, sessionID, reason); err != nil && !errors.Is(err, ErrSessionNotFound) {
		s.log.WithError(err).WithField("session_id", sessionID).Warn("failed to record failed session")
	}
}

// snapshotItems freezes quantity and unit price at this instant; the
// order follows the cart summary.
func snapshotItems(summary *domain.CartSummary) []domain.LineItem {
	items := make([]domain.LineItem, 0, len(summary.Items))
	for _, item := range summary.Items {
		items = append(items, domain.LineItem{
			Name:        item.Product.Name,
			Description: item.Product.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.Product.Price,
			Currency:    snapshotCurrency,
		})
	}
	return items
}

func completedEvent(session *domain.Session, completedAt time.Time) (*OutboxEvent, error) {
	var total int64
	for _, item := range session.Items {
		total += item.UnitPrice * int64(item.Quantity)
	}

	payload, err := json.Marshal(map[string]interface{}{
		"session_id":   session.ID,
		"principal":    string(session.Principal),
		"items":        session.Items,
		"total_amount": total,
		"currency":     snapshotCurrency,
		"completed_at": completedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	return &OutboxEvent{
		ID:          newEventID(),
		AggregateID: session.ID,
		EventType:   EventCheckoutCompleted,
		Payload:     payload,
		CreatedAt:   completedAt,
	}, nil
}
