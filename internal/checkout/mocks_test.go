package checkout

import (
	"context"
	"sync"

	"storefront/internal/domain"
	"storefront/internal/stripe"
)

// mockGateway implements stripe.Client for testing
type mockGateway struct {
	mu             sync.Mutex
	createResponse *stripe.Session
	createErr      error
	stateResponse  *stripe.SessionState
	stateErr       error
	createCalls    int
	createdReqs    []*stripe.SessionRequest
}

func (m *mockGateway) CreateSession(_ context.Context, _ string, req *stripe.SessionRequest) (*stripe.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	m.createdReqs = append(m.createdReqs, req)
	return m.createResponse, m.createErr
}

func (m *mockGateway) GetSession(_ context.Context, _, _ string) (*stripe.SessionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stateResponse, m.stateErr
}

// mockCarts implements CartReader for testing
type mockCarts struct {
	summary *domain.CartSummary
	err     error
}

func (m *mockCarts) Summary(context.Context, domain.Principal) (*domain.CartSummary, error) {
	return m.summary, m.err
}

// mockConfig implements ConfigReader for testing
type mockConfig struct {
	cfg domain.GatewayConfig
	err error
}

func (m *mockConfig) GatewayConfiguration(context.Context) (domain.GatewayConfig, error) {
	return m.cfg, m.err
}
