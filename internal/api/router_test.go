package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/auth"
	"storefront/internal/cart"
	"storefront/internal/cart/cache"
	"storefront/internal/catalog"
	"storefront/internal/checkout"
	"storefront/internal/domain"
	"storefront/internal/settings"
	"storefront/internal/stripe"
)

// noopCache satisfies cache.Cache without caching anything.
type noopCache struct{}

func (noopCache) Get(context.Context, domain.Principal) (*domain.Cart, error) {
	return nil, cache.ErrCacheMiss
}
func (noopCache) Set(context.Context, domain.Principal, *domain.Cart) error { return nil }
func (noopCache) Delete(context.Context, domain.Principal) error            { return nil }

// fakeGateway stands in for Stripe behind the orchestrator.
type fakeGateway struct {
	sessions map[string]*stripe.SessionState
	next     int
}

func (g *fakeGateway) CreateSession(_ context.Context, _ string, req *stripe.SessionRequest) (*stripe.Session, error) {
	g.next++
	id := fmt.Sprintf("cs_test_%d", g.next)
	if g.sessions == nil {
		g.sessions = make(map[string]*stripe.SessionState)
	}
	g.sessions[id] = &stripe.SessionState{
		ID:              id,
		Status:          "open",
		PaymentStatus:   "unpaid",
		ClientReference: req.ClientReference,
	}
	return &stripe.Session{ID: id, URL: "https://checkout.stripe.com/pay/" + id}, nil
}

func (g *fakeGateway) GetSession(_ context.Context, _ string, id string) (*stripe.SessionState, error) {
	state, ok := g.sessions[id]
	if !ok {
		return nil, stripe.ErrSessionNotFound
	}
	return state, nil
}

func newTestRouter(t *testing.T) (http.Handler, *fakeGateway) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	authSvc := auth.NewService(auth.NewMemoryStore("admin-1"), log)
	catalogSvc := catalog.NewService(catalog.NewMemoryRepository(), authSvc, log)
	cartSvc := cart.NewService(cart.NewMemoryRepository(), noopCache{}, catalogSvc, log)
	settingsSvc := settings.NewService(settings.NewMemoryStore(), authSvc, log)
	gateway := &fakeGateway{}
	checkoutSvc := checkout.NewService(cartSvc, settingsSvc, gateway, checkout.NewMemoryRepository(), log, 5*time.Second)

	router := NewRouter(Handlers{
		Products: NewProductHandler(catalogSvc),
		Cart:     NewCartHandler(cartSvc),
		Checkout: NewCheckoutHandler(checkoutSvc),
		Roles:    NewRoleHandler(authSvc),
		Settings: NewSettingsHandler(settingsSvc),
	}, nil, 30*time.Second)
	return router, gateway
}

func doRequest(t *testing.T, router http.Handler, method, path, principal string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, reader)
	if principal != "" {
		req.Header.Set(PrincipalHeader, principal)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createProduct(t *testing.T, router http.Handler, name string, price int64) domain.Product {
	t.Helper()
	rec := doRequest(t, router, http.MethodPost, "/api/v1/products", "admin-1", ProductRequestDTO{
		Name:  name,
		Price: price,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var product domain.Product
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&product))
	return product
}

func TestRouter_Health(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProducts_CreateRequiresAdmin(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/products", "", ProductRequestDTO{Name: "Mug", Price: 500})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/products", "shopper-1", ProductRequestDTO{Name: "Mug", Price: 500})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/products", "admin-1", ProductRequestDTO{Name: "Mug", Price: 500})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestProducts_ListIsOpen(t *testing.T) {
	router, _ := newTestRouter(t)
	createProduct(t, router, "Mug", 500)
	createProduct(t, router, "Shirt", 1200)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var products []domain.Product
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&products))
	require.Len(t, products, 2)
	assert.Equal(t, "Mug", products[0].Name)
	assert.Equal(t, "Shirt", products[1].Name)
}

func TestProducts_GetUnknownIs404(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/api/v1/products/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
	assert.Equal(t, "not_found", errResp.Code)
}

func TestProducts_ValidationIs400(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doRequest(t, router, http.MethodPost, "/api/v1/products", "admin-1", ProductRequestDTO{Name: "", Price: 500})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/products", "admin-1", ProductRequestDTO{Name: "Mug", Price: -1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProducts_FeaturedFlow(t *testing.T) {
	router, _ := newTestRouter(t)
	mug := createProduct(t, router, "Mug", 500)
	createProduct(t, router, "Shirt", 1200)

	rec := doRequest(t, router, http.MethodPut, "/api/v1/products/"+mug.ID+"/featured", "admin-1", SetFeaturedRequestDTO{Featured: true})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/products/featured", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var featured []domain.Product
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&featured))
	require.Len(t, featured, 1)
	assert.Equal(t, mug.ID, featured[0].ID)
}

func TestCart_RequiresPrincipal(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCart_AddAndSummary(t *testing.T) {
	router, _ := newTestRouter(t)
	mug := createProduct(t, router, "Mug", 500)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/cart/items", "shopper-1", AddItemRequestDTO{ProductID: mug.ID, Quantity: 3})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doRequest(t, router, http.MethodGet, "/api/v1/cart", "shopper-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary domain.CartSummary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&summary))
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 3, summary.Items[0].Quantity)
	assert.Equal(t, int64(1500), summary.TotalAmount)

	// another principal sees an empty cart
	rec = doRequest(t, router, http.MethodGet, "/api/v1/cart", "shopper-2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var other domain.CartSummary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&other))
	assert.Empty(t, other.Items)
}

func TestCart_AddUnknownProductIs404(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doRequest(t, router, http.MethodPost, "/api/v1/cart/items", "shopper-1", AddItemRequestDTO{ProductID: "nope", Quantity: 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCart_InvalidQuantityIs400(t *testing.T) {
	router, _ := newTestRouter(t)
	mug := createProduct(t, router, "Mug", 500)
	rec := doRequest(t, router, http.MethodPost, "/api/v1/cart/items", "shopper-1", AddItemRequestDTO{ProductID: mug.ID, Quantity: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCart_RemoveAndClear(t *testing.T) {
	router, _ := newTestRouter(t)
	mug := createProduct(t, router, "Mug", 500)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/cart/items", "shopper-1", AddItemRequestDTO{ProductID: mug.ID, Quantity: 1})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, "/api/v1/cart/items/"+mug.ID, "shopper-1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// clearing an already-empty cart is a no-op
	rec = doRequest(t, router, http.MethodDelete, "/api/v1/cart", "shopper-1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func configureGateway(t *testing.T, router http.Handler) {
	t.Helper()
	rec := doRequest(t, router, http.MethodPut, "/api/v1/gateway/configuration", "admin-1", ConfigurationDTO{
		SecretKey:        "sk_test_123",
		AllowedCountries: []string{"US", "DE"},
	})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
}

func TestCheckout_CreateSession(t *testing.T) {
	router, _ := newTestRouter(t)
	configureGateway(t, router)
	mug := createProduct(t, router, "Mug", 500)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/cart/items", "shopper-1", AddItemRequestDTO{ProductID: mug.ID, Quantity: 2})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/checkout/sessions", "shopper-1", CreateSessionRequestDTO{
		SuccessURL: "https://shop.example/success",
		CancelURL:  "https://shop.example/cancel",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var session checkout.EncodedSession
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&session))
	assert.NotEmpty(t, session.ID)
	assert.Contains(t, session.URL, session.ID)
}

func TestCheckout_EmptyCartIs400(t *testing.T) {
	router, _ := newTestRouter(t)
	configureGateway(t, router)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/checkout/sessions", "shopper-1", CreateSessionRequestDTO{
		SuccessURL: "https://shop.example/success",
		CancelURL:  "https://shop.example/cancel",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errResp))
	assert.Equal(t, "empty_cart", errResp.Code)
}

func TestCheckout_NotConfiguredIs409(t *testing.T) {
	router, _ := newTestRouter(t)
	mug := createProduct(t, router, "Mug", 500)
	rec := doRequest(t, router, http.MethodPost, "/api/v1/cart/items", "shopper-1", AddItemRequestDTO{ProductID: mug.ID, Quantity: 1})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/checkout/sessions", "shopper-1", CreateSessionRequestDTO{
		SuccessURL: "https://shop.example/success",
		CancelURL:  "https://shop.example/cancel",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCheckout_SessionStatus(t *testing.T) {
	router, gateway := newTestRouter(t)
	configureGateway(t, router)
	mug := createProduct(t, router, "Mug", 500)
	rec := doRequest(t, router, http.MethodPost, "/api/v1/cart/items", "shopper-1", AddItemRequestDTO{ProductID: mug.ID, Quantity: 1})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/checkout/sessions", "shopper-1", CreateSessionRequestDTO{
		SuccessURL: "https://shop.example/success",
		CancelURL:  "https://shop.example/cancel",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var session checkout.EncodedSession
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&session))

	// still open at the gateway
	rec = doRequest(t, router, http.MethodGet, "/api/v1/checkout/sessions/"+session.ID, "shopper-1", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// gateway reports the payment settled
	gateway.sessions[session.ID].Status = "complete"
	gateway.sessions[session.ID].PaymentStatus = "paid"

	rec = doRequest(t, router, http.MethodGet, "/api/v1/checkout/sessions/"+session.ID, "shopper-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var outcome domain.SessionOutcome
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&outcome))
	require.NotNil(t, outcome.Completed)
	assert.Equal(t, domain.Principal("shopper-1"), outcome.Completed.Principal)
}

func TestCheckout_UnknownSessionIs404(t *testing.T) {
	router, _ := newTestRouter(t)
	configureGateway(t, router)
	rec := doRequest(t, router, http.MethodGet, "/api/v1/checkout/sessions/cs_missing", "shopper-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoles_CallerRoleDefaultsToGuest(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doRequest(t, router, http.MethodGet, "/api/v1/me/role", "somebody", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var role RoleResponseDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&role))
	assert.Equal(t, "guest", role.Role)
	assert.False(t, role.IsAdmin)
}

func TestRoles_AssignFlow(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPut, "/api/v1/roles/shopper-1", "shopper-2", AssignRoleRequestDTO{Role: "user"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, router, http.MethodPut, "/api/v1/roles/shopper-1", "admin-1", AssignRoleRequestDTO{Role: "user"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/me/role", "shopper-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var role RoleResponseDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&role))
	assert.Equal(t, "user", role.Role)
}

func TestRoles_UnknownRoleIs400(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := doRequest(t, router, http.MethodPut, "/api/v1/roles/shopper-1", "admin-1", AssignRoleRequestDTO{Role: "superuser"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBanners_Flow(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/banners", "shopper-1", BannerRequestDTO{URL: "https://cdn.example/b1.png"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/banners", "admin-1", BannerRequestDTO{URL: "https://cdn.example/b1.png"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doRequest(t, router, http.MethodPost, "/api/v1/banners", "admin-1", BannerRequestDTO{URL: "https://cdn.example/b2.png"})
	require.Equal(t, http.StatusCreated, rec.Code)

	// duplicates are rejected
	rec = doRequest(t, router, http.MethodPost, "/api/v1/banners", "admin-1", BannerRequestDTO{URL: "https://cdn.example/b1.png"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/banners", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var banners []string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&banners))
	assert.Equal(t, []string{"https://cdn.example/b1.png", "https://cdn.example/b2.png"}, banners)

	rec = doRequest(t, router, http.MethodDelete, "/api/v1/banners?url=https%3A%2F%2Fcdn.example%2Fb1.png", "admin-1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestGateway_ConfigurationVisibility(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/gateway/configured", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var configured ConfiguredResponseDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&configured))
	assert.False(t, configured.Configured)

	// secret never readable by non-admins
	rec = doRequest(t, router, http.MethodGet, "/api/v1/gateway/configuration", "shopper-1", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	configureGateway(t, router)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/gateway/configured", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&configured))
	assert.True(t, configured.Configured)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/gateway/configuration", "admin-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cfg ConfigurationDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cfg))
	assert.Equal(t, "sk_test_123", cfg.SecretKey)
	assert.Equal(t, []string{"US", "DE"}, cfg.AllowedCountries)
}
