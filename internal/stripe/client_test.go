package stripe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

func TestHTTPClient_CreateSession(t *testing.T) {
	var gotForm map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.Equal(t, "Bearer sk_test_abc", r.Header.Get("Authorization"))

		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Request-Id", "req_nondeterministic")
		w.Write([]byte(`{"id":"cs_test_1","url":"https://checkout.example/cs_test_1","status":"open","payment_status":"unpaid"}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 5*time.Second)

	session, err := client.CreateSession(context.Background(), "sk_test_abc", &SessionRequest{
		Items: []domain.LineItem{
			{Name: "Lamp", Description: "brass", Quantity: 2, UnitPrice: 500, Currency: "usd"},
			{Name: "Desk", Quantity: 1, UnitPrice: 1200, Currency: "usd"},
		},
		SuccessURL:      "https://shop.example/payment-success",
		CancelURL:       "https://shop.example/payment-failure",
		ClientReference: "alice",
	})
	require.NoError(t, err)

	assert.Equal(t, "cs_test_1", session.ID)
	assert.Equal(t, "https://checkout.example/cs_test_1", session.URL)

	assert.Equal(t, "payment", gotForm["mode"][0])
	assert.Equal(t, "alice", gotForm["client_reference_id"][0])
	assert.Equal(t, "2", gotForm["line_items[0][quantity]"][0])
	assert.Equal(t, "500", gotForm["line_items[0][price_data][unit_amount]"][0])
	assert.Equal(t, "Lamp", gotForm["line_items[0][price_data][product_data][name]"][0])
	assert.Equal(t, "1200", gotForm["line_items[1][price_data][unit_amount]"][0])
}

func TestHTTPClient_CreateSession_GatewayRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"message":"Invalid API key provided","code":"invalid_key"}}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 5*time.Second)
	_, err := client.CreateSession(context.Background(), "sk_bad", &SessionRequest{
		SuccessURL: "https://shop.example/s",
		CancelURL:  "https://shop.example/c",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Contains(t, err.Error(), "Invalid API key provided")
}

func TestHTTPClient_GetSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/checkout/sessions/cs_test_1", r.URL.Path)
		w.Write([]byte(`{"id":"cs_test_1","status":"complete","payment_status":"paid","client_reference_id":"alice"}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 5*time.Second)
	state, err := client.GetSession(context.Background(), "sk_test_abc", "cs_test_1")
	require.NoError(t, err)

	assert.True(t, state.Paid())
	assert.True(t, state.Terminal())
	assert.Equal(t, "alice", state.ClientReference)
}

func TestHTTPClient_GetSession_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"message":"No such checkout session"}}`))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, 5*time.Second)
	_, err := client.GetSession(context.Background(), "sk_test_abc", "cs_missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestHTTPClient_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := NewHTTPClient(srv.URL, time.Second)
	_, err := client.GetSession(context.Background(), "sk_test_abc", "cs_test_1")
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestSessionState_Paid(t *testing.T) {
	assert.True(t, (&SessionState{PaymentStatus: "paid"}).Paid())
	assert.True(t, (&SessionState{PaymentStatus: "no_payment_required"}).Paid())
	assert.False(t, (&SessionState{PaymentStatus: "unpaid"}).Paid())
}
