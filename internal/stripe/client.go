// Package stripe is the boundary client for the hosted payment
// gateway. The gateway is untrusted and possibly slow or unavailable:
// every call carries a bounded timeout, runs behind a circuit breaker,
// and its response is sanitized before anything decodes it.
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"storefront/internal/domain"
	"storefront/internal/httpsan"
)

const DefaultBaseURL = "https://api.stripe.com"

var (
	ErrSessionNotFound = errors.New("gateway session not found")
	ErrRequestFailed   = errors.New("gateway request failed")
)

// Session is a freshly created hosted checkout session.
type Session struct {
	ID  string
	URL string
	Raw string // sanitized response body
}

// SessionState is the gateway's current view of a session.
type SessionState struct {
	ID              string
	Status          string // open, complete, expired
	PaymentStatus   string // paid, unpaid, no_payment_required
	ClientReference string
	Raw             string
}

func (s *SessionState) Paid() bool {
	return s.PaymentStatus == "paid" || s.PaymentStatus == "no_payment_required"
}

func (s *SessionState) Terminal() bool {
	return s.Status == "complete" || s.Status == "expired"
}

// Client is what the checkout orchestrator calls. Consumers define
// this interface; tests substitute it.
type Client interface {
	CreateSession(ctx context.Context, secretKey string, req *SessionRequest) (*Session, error)
	GetSession(ctx context.Context, secretKey, id string) (*SessionState, error)
}

// SessionRequest carries the frozen line items plus redirect urls for
// one checkout attempt.
type SessionRequest struct {
	Items           []domain.LineItem
	SuccessURL      string
	CancelURL       string
	ClientReference string // resolved principal, echoed back on status reads
}

// HTTPClient implements Client against the gateway's REST surface.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[httpsan.Response]
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	breaker := gobreaker.NewCircuitBreaker[httpsan.Response](gobreaker.Settings{
		Name:    "payment-gateway",
		Timeout: 30 * time.Second,
	})
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		breaker: breaker,
	}
}

type sessionPayload struct {
	ID                string `json:"id"`
	URL               string `json:"url"`
	Status            string `json:"status"`
	PaymentStatus     string `json:"payment_status"`
	ClientReferenceID string `json:"client_reference_id"`
}

type errorPayload struct {
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

func (c *HTTPClient) CreateSession(ctx context.Context, secretKey string, req *SessionRequest) (*Session, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", req.SuccessURL)
	form.Set("cancel_url", req.CancelURL)
	if req.ClientReference != "" {
		form.Set("client_reference_id", req.ClientReference)
	}
	for i, item := range req.Items {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
		form.Set(prefix+"[price_data][currency]", item.Currency)
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.UnitPrice, 10))
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		if item.Description != "" {
			form.Set(prefix+"[price_data][product_data][description]", item.Description)
		}
	}

	resp, err := c.do(ctx, secretKey, http.MethodPost, "/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}

	if resp.Status != http.StatusOK {
		return nil, gatewayError(resp)
	}

	var payload sessionPayload
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode session response: %w", err)
	}
	if payload.ID == "" || payload.URL == "" {
		return nil, fmt.Errorf("%w: response missing session id or url", ErrRequestFailed)
	}

	return &Session{ID: payload.ID, URL: payload.URL, Raw: string(resp.Body)}, nil
}

func (c *HTTPClient) GetSession(ctx context.Context, secretKey, id string) (*SessionState, error) {
	resp, err := c.do(ctx, secretKey, http.MethodGet, "/v1/checkout/sessions/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	if resp.Status == http.StatusNotFound {
		return nil, ErrSessionNotFound
	}
	if resp.Status != http.StatusOK {
		return nil, gatewayError(resp)
	}

	var payload sessionPayload
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode session response: %w", err)
	}

	return &SessionState{
		ID:              payload.ID,
		Status:          payload.Status,
		PaymentStatus:   payload.PaymentStatus,
		ClientReference: payload.ClientReferenceID,
		Raw:             string(resp.Body),
	}, nil
}

// do performs the request and returns the sanitized projection of the
// response. Nothing downstream ever sees raw transport headers.
func (c *HTTPClient) do(ctx context.Context, secretKey, method, path string, body io.Reader) (httpsan.Response, error) {
	return c.breaker.Execute(func() (httpsan.Response, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return httpsan.Response{}, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+secretKey)
		if body != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return httpsan.Response{}, fmt.Errorf("%w: %v", ErrRequestFailed, err)
		}
		defer resp.Body.Close()

		payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return httpsan.Response{}, fmt.Errorf("%w: reading response: %v", ErrRequestFailed, err)
		}

		raw := httpsan.Response{Status: resp.StatusCode, Body: payload}
		for name, values := range resp.Header {
			for _, v := range values {
				raw.Headers = append(raw.Headers, httpsan.Header{Name: name, Value: v})
			}
		}

		return httpsan.Sanitize(raw), nil
	})
}

func gatewayError(resp httpsan.Response) error {
	var payload errorPayload
	if err := json.Unmarshal(resp.Body, &payload); err == nil && payload.Error.Message != "" {
		return fmt.Errorf("%w: status %d: %s", ErrRequestFailed, resp.Status, payload.Error.Message)
	}
	return fmt.Errorf("%w: status %d", ErrRequestFailed, resp.Status)
}
