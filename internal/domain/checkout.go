package domain

import "time"

// LineItem is an immutable snapshot of one cart line taken at
// checkout-session creation. Later catalog edits must not alter what
// the customer is charged, so quantity and unit price are frozen here.
type LineItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
	Currency    string `json:"currency"`
}

// SessionStatus is the per-attempt checkout state machine. Transitions
// are one-way: pending -> completed or pending -> failed.
type SessionStatus string

const (
	SessionStatusPending   SessionStatus = "PENDING"
	SessionStatusCompleted SessionStatus = "COMPLETED"
	SessionStatusFailed    SessionStatus = "FAILED"
)

func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusFailed
}

// String representation (for logging)
func (s SessionStatus) String() string {
	return string(s)
}

// CanTransitionTo reports whether the status machine permits moving
// from one status to another. Terminal states are permanent.
func CanTransitionTo(from, to SessionStatus) bool {
	if from.IsTerminal() {
		return false
	}
	return to == SessionStatusCompleted || to == SessionStatusFailed
}

// Session is the orchestrator's record of one checkout attempt against
// the external gateway.
type Session struct {
	ID          string
	Principal   Principal
	Items       []LineItem
	Status      SessionStatus
	URL         string
	RawResponse string
	FailureMsg  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SessionOutcome is the two-armed result surfaced to callers once the
// gateway reports a terminal state.
type SessionOutcome struct {
	Completed *SessionCompleted `json:"completed,omitempty"`
	Failed    *SessionFailed    `json:"failed,omitempty"`
}

type SessionCompleted struct {
	Principal   Principal `json:"principal,omitempty"`
	RawResponse string    `json:"response"`
}

type SessionFailed struct {
	Error string `json:"error"`
}

// GatewayConfig is the admin-writable payment gateway singleton.
// Absence of a stored secret means "not configured".
type GatewayConfig struct {
	SecretKey        string   `json:"secret_key"`
	AllowedCountries []string `json:"allowed_countries"`
}

func (c GatewayConfig) IsConfigured() bool {
	return c.SecretKey != ""
}
