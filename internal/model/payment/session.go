package payment

import "time"

// Status tracks the lifecycle of a payment session. A session starts
// pending and transitions at most once to completed.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Session captures one payment attempt from creation to completion.
type Session struct {
	ID               string    `json:"sessionId"`
	AgentID          string    `json:"agentId"`
	Amount           float64   `json:"amount"`
	CustomerEmail    string    `json:"customerEmail"`
	Status           Status    `json:"status"`
	Last4            string    `json:"last4,omitempty"`
	ConfirmationCode string    `json:"confirmationCode,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Receipt is returned to the payer after a successful payment.
type Receipt struct {
	Status           string  `json:"status"`
	Amount           float64 `json:"amount"`
	Last4            string  `json:"last4"`
	ConfirmationCode string  `json:"confirmationCode"`
}

// CompletionEvent is pushed to the owning agent when a session completes.
type CompletionEvent struct {
	SessionID        string  `json:"sessionId"`
	Status           Status  `json:"status"`
	Amount           float64 `json:"amount"`
	Last4            string  `json:"last4"`
	ConfirmationCode string  `json:"confirmationCode"`
}
