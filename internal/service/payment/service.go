package payment

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/novapay/backend/internal/model/payment"
	"github.com/novapay/backend/internal/store"
)

var (
	ErrMissingFields    = errors.New("missing required fields")
	ErrMissingCardInfo  = errors.New("missing card info")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionCompleted = errors.New("session already completed")
)

const (
	confirmationPrefix   = "NP-"
	confirmationLength   = 8
	confirmationAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// CardDetails carries the payer's submitted card fields. Only presence is
// checked; this is a mock processor by design.
type CardDetails struct {
	Number string
	Name   string
	Expiry string
	CVV    string
}

// Notifier delivers completion events to the owning agent, best-effort.
// Failures must be swallowed, never surfaced to the paying caller.
type Notifier interface {
	NotifySessionCompleted(ctx context.Context, agentID string, event payment.CompletionEvent)
}

// Service orchestrates the payment session lifecycle over an injected Store
// and an optional Notifier.
type Service struct {
	store       store.Store
	notifier    Notifier
	frontendURL string
}

// NewService wires the session service. A nil notifier yields a polling-only
// deployment.
func NewService(st store.Store, notifier Notifier, frontendURL string) *Service {
	return &Service{
		store:       st,
		notifier:    notifier,
		frontendURL: strings.TrimSuffix(frontendURL, "/"),
	}
}

// CreateSession provisions a pending session and returns it together with
// the payment page URL the payer should be redirected to.
func (s *Service) CreateSession(ctx context.Context, amount float64, customerEmail, agentID string) (payment.Session, string, error) {
	if amount <= 0 || customerEmail == "" || agentID == "" {
		return payment.Session{}, "", ErrMissingFields
	}

	session := payment.Session{
		ID:            uuid.NewString(),
		AgentID:       agentID,
		Amount:        amount,
		CustomerEmail: customerEmail,
		Status:        payment.StatusPending,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.store.Put(ctx, session); err != nil {
		return payment.Session{}, "", fmt.Errorf("store session: %w", err)
	}

	return session, s.paymentURL(session), nil
}

// SubmitPayment applies a mock payment to a pending session. The transition
// to completed happens inside the store's per-key update, so exactly one of
// any concurrent payments wins; the rest observe ErrSessionCompleted.
func (s *Service) SubmitPayment(ctx context.Context, sessionID string, card CardDetails) (payment.Receipt, error) {
	updated, err := s.store.Update(ctx, sessionID, func(session *payment.Session) error {
		if card.Number == "" || card.Name == "" || card.Expiry == "" || card.CVV == "" {
			return ErrMissingCardInfo
		}
		if session.Status == payment.StatusCompleted {
			return ErrSessionCompleted
		}

		code, err := confirmationCode()
		if err != nil {
			return fmt.Errorf("generate confirmation code: %w", err)
		}

		session.Status = payment.StatusCompleted
		session.Last4 = lastFour(card.Number)
		session.ConfirmationCode = code
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return payment.Receipt{}, ErrSessionNotFound
	}
	if err != nil {
		return payment.Receipt{}, err
	}

	if s.notifier != nil {
		s.notifier.NotifySessionCompleted(ctx, updated.AgentID, payment.CompletionEvent{
			SessionID:        updated.ID,
			Status:           updated.Status,
			Amount:           updated.Amount,
			Last4:            updated.Last4,
			ConfirmationCode: updated.ConfirmationCode,
		})
	}

	return payment.Receipt{
		Status:           "success",
		Amount:           updated.Amount,
		Last4:            updated.Last4,
		ConfirmationCode: updated.ConfirmationCode,
	}, nil
}

// GetSessionStatus returns the current session record for polling clients.
func (s *Service) GetSessionStatus(ctx context.Context, sessionID string) (payment.Session, error) {
	session, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return payment.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return payment.Session{}, err
	}
	return session, nil
}

// paymentURL embeds the session id and prepopulated amount in the payment
// page link.
func (s *Service) paymentURL(session payment.Session) string {
	return fmt.Sprintf("%s/index.html?sessionId=%s&amount=%s",
		s.frontendURL,
		url.QueryEscape(session.ID),
		strconv.FormatFloat(session.Amount, 'f', -1, 64),
	)
}

// lastFour keeps up to the last four characters of the card number.
func lastFour(cardNumber string) string {
	if len(cardNumber) <= 4 {
		return cardNumber
	}
	return cardNumber[len(cardNumber)-4:]
}

// confirmationCode issues an NP-prefixed opaque token for display purposes.
func confirmationCode() (string, error) {
	buf := make([]byte, confirmationLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = confirmationAlphabet[int(b)%len(confirmationAlphabet)]
	}
	return confirmationPrefix + string(buf), nil
}
