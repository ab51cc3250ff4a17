package payment

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	paymentService "github.com/novapay/backend/internal/service/payment"
	"github.com/novapay/backend/internal/store"
	"github.com/novapay/backend/pkg/utils"
)

// Handler exposes the payment session lifecycle over HTTP.
type Handler struct {
	paySvc *paymentService.Service
}

// New creates the payment handler.
func New(paySvc *paymentService.Service) *Handler {
	return &Handler{paySvc: paySvc}
}

// RegisterRoutes registers the payment routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/create-session", h.handleCreateSession)
	r.Post("/pay", h.handlePay)
	r.Get("/session-status", h.handleSessionStatus)
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Amount        float64 `json:"amount"`
		CustomerEmail string  `json:"customerEmail"`
		AgentID       string  `json:"agentId"`
	}

	// An unparsable body is treated like an empty one; the field check below
	// produces the caller-facing message either way.
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondMessage(w, http.StatusBadRequest, "Missing fields")
		return
	}

	session, paymentURL, err := h.paySvc.CreateSession(r.Context(), payload.Amount, payload.CustomerEmail, payload.AgentID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"sessionId":  session.ID,
		"paymentUrl": paymentURL,
	})
}

func (h *Handler) handlePay(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID  string `json:"sessionId"`
		CardNumber string `json:"cardNumber"`
		CardName   string `json:"cardName"`
		Expiry     string `json:"expiry"`
		CVV        string `json:"cvv"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondMessage(w, http.StatusBadRequest, "Invalid session")
		return
	}

	receipt, err := h.paySvc.SubmitPayment(r.Context(), payload.SessionID, paymentService.CardDetails{
		Number: payload.CardNumber,
		Name:   payload.CardName,
		Expiry: payload.Expiry,
		CVV:    payload.CVV,
	})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, receipt)
}

func (h *Handler) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")

	session, err := h.paySvc.GetSessionStatus(r.Context(), sessionID)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, session)
}

// respondServiceError maps service errors onto the message bodies callers
// distinguish by status and text.
func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, paymentService.ErrMissingFields):
		utils.RespondMessage(w, http.StatusBadRequest, "Missing fields")
	case errors.Is(err, paymentService.ErrSessionNotFound):
		utils.RespondMessage(w, http.StatusBadRequest, "Invalid session")
	case errors.Is(err, paymentService.ErrMissingCardInfo):
		utils.RespondMessage(w, http.StatusBadRequest, "Missing card info")
	case errors.Is(err, paymentService.ErrSessionCompleted):
		utils.RespondMessage(w, http.StatusConflict, "Session already completed")
	case errors.Is(err, store.ErrUnavailable):
		log.Printf("[payment] store unavailable: %v", err)
		utils.RespondMessage(w, http.StatusServiceUnavailable, "Store unavailable")
	default:
		log.Printf("[payment] unexpected error: %v", err)
		utils.RespondMessage(w, http.StatusInternalServerError, "Internal error")
	}
}
