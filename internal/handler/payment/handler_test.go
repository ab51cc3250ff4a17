package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/novapay/backend/internal/model/payment"
	paymentService "github.com/novapay/backend/internal/service/payment"
	"github.com/novapay/backend/internal/store"
)

func setupRouter() *chi.Mux {
	return setupRouterWithStore(store.NewMemoryStore())
}

func setupRouterWithStore(st store.Store) *chi.Mux {
	svc := paymentService.NewService(st, nil, "http://localhost:3000")
	handler := New(svc)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

// unavailableStore simulates an unreachable backing store.
type unavailableStore struct{}

func (unavailableStore) Get(context.Context, string) (payment.Session, error) {
	return payment.Session{}, fmt.Errorf("%w: connection refused", store.ErrUnavailable)
}

func (unavailableStore) Put(context.Context, payment.Session) error {
	return fmt.Errorf("%w: connection refused", store.ErrUnavailable)
}

func (unavailableStore) Update(context.Context, string, func(*payment.Session) error) (payment.Session, error) {
	return payment.Session{}, fmt.Errorf("%w: connection refused", store.ErrUnavailable)
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func createSession(t *testing.T, r http.Handler) (sessionID, paymentURL string) {
	t.Helper()
	resp := doJSON(t, r, http.MethodPost, "/create-session", map[string]any{
		"amount":        1000,
		"customerEmail": "a@b.com",
		"agentId":       "agent1",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("create-session: expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	body := decodeBody(t, resp)
	sessionID, _ = body["sessionId"].(string)
	paymentURL, _ = body["paymentUrl"].(string)
	if sessionID == "" {
		t.Fatal("expected non-empty sessionId")
	}
	return sessionID, paymentURL
}

func TestCreateSession(t *testing.T) {
	r := setupRouter()

	sessionID, paymentURL := createSession(t, r)

	if !strings.Contains(paymentURL, "sessionId="+sessionID) || !strings.Contains(paymentURL, "amount=1000") {
		t.Fatalf("unexpected paymentUrl: %s", paymentURL)
	}
}

func TestCreateSessionMissingFields(t *testing.T) {
	r := setupRouter()

	cases := []struct {
		name string
		body map[string]any
	}{
		{"no amount", map[string]any{"customerEmail": "a@b.com", "agentId": "agent1"}},
		{"no email", map[string]any{"amount": 1000, "agentId": "agent1"}},
		{"no agent", map[string]any{"amount": 1000, "customerEmail": "a@b.com"}},
		{"empty body", map[string]any{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, r, http.MethodPost, "/create-session", tc.body)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.Code)
			}
			if msg := decodeBody(t, resp)["message"]; msg != "Missing fields" {
				t.Fatalf("unexpected message: %v", msg)
			}
		})
	}
}

func TestPayCompletesSession(t *testing.T) {
	r := setupRouter()
	sessionID, _ := createSession(t, r)

	resp := doJSON(t, r, http.MethodPost, "/pay", map[string]any{
		"sessionId":  sessionID,
		"cardNumber": "4111111111111111",
		"cardName":   "A B",
		"expiry":     "12/30",
		"cvv":        "123",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	body := decodeBody(t, resp)
	if body["status"] != "success" {
		t.Fatalf("expected success, got %v", body["status"])
	}
	if body["amount"] != float64(1000) {
		t.Fatalf("unexpected amount: %v", body["amount"])
	}
	if body["last4"] != "1111" {
		t.Fatalf("unexpected last4: %v", body["last4"])
	}
	code, _ := body["confirmationCode"].(string)
	if !strings.HasPrefix(code, "NP-") {
		t.Fatalf("unexpected confirmationCode: %v", body["confirmationCode"])
	}

	statusResp := doJSON(t, r, http.MethodGet, "/session-status?sessionId="+sessionID, nil)
	if statusResp.Code != http.StatusOK {
		t.Fatalf("session-status: expected 200, got %d", statusResp.Code)
	}
	statusBody := decodeBody(t, statusResp)
	if statusBody["status"] != "completed" {
		t.Fatalf("expected completed, got %v", statusBody["status"])
	}
	if statusBody["last4"] != "1111" || statusBody["confirmationCode"] != code {
		t.Fatalf("stored session diverges from receipt: %v", statusBody)
	}
}

func TestPayInvalidSession(t *testing.T) {
	r := setupRouter()

	resp := doJSON(t, r, http.MethodPost, "/pay", map[string]any{
		"sessionId":  "missing",
		"cardNumber": "4111111111111111",
		"cardName":   "A B",
		"expiry":     "12/30",
		"cvv":        "123",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if msg := decodeBody(t, resp)["message"]; msg != "Invalid session" {
		t.Fatalf("unexpected message: %v", msg)
	}
}

func TestPayMissingCardInfo(t *testing.T) {
	r := setupRouter()
	sessionID, _ := createSession(t, r)

	resp := doJSON(t, r, http.MethodPost, "/pay", map[string]any{
		"sessionId":  sessionID,
		"cardNumber": "4111111111111111",
		"cardName":   "A B",
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if msg := decodeBody(t, resp)["message"]; msg != "Missing card info" {
		t.Fatalf("unexpected message: %v", msg)
	}

	statusResp := doJSON(t, r, http.MethodGet, "/session-status?sessionId="+sessionID, nil)
	if decodeBody(t, statusResp)["status"] != "pending" {
		t.Fatal("session must stay pending after a rejected payment")
	}
}

func TestPayTwiceIsRejected(t *testing.T) {
	r := setupRouter()
	sessionID, _ := createSession(t, r)

	card := map[string]any{
		"sessionId":  sessionID,
		"cardNumber": "4111111111111111",
		"cardName":   "A B",
		"expiry":     "12/30",
		"cvv":        "123",
	}

	if resp := doJSON(t, r, http.MethodPost, "/pay", card); resp.Code != http.StatusOK {
		t.Fatalf("first pay: expected 200, got %d", resp.Code)
	}

	resp := doJSON(t, r, http.MethodPost, "/pay", card)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
	if msg := decodeBody(t, resp)["message"]; msg != "Session already completed" {
		t.Fatalf("unexpected message: %v", msg)
	}
}

func TestStoreUnavailableSurfaces503(t *testing.T) {
	r := setupRouterWithStore(unavailableStore{})

	cases := []struct {
		name   string
		method string
		path   string
		body   map[string]any
	}{
		{"create-session", http.MethodPost, "/create-session", map[string]any{
			"amount":        1000,
			"customerEmail": "a@b.com",
			"agentId":       "agent1",
		}},
		{"pay", http.MethodPost, "/pay", map[string]any{
			"sessionId":  "s1",
			"cardNumber": "4111111111111111",
			"cardName":   "A B",
			"expiry":     "12/30",
			"cvv":        "123",
		}},
		{"session-status", http.MethodGet, "/session-status?sessionId=s1", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, r, tc.method, tc.path, tc.body)
			if resp.Code != http.StatusServiceUnavailable {
				t.Fatalf("expected 503, got %d: %s", resp.Code, resp.Body.String())
			}
			if msg := decodeBody(t, resp)["message"]; msg != "Store unavailable" {
				t.Fatalf("unexpected message: %v", msg)
			}
		})
	}
}

func TestSessionStatusUnknown(t *testing.T) {
	r := setupRouter()

	resp := doJSON(t, r, http.MethodGet, "/session-status?sessionId=missing", nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if msg := decodeBody(t, resp)["message"]; msg != "Invalid session" {
		t.Fatalf("unexpected message: %v", msg)
	}
}
