package notify

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	notifyService "github.com/novapay/backend/internal/notify"
)

const (
	readWait     = 60 * time.Second
	pingInterval = 54 * time.Second
)

// Handler upgrades agent connections and binds them into the registry.
type Handler struct {
	registry *notifyService.Registry
	upgrader websocket.Upgrader
}

// New creates the notification websocket handler.
func New(registry *notifyService.Registry) *Handler {
	return &Handler{
		registry: registry,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes registers the push channel endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleWebSocket)
}

// helloMessage is the first client frame, claiming an agent identity.
type helloMessage struct {
	AgentID string `json:"agentId"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(readWait))

	var hello helloMessage
	if err := conn.ReadJSON(&hello); err != nil {
		log.Printf("[websocket] failed to read hello: %v", err)
		return
	}
	if hello.AgentID == "" {
		_ = conn.WriteJSON(map[string]string{"type": "error", "message": "agentId is required"})
		return
	}

	channel := notifyService.NewWebSocketChannel(conn)
	h.registry.Register(hello.AgentID, channel)
	log.Printf("[websocket] agent registered agent=%s", hello.AgentID)

	_ = channel.Send(map[string]string{"type": "registered", "agentId": hello.AgentID})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	defer channel.Close()

	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readWait))
		return nil
	})

	go h.pingLoop(ctx, conn)

	// Drain the connection so pings and close frames are processed; the
	// protocol has no further client messages.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("[websocket] read error agent=%s: %v", hello.AgentID, err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(readWait))
	}
}

func (h *Handler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}
