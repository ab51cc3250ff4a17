package notify

import (
	"context"
	"log"
	"sync"

	"github.com/novapay/backend/internal/model/payment"
)

// Registry binds agent identifiers to at most one active channel each.
// Registration is last-write-wins; bindings are not removed on disconnect,
// a closed channel simply stops accepting pushes.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]Channel
}

// NewRegistry returns an empty agent registry.
func NewRegistry() *Registry {
	return &Registry{channels: make(map[string]Channel)}
}

// Register binds agentID to ch, superseding and closing any prior channel.
func (r *Registry) Register(agentID string, ch Channel) {
	r.mu.Lock()
	prior := r.channels[agentID]
	r.channels[agentID] = ch
	r.mu.Unlock()

	if prior != nil {
		_ = prior.Close()
		log.Printf("[notify] superseded channel for agent=%s", agentID)
	}
}

// Lookup returns the channel currently bound to agentID, if any.
func (r *Registry) Lookup(agentID string) (Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.channels[agentID]
	return ch, ok
}

// NotifySessionCompleted pushes a completion event to the agent's channel,
// best-effort. Absent or closed channels are ignored; send failures are
// logged and swallowed.
func (r *Registry) NotifySessionCompleted(_ context.Context, agentID string, event payment.CompletionEvent) {
	ch, ok := r.Lookup(agentID)
	if !ok || !ch.IsOpen() {
		return
	}

	if err := ch.Send(event); err != nil {
		log.Printf("[notify] push failed agent=%s session=%s: %v", agentID, event.SessionID, err)
		return
	}
	log.Printf("[notify] pushed completion agent=%s session=%s", agentID, event.SessionID)
}
