package hub

import (
	"encoding/json"
	"sync"

	"github.com/Abhishekshinde12/Conv-AI/internal/config"
	"github.com/Abhishekshinde12/Conv-AI/pkg/log"
)

// GroupEvent is a fan-out instruction for one conversation group: deliver
// the payload to every member connection.
type GroupEvent struct {
	ConversationID string
	Payload        []byte
}

// group holds the live members of one conversation. Each group carries its
// own lock so deliveries in different conversations never contend.
type group struct {
	mu      sync.Mutex
	members map[string]*Client // clientID -> client
}

func (g *group) snapshot() []*Client {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Client, 0, len(g.members))
	for _, c := range g.members {
		out = append(out, c)
	}
	return out
}

// Hub owns the conversation-to-connections registry. It is constructed once
// at startup and injected into every handler; there is no global instance.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]*group // conversationID -> group

	events chan GroupEvent
	config config.WebSocketConfig
}

// NewHub creates a hub. Run must be started in its own goroutine.
func NewHub(cfg config.WebSocketConfig) *Hub {
	return &Hub{
		groups: make(map[string]*group),
		events: make(chan GroupEvent, 256),
		config: cfg,
	}
}

// Run consumes group events and delivers them to member connections.
func (h *Hub) Run() {
	for ev := range h.events {
		h.deliver(ev)
	}
}

func (h *Hub) deliver(ev GroupEvent) {
	h.mu.RLock()
	g, ok := h.groups[ev.ConversationID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	for _, client := range g.snapshot() {
		select {
		case <-client.done:
			// Connection already torn down.
		case client.Send <- ev.Payload:
		default:
			// Slow consumer; drop the connection rather than block the hub.
			go h.Leave(client)
		}
	}
}

// Join registers the client into the conversation's group.
func (h *Hub) Join(client *Client, conversationID string) {
	h.mu.Lock()
	g, ok := h.groups[conversationID]
	if !ok {
		g = &group{members: make(map[string]*Client)}
		h.groups[conversationID] = g
	}
	g.mu.Lock()
	g.members[client.ID] = client
	g.mu.Unlock()
	h.mu.Unlock()

	l := log.L()
	l.Info().Str(log.FieldClientID, client.ID).Str(log.FieldConversationID, conversationID).Msg("client joined conversation group")
}

// Leave removes the client from its conversation group and tears the
// connection down. Leaving when not a member of any group is a no-op.
func (h *Hub) Leave(client *Client) {
	h.mu.Lock()
	g, ok := h.groups[client.ConversationID]
	member := false
	if ok {
		g.mu.Lock()
		_, member = g.members[client.ID]
		delete(g.members, client.ID)
		if len(g.members) == 0 {
			delete(h.groups, client.ConversationID)
		}
		g.mu.Unlock()
	}
	h.mu.Unlock()

	if member {
		client.shutdown()
		l := log.L()
		l.Info().Str(log.FieldClientID, client.ID).Str(log.FieldConversationID, client.ConversationID).Msg("client left conversation group")
	}
}

// Broadcast serializes the message and queues it for delivery to every
// member of the conversation's group, the sender included.
func (h *Hub) Broadcast(conversationID string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.events <- GroupEvent{
		ConversationID: conversationID,
		Payload:        data,
	}
	return nil
}

// GroupSize returns the number of connections in a conversation's group.
func (h *Hub) GroupSize(conversationID string) int {
	h.mu.RLock()
	g, ok := h.groups[conversationID]
	h.mu.RUnlock()
	if !ok {
		return 0
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.members)
}
