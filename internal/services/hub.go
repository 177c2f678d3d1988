package services

import (
	"encoding/json"
	"sync"

	"productshot/internal/orchestrator"
	"productshot/types"
)

const (
	EventStateChanged  = "state.changed"
	EventGallerySaved  = "gallery.saved"
	EventGalleryFailed = "gallery.failed"
)

type WSEvent struct {
	Type     string               `json:"type"`
	JobID    string               `json:"jobId,omitempty"`
	Message  string               `json:"message,omitempty"`
	Paths    []string             `json:"paths,omitempty"`
	Failures []string             `json:"failures,omitempty"`
	State    *types.StateResponse `json:"state,omitempty"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]*WSClient
}

func safeCloseBytes(ch chan []byte) {
	defer func() {
		_ = recover()
	}()
	close(ch)
}

func NewHub() *Hub {
	return &Hub{
		clients: map[string]*WSClient{},
	}
}

func (c *WSClient) close() {
	safeCloseBytes(c.send)
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// Add registers c, replacing any client already connected under the same id.
func (h *Hub) Add(c *WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.clients[c.id]; ok {
		old.close()
	}

	h.clients[c.id] = c
}

func (h *Hub) Remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[id]; ok {
		delete(h.clients, id)
		c.close()
	}
}

// removeIf drops id only while it still maps to c, so a reconnect under the
// same id is not torn down by the old connection's exit.
func (h *Hub) removeIf(id string, c *WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cur, ok := h.clients[id]; ok && cur == c {
		delete(h.clients, id)
		c.close()
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.clients {
		c.close()
	}
	h.clients = map[string]*WSClient{}
}

// SendTo delivers event to one client. The send happens under the read lock
// because every close of c.send holds the write lock.
func (h *Hub) SendTo(clientId string, event WSEvent) {
	b, _ := json.Marshal(event)

	h.mu.RLock()
	c := h.clients[clientId]
	if c == nil {
		h.mu.RUnlock()
		return
	}
	delivered := true
	select {
	case c.send <- b:
	default:
		delivered = false
	}
	h.mu.RUnlock()

	if !delivered {
		h.removeIf(clientId, c)
	}
}

// Broadcast sends event to every client. Clients whose buffer is full are
// dropped.
func (h *Hub) Broadcast(event WSEvent) {
	b, _ := json.Marshal(event)

	h.mu.RLock()
	var slow []*WSClient
	for _, c := range h.clients {
		select {
		case c.send <- b:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.removeIf(c.id, c)
	}
}

// PublishState is an orchestrator.Observer that fans state changes out to
// every connected client.
func (h *Hub) PublishState(st orchestrator.State) {
	resp := toStateResponse(st)
	h.Broadcast(WSEvent{Type: EventStateChanged, State: &resp})
}
