package realtime

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

// sendBufferSize is the per-client outbound buffer. A client that
// falls this far behind starts losing events (at-most-once delivery).
const sendBufferSize = 16

// Message is the envelope delivered to subscribers
type Message struct {
	Event string      `json:"event"`
	Topic string      `json:"topic"`
	Data  interface{} `json:"data"`
}

// Client is a single connected subscriber. The transport layer owns
// the Send channel and drains it into the underlying connection.
type Client struct {
	ID     string
	Send   chan []byte
	topics map[string]bool
}

// Publisher is the fan-out primitive the notifier depends on
type Publisher interface {
	Publish(topic Topic, event string, data interface{}) error
}

// Hub tracks connected clients and their topic subscriptions and
// broadcasts messages to matching clients. Delivery is best-effort:
// a slow or disconnected client silently misses events.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

// Register adds a client to the hub
func (h *Hub) Register(id string) *Client {
	client := &Client{
		ID:     id,
		Send:   make(chan []byte, sendBufferSize),
		topics: make(map[string]bool),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[id] = client
	return client
}

// Unregister removes a client and closes its send channel
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(client.Send)
	}
}

// Subscribe joins the client to a topic room
func (h *Hub) Subscribe(id string, topic Topic) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[id]; ok {
		client.topics[topic.String()] = true
	}
}

// Unsubscribe removes the client from a topic room
func (h *Hub) Unsubscribe(id string, topic Topic) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[id]; ok {
		delete(client.topics, topic.String())
	}
}

// Publish broadcasts an event to every client subscribed to the topic.
// Clients whose send buffer is full are skipped, never blocked on.
func (h *Hub) Publish(topic Topic, event string, data interface{}) error {
	msg := Message{Event: event, Topic: topic.String(), Data: data}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode %s message: %w", event, err)
	}

	h.broadcast(topic.String(), payload)
	return nil
}

// broadcast delivers a pre-encoded payload to a room by name
func (h *Hub) broadcast(room string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if !client.topics[room] {
			continue
		}
		select {
		case client.Send <- payload:
		default:
			log.Printf("realtime: dropping message for slow client %s", client.ID)
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
