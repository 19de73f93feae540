package stream

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Hub multicasts progress events to the live subscribers of each trip.
// Delivery is best-effort: a subscriber whose buffer is full misses the
// event rather than blocking the publisher.
type Hub struct {
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	TripID string
	Send   chan []byte
}

func NewHub() *Hub {
	return &Hub{
		clients: map[string]map[*Client]struct{}{},
	}
}

func (h *Hub) Register(tripID string) *Client {
	client := &Client{
		TripID: tripID,
		Send:   make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[tripID] == nil {
		h.clients[tripID] = map[*Client]struct{}{}
	}
	h.clients[tripID][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if tripClients, ok := h.clients[client.TripID]; ok {
		delete(tripClients, client)
		if len(tripClients) == 0 {
			delete(h.clients, client.TripID)
		}
	}
	close(client.Send)
}

// Broadcast holds the read lock across the send loop: sends are
// non-blocking, and Unregister's delete+close must never interleave with
// iteration.
func (h *Hub) Broadcast(tripID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[tripID] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}

// Publish marshals the event and broadcasts it to the trip's subscribers.
func (h *Hub) Publish(tripID string, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		zap.L().Warn("dropping unmarshalable event", zap.String("trip_id", tripID), zap.Error(err))
		return
	}
	h.Broadcast(tripID, payload)
}

// queue delivers an event to a single client, best-effort.
func (h *Hub) queue(client *Client, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	select {
	case client.Send <- payload:
	default:
	}
}

// SubscriberCount reports the live subscribers for a trip.
func (h *Hub) SubscriberCount(tripID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[tripID])
}
