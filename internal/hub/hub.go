// Package hub fans service events out to server-sent event clients.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// message is one encoded SSE frame.
type message []byte

type subscriber struct {
	id    string
	queue chan message
}

// Hub manages SSE client connections
type Hub struct {
	mu        sync.RWMutex
	subs      map[string]*subscriber
	closed    bool
	pending   chan message
	keepAlive time.Duration
}

// New creates a new Hub
func New() *Hub {
	return &Hub{
		subs:      make(map[string]*subscriber),
		pending:   make(chan message, 256),
		keepAlive: 30 * time.Second,
	}
}

// Run delivers published frames until ctx is cancelled, then disconnects
// every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case msg := <-h.pending:
			h.mu.RLock()
			for _, sub := range h.subs {
				select {
				case sub.queue <- msg:
				default:
					log.Printf("SSE client %s is slow, skipping message", sub.id)
				}
			}
			h.mu.RUnlock()

		case <-ctx.Done():
			h.mu.Lock()
			h.closed = true
			for id, sub := range h.subs {
				delete(h.subs, id)
				close(sub.queue)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Publish queues an event named name for every connected client. The payload
// is sent as JSON in the data field.
func (h *Hub) Publish(name string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", name, err)
		return
	}
	select {
	case h.pending <- message(fmt.Sprintf("event: %s\ndata: %s\n\n", name, data)):
	default:
		log.Printf("Event queue full, dropping %s event", name)
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func (h *Hub) subscribe() (*subscriber, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	sub := &subscriber{id: uuid.NewString(), queue: make(chan message, 64)}
	h.subs[sub.id] = sub
	log.Printf("SSE client connected: %s (total: %d)", sub.id, len(h.subs))
	return sub, true
}

func (h *Hub) unsubscribe(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub.id]; !ok {
		return
	}
	delete(h.subs, sub.id)
	close(sub.queue)
	log.Printf("SSE client disconnected: %s (total: %d)", sub.id, len(h.subs))
}

// ServeHTTP streams events to one client until it disconnects or the hub stops.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	sub, ok := h.subscribe()
	if !ok {
		http.Error(w, "Server shutting down", http.StatusServiceUnavailable)
		return
	}
	defer h.unsubscribe(sub)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	fmt.Fprintf(w, ": connected %s\n\n", sub.id)
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		var frame []byte
		select {
		case msg, open := <-sub.queue:
			if !open {
				return
			}
			frame = msg
		case <-ticker.C:
			frame = []byte(": keepalive\n\n")
		case <-r.Context().Done():
			return
		}
		if _, err := w.Write(frame); err != nil {
			return
		}
		flusher.Flush()
	}
}
