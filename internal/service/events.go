package service

import (
	"slices"
	"sync"
)

// EventType defines the type of event
type EventType string

const (
	EventGenerated        EventType = "generated"
	EventGenerationFailed EventType = "generation_failed"
	EventImported         EventType = "imported"
	EventScriptsReloaded  EventType = "scripts_reloaded"
)

// Event represents an event that occurred in the system
type Event struct {
	Type    EventType   `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// EventBus allows publishing and subscribing to events
type EventBus struct {
	mu          sync.RWMutex
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe registers ch and returns a function removing it again.
// Delivery never blocks: a full channel misses the event.
func (eb *EventBus) Subscribe(ch chan<- Event) (unsubscribe func()) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers = append(eb.subscribers, ch)
	return func() {
		eb.mu.Lock()
		defer eb.mu.Unlock()
		eb.subscribers = slices.DeleteFunc(eb.subscribers, func(c chan<- Event) bool { return c == ch })
	}
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
