package testutil

import (
	"sync"

	"github.com/dafibh/tally/tally-backend/internal/websocket"
)

// PublishedEvent is one recorded Publish call
type PublishedEvent struct {
	UserID int32
	Event  websocket.Event
}

// RecordingPublisher records every published event
type RecordingPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent
}

// Publish implements websocket.EventPublisher
func (p *RecordingPublisher) Publish(userID int32, event websocket.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, PublishedEvent{UserID: userID, Event: event})
}

// Events returns a copy of the recorded events
func (p *RecordingPublisher) Events() []PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]PublishedEvent, len(p.events))
	copy(out, p.events)
	return out
}

// Types returns the recorded event types in order
func (p *RecordingPublisher) Types() []string {
	var types []string
	for _, e := range p.Events() {
		types = append(types, e.Event.Type)
	}
	return types
}
