package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType is the action that happened to an entity
type EventType string

const (
	EventTypeCreated EventType = "created"
	EventTypeUpdated EventType = "updated"
	EventTypeDeleted EventType = "deleted"
)

// EntityType is the ledger entity an event is about
type EntityType string

const (
	EntityTypeCategory    EntityType = "category"
	EntityTypeTransaction EntityType = "transaction"
	EntityTypeLedger      EntityType = "ledger"
)

// Event is the message pushed to live clients and the message bus.
// Format: { type, entity, payload, timestamp, seq }
type Event struct {
	Type      string      `json:"type"`   // e.g. "transaction.created"
	Entity    EntityType  `json:"entity"` // e.g. "transaction"
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`

	// Seq is the position in the user's live feed, set by the Hub
	Seq uint64 `json:"seq,omitempty"`
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// CategoryCreated creates a category.created event
func CategoryCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeCategory, payload)
}

// CategoryUpdated creates a category.updated event
func CategoryUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeCategory, payload)
}

// CategoryDeleted creates a category.deleted event
func CategoryDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeCategory, payload)
}

// TransactionCreated creates a transaction.created event
func TransactionCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeTransaction, payload)
}

// TransactionUpdated creates a transaction.updated event
func TransactionUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeTransaction, payload)
}

// TransactionDeleted creates a transaction.deleted event
func TransactionDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeTransaction, payload)
}

// ResyncRequired tells a resuming client that events were missed and its
// view must be reloaded. The payload carries the feed's current sequence.
func ResyncRequired(currentSeq uint64) Event {
	evt := NewEvent("resync", EntityTypeLedger, map[string]uint64{"seq": currentSeq})
	evt.Seq = currentSeq
	return evt
}
