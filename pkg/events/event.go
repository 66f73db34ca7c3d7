package events

import (
	"context"
	"time"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "DOCUMENT_LOADED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Topic is the in-process topic every session event is published on.
const Topic = "pdf_chat.events"

const (
	TypeDocumentLoaded     = "DOCUMENT_LOADED"
	TypeDocumentLoadFailed = "DOCUMENT_LOAD_FAILED"
	TypeDocumentCleared    = "DOCUMENT_CLEARED"
	TypeExchangeCompleted  = "EXCHANGE_COMPLETED"
)

// BaseEvent is the one concrete Event; producers fill Type and Data.
type BaseEvent struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Publisher is implemented by anything that can carry events out of a component.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
