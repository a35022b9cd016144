package pubsub

import (
	"context"
	"encoding/json"
	"time"
)

// Event is a resource lifecycle notification published to the event bus.
type Event struct {
	Type       string          `json:"type"`
	ResourceID string          `json:"resource_id"`
	ActorID    string          `json:"actor_id"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

// NewEvent creates a new event with the current timestamp.
// A nil payload produces an event without a payload field.
func NewEvent(eventType, resourceID, actorID string, payload interface{}) (*Event, error) {
	evt := &Event{
		Type:       eventType,
		ResourceID: resourceID,
		ActorID:    actorID,
		Timestamp:  time.Now().UTC(),
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		evt.Payload = data
	}
	return evt, nil
}

// UnmarshalPayload unmarshals the event payload into the given struct.
func (e *Event) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// Publisher publishes events to the event bus.
type Publisher interface {
	Publish(ctx context.Context, channel string, event *Event) error
	Close() error
}
