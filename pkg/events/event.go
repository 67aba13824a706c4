package events

import (
	"encoding/json"
	"fmt"
	"time"
)

type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// Raw is an event as it comes off the bus, before a typed decoder such as
// QueryAnsweredFrom has looked at it.
type Raw struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

var _ Event = Raw{}

func (e Raw) EventType() string               { return e.Type }
func (e Raw) Payload() map[string]interface{} { return e.Data }
func (e Raw) Timestamp() time.Time            { return e.OccurredAt }

// Encode serialises the payload of e. Type and time travel outside the body
// (subject name and broker metadata).
func Encode(e Event) ([]byte, error) {
	data, err := json.Marshal(e.Payload())
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", e.EventType(), err)
	}
	return data, nil
}

// Decode is the inverse of Encode. A body that is not a JSON object is an error.
func Decode(eventType string, body []byte, occurredAt time.Time) (Raw, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return Raw{}, fmt.Errorf("decode %s payload: %w", eventType, err)
	}
	if data == nil {
		return Raw{}, fmt.Errorf("decode %s payload: empty body", eventType)
	}
	return Raw{Type: eventType, Data: data, OccurredAt: occurredAt}, nil
}
