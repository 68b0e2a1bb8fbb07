package events

import (
	"encoding/json"
	"fmt"
)

// EventType enumerates lifecycle events pushed to live subscribers.
type EventType string

const (
	EventRequestCreated EventType = "created"
	EventRequestStatus  EventType = "status"
)

// Event is the record written to every open update stream. It only carries
// id, owner and status fields, so it is safe to send to every subscriber.
type Event struct {
	Type        EventType `json:"type"`
	ID          int64     `json:"id"`
	UID         *int64    `json:"uid"`
	ServiceType *string   `json:"serviceType,omitempty"`
	Status      string    `json:"status"`
}

// Frame renders the event as a server-sent-event data frame.
func (e Event) Frame() ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal %s event: %w", e.Type, err)
	}
	frame := make([]byte, 0, len(payload)+8)
	frame = append(frame, "data: "...)
	frame = append(frame, payload...)
	frame = append(frame, '\n', '\n')
	return frame, nil
}

var (
	// openFrame confirms the stream before any event is available.
	openFrame = []byte(":ok\n\n")
	// pingFrame keeps idle streams alive and surfaces dead transports.
	pingFrame = []byte(":ping\n\n")
)
