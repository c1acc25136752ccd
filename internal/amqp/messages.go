package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"budgetplanner/internal/core"
)

// ChangeMessage is the wire form of a planner change event. It only carries
// identifiers; consumers reload the slot if they need full records.
type ChangeMessage struct {
	Kind      string    `json:"kind"`
	Slot      string    `json:"slot"`
	IDs       []string  `json:"ids,omitempty"`
	Label     string    `json:"label,omitempty"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeMessage converts a change event into a message. A zero event time
// is replaced with now.
func NewChangeMessage(ev core.ChangeEvent) *ChangeMessage {
	msg := &ChangeMessage{
		Kind:      string(ev.Kind),
		Slot:      ev.Slot,
		Label:     ev.Label,
		Count:     ev.Count,
		Timestamp: ev.At,
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	for _, id := range ev.IDs {
		msg.IDs = append(msg.IDs, id.String())
	}
	return msg
}

// Event converts the message back into a change event.
func (m *ChangeMessage) Event() core.ChangeEvent {
	ev := core.ChangeEvent{
		Kind:  core.ChangeKind(m.Kind),
		Slot:  m.Slot,
		Label: m.Label,
		Count: m.Count,
		At:    m.Timestamp,
	}
	for _, id := range m.IDs {
		ev.IDs = append(ev.IDs, core.ExpenseID(id))
	}
	return ev
}

// RoutingKey routes messages by slot so consumers can bind selectively.
func (m *ChangeMessage) RoutingKey() string {
	return m.Slot
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON creates a message from JSON bytes
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Kind == "" {
		return nil, fmt.Errorf("change message without kind")
	}
	return &msg, nil
}
