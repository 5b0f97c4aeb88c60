// Package wire defines the frames exchanged over the replication socket.
package wire

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/iliyamo/tasting-service/internal/event"
)

// MessageType tags a frame.
type MessageType string

const (
	TypeEvent    MessageType = "EVENT"
	TypeSnapshot MessageType = "SNAPSHOT"
)

// ErrUnknownMessageType is returned for frames that are valid JSON but
// carry neither an EVENT nor a SNAPSHOT.
var ErrUnknownMessageType = errors.New("unknown message type")

// Message is one frame: {"type": ..., "payload": ...}.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Parse decodes a raw frame.  Anything that is not a well-formed EVENT or
// SNAPSHOT frame is an error; callers drop such frames.
func Parse(b []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return Message{}, fmt.Errorf("parse frame: %w", err)
	}
	switch m.Type {
	case TypeEvent, TypeSnapshot:
		return m, nil
	default:
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownMessageType, m.Type)
	}
}

// NewEvent wraps an op as an EVENT frame.
func NewEvent(op event.Op) (Message, error) {
	ev, err := event.Encode(op)
	if err != nil {
		return Message{}, err
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return Message{}, fmt.Errorf("encode event frame: %w", err)
	}
	return Message{Type: TypeEvent, Payload: payload}, nil
}

// NewSnapshot wraps a full state as a SNAPSHOT frame.
func NewSnapshot(s event.State) (Message, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return Message{}, fmt.Errorf("encode snapshot frame: %w", err)
	}
	return Message{Type: TypeSnapshot, Payload: payload}, nil
}

// Op decodes the op carried by an EVENT frame.
func (m Message) Op() (event.Op, error) {
	if m.Type != TypeEvent {
		return nil, fmt.Errorf("%w: want %s, got %s", ErrUnknownMessageType, TypeEvent, m.Type)
	}
	var ev event.Event
	if err := json.Unmarshal(m.Payload, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", event.ErrMalformedEvent, err)
	}
	return event.Decode(ev)
}

// State decodes the state carried by a SNAPSHOT frame.
func (m Message) State() (event.State, error) {
	if m.Type != TypeSnapshot {
		return event.State{}, fmt.Errorf("%w: want %s, got %s", ErrUnknownMessageType, TypeSnapshot, m.Type)
	}
	var s event.State
	if err := json.Unmarshal(m.Payload, &s); err != nil {
		return event.State{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}

// Bytes encodes the frame.
func (m Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}
