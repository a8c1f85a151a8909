package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/gorilla/websocket"
)

var ErrMalformedFrame = errors.New("malformed frame")

// ActionType tags every envelope exchanged with clients
type ActionType string

// UserDisconnected announces that another player left the game
const UserDisconnected ActionType = "UserDisconnected"

// Frame is a single transport message
type Frame struct {
	Type int
	Data []byte
}

// Text wraps data into a text frame
func Text(data []byte) Frame {
	return Frame{Type: websocket.TextMessage, Data: data}
}

// IsText reports whether the frame carries a text payload
func (f Frame) IsText() bool {
	return f.Type == websocket.TextMessage
}

// Envelope is the outbound message shape: a tag plus a payload
type Envelope struct {
	ActionType ActionType `json:"action_type"`
	Data       any        `json:"data,omitempty"`
}

// Inbound is an envelope read from a client whose payload is decoded later
type Inbound struct {
	ActionType ActionType      `json:"action_type"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// UserDisconnectedData is the payload of the disconnect notice
type UserDisconnectedData struct {
	DisconnectedPlayerUUID string `json:"disconnected_player_uuid"`
}

// NewUserDisconnected builds the disconnect notice for the departing client
func NewUserDisconnected(clientID string) Envelope {
	return Envelope{
		ActionType: UserDisconnected,
		Data: UserDisconnectedData{
			DisconnectedPlayerUUID: clientID,
		},
	}
}

var marshal = json.Marshal

// Encode serializes an envelope into a text frame. A value that cannot be
// serialized yields an empty text frame.
func Encode(env Envelope) Frame {
	data, err := marshal(env)
	if err != nil {
		log.Printf("Failed to encode %s message: %v", env.ActionType, err)
		return Text([]byte{})
	}
	return Text(data)
}

// Decode parses a client frame into an inbound envelope
func Decode(f Frame) (*Inbound, error) {
	if !f.IsText() {
		return nil, fmt.Errorf("%w: unexpected frame type %d", ErrMalformedFrame, f.Type)
	}

	var in Inbound
	if err := json.Unmarshal(f.Data, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if in.ActionType == "" {
		return nil, fmt.Errorf("%w: missing action_type", ErrMalformedFrame)
	}

	return &in, nil
}
