package chattypes

import (
	"encoding/json"
	"fmt"
)

// Event names exchanged over the websocket. Client-to-server events carry a
// room or send intent; server-to-client events carry envelopes and typing
// signals relayed to the other room members.
const (
	EventJoinRoom    = "join-room"
	EventLeaveRoom   = "leave-room"
	EventSendMessage = "send-message"
	EventNewMessage  = "new-message"
	EventTyping      = "typing"
	EventStopTyping  = "stop-typing"
	EventUserTyping  = "user-typing"
	EventUserStopped = "user-stop-typing"
)

// Frame is the envelope of every websocket exchange: an event name plus an
// event-specific JSON payload.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// RoomRef identifies a conversation room in join/leave frames.
type RoomRef struct {
	ConversationID string `json:"conversationId"`
}

// SendMessage is the client's send intent. SenderID is intentionally absent:
// the server binds the sender from the authenticated connection.
type SendMessage struct {
	ClientID       string      `json:"clientId,omitempty"`
	ConversationID string      `json:"conversationId"`
	Type           MessageType `json:"type"`
	Content        string      `json:"content"`
	FileURL        string      `json:"fileUrl,omitempty"`
}

// TypingSignal is relayed to the other members of a room. UserID is filled in
// server-side from the connection identity.
type TypingSignal struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
}

// NewFrame marshals data into a Frame for the given event.
func NewFrame(event string, data interface{}) (Frame, error) {
	if data == nil {
		return Frame{Event: event}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Frame{}, fmt.Errorf("marshal %s frame: %w", event, err)
	}
	return Frame{Event: event, Data: raw}, nil
}

// Encode returns the wire bytes for an event frame.
func Encode(event string, data interface{}) ([]byte, error) {
	frame, err := NewFrame(event, data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(frame)
}
