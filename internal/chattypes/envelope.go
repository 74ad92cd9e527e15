package chattypes

import "time"

// MessageType defines the type of a chat message.
type MessageType string

const (
	TextMessageType   MessageType = "text"
	ImageMessageType  MessageType = "image"
	FileMessageType   MessageType = "file"
	SystemMessageType MessageType = "system"
)

// Envelope is the canonical wire representation of one chat message. It is
// what the fan-out layer delivers to room members and what the message-create
// endpoint returns to its caller.
//
// ID is the server-assigned identifier; it is the only key used for duplicate
// suppression. ClientID carries the sender's temporary id back to the sender
// so the optimistic entry can be replaced by id rather than by comparing
// content and timestamps.
type Envelope struct {
	ID             string      `json:"id"`
	ClientID       string      `json:"clientId,omitempty"`
	ConversationID string      `json:"conversationId"`
	SenderID       string      `json:"senderId"`
	SenderName     string      `json:"senderName,omitempty"`
	Type           MessageType `json:"type"`
	Content        string      `json:"content"`
	FileURL        string      `json:"fileUrl,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
}
