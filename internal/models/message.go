package models

import (
	"time"

	"studyhub/internal/chattypes"
)

// Message is the persisted chat message. The wire shape is
// chattypes.Envelope; ToEnvelope converts between the two.
type Message struct {
	BaseModel
	ConversationID uint      `gorm:"index;not null" json:"conversationId"`
	SenderID       uint      `gorm:"index;not null" json:"senderId"`
	Type           string    `gorm:"type:varchar(20);not null;default:'text'" json:"type"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	FileURL        string    `gorm:"type:varchar(255)" json:"fileUrl,omitempty"`
	SentAt         time.Time `gorm:"not null;index" json:"sentAt"`

	Sender       User         `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Conversation Conversation `gorm:"foreignKey:ConversationID" json:"-"`
}

// TableName specifies the table name for the Message model.
func (Message) TableName() string {
	return "messages"
}

// ToEnvelope builds the canonical wire envelope for this message. clientID is
// the sender's temporary id, echoed back so the sender can reconcile its
// optimistic entry; empty for messages that did not originate from an
// optimistic client insert.
func (m *Message) ToEnvelope(clientID string) chattypes.Envelope {
	env := chattypes.Envelope{
		ID:             m.IDString(),
		ClientID:       clientID,
		ConversationID: m.Conversation.IDString(),
		SenderID:       m.Sender.IDString(),
		SenderName:     m.Sender.Name,
		Type:           chattypes.MessageType(m.Type),
		Content:        m.Content,
		FileURL:        m.FileURL,
		CreatedAt:      m.SentAt,
	}
	if m.Conversation.ID == 0 {
		env.ConversationID = uintString(m.ConversationID)
	}
	if m.Sender.ID == 0 {
		env.SenderID = uintString(m.SenderID)
	}
	return env
}

func uintString(v uint) string {
	b := BaseModel{ID: v}
	return b.IDString()
}
