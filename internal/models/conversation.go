package models

import "time"

// Conversation is a chat channel: either a direct conversation between two
// users or a named group chat. The realtime layer only needs the id and the
// participant set; everything else is display data.
type Conversation struct {
	BaseModel
	IsGroup bool   `gorm:"not null;default:false" json:"isGroup"`
	Name    string `gorm:"type:varchar(255)" json:"name,omitempty"` // group chats only

	// LastMessageID gives conversation lists their preview without loading
	// the whole history.
	LastMessageID *uint `gorm:"index" json:"lastMessageId,omitempty"`

	Users        []*User                   `gorm:"many2many:conversation_participants;" json:"users,omitempty"`
	Messages     []Message                 `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
	Participants []ConversationParticipant `gorm:"foreignKey:ConversationID" json:"participants,omitempty"`
}

// TableName specifies the table name for the Conversation model.
func (Conversation) TableName() string {
	return "conversations"
}

// ConversationParticipant links a user to a conversation. Membership here is
// what authorizes a room join and a message create.
type ConversationParticipant struct {
	ConversationID uint       `gorm:"primaryKey;autoIncrement:false" json:"conversationId"`
	UserID         uint       `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	JoinedAt       time.Time  `json:"joinedAt"`
	LastReadAt     *time.Time `json:"lastReadAt,omitempty"`

	User         User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Conversation Conversation `gorm:"foreignKey:ConversationID" json:"-"`
}

// TableName specifies the table name for the ConversationParticipant model.
func (ConversationParticipant) TableName() string {
	return "conversation_participants"
}
