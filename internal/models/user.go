package models

import "encoding/json"

// User represents an account on the platform. Settings blobs (notification
// and privacy preferences) are stored as raw JSON and interpreted by the
// client only.
type User struct {
	BaseModel
	Email        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	Name         string `gorm:"type:varchar(100);not null" json:"name"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	ImageURL     string `gorm:"type:varchar(255)" json:"image,omitempty"`
	Bio          string `gorm:"type:text" json:"bio,omitempty"`
	Location     string `gorm:"type:varchar(100)" json:"location,omitempty"`
	Language     string `gorm:"type:varchar(20)" json:"language,omitempty"`

	Notifications json.RawMessage `gorm:"type:jsonb" json:"notifications,omitempty"`
	Privacy       json.RawMessage `gorm:"type:jsonb" json:"privacy,omitempty"`

	Conversations []*Conversation `gorm:"many2many:conversation_participants;" json:"-"`
	HostedGroups  []StudyGroup    `gorm:"foreignKey:HostID" json:"-"`
	MemberGroups  []*StudyGroup   `gorm:"many2many:group_members;" json:"-"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// UserBasicInfo is the minimal public view of a user, embedded in
// conversation and group payloads.
type UserBasicInfo struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Image string `json:"image,omitempty"`
}

// BasicInfo returns the public view of the user.
func (u *User) BasicInfo() UserBasicInfo {
	return UserBasicInfo{ID: u.ID, Name: u.Name, Email: u.Email, Image: u.ImageURL}
}
