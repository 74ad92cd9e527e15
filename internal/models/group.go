package models

import "time"

// StudyGroup is a named group of users studying one subject together. Each
// group owns its study sessions and shared resources; group chat happens in a
// dedicated group conversation.
type StudyGroup struct {
	BaseModel
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Subject     string `gorm:"type:varchar(100);index" json:"subject"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	HostID      uint   `gorm:"index;not null" json:"hostId"`

	// ConversationID links the group to its chat channel.
	ConversationID *uint `gorm:"index" json:"conversationId,omitempty"`

	Host      User           `gorm:"foreignKey:HostID" json:"host,omitempty"`
	Members   []*User        `gorm:"many2many:group_members;" json:"members,omitempty"`
	Sessions  []StudySession `gorm:"foreignKey:GroupID" json:"sessions,omitempty"`
	Resources []Resource     `gorm:"foreignKey:GroupID" json:"resources,omitempty"`
}

// TableName specifies the table name for the StudyGroup model.
func (StudyGroup) TableName() string {
	return "study_groups"
}

// GroupMember links a user to a study group.
type GroupMember struct {
	GroupID  uint      `gorm:"primaryKey;autoIncrement:false" json:"groupId"`
	UserID   uint      `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	JoinedAt time.Time `json:"joinedAt"`

	User  User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Group StudyGroup `gorm:"foreignKey:GroupID" json:"-"`
}

// TableName specifies the table name for the GroupMember model.
func (GroupMember) TableName() string {
	return "group_members"
}

// StudySession is a scheduled meeting of a study group.
type StudySession struct {
	BaseModel
	GroupID   uint      `gorm:"index;not null" json:"groupId"`
	HostID    uint      `gorm:"index;not null" json:"hostId"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	StartTime time.Time `gorm:"not null;index" json:"startTime"`
	EndTime   time.Time `gorm:"not null" json:"endTime"`

	Group StudyGroup `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Host  User       `gorm:"foreignKey:HostID" json:"host,omitempty"`
}

// TableName specifies the table name for the StudySession model.
func (StudySession) TableName() string {
	return "study_sessions"
}
