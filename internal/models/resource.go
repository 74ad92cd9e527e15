package models

// Resource is a file or link shared with a study group.
type Resource struct {
	BaseModel
	GroupID     uint   `gorm:"index;not null" json:"groupId"`
	UploaderID  uint   `gorm:"index;not null" json:"uploaderId"`
	Title       string `gorm:"type:varchar(255);not null" json:"title"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	FileURL     string `gorm:"type:varchar(255);not null" json:"fileUrl"`

	Uploader User       `gorm:"foreignKey:UploaderID" json:"uploader,omitempty"`
	Group    StudyGroup `gorm:"foreignKey:GroupID" json:"-"`
}

// TableName specifies the table name for the Resource model.
func (Resource) TableName() string {
	return "resources"
}
