package models

import "encoding/json"

// Quiz is a shared set of questions attached to a subject. Scoring happens on
// the client; the backend only stores and serves the material.
type Quiz struct {
	BaseModel
	Title     string `gorm:"type:varchar(255);not null" json:"title"`
	Subject   string `gorm:"type:varchar(100);index" json:"subject"`
	CreatorID uint   `gorm:"index;not null" json:"creatorId"`

	Creator   User           `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Questions []QuizQuestion `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
}

// TableName specifies the table name for the Quiz model.
func (Quiz) TableName() string {
	return "quizzes"
}

// QuizQuestion is one multiple-choice question. Options is a JSON array of
// strings; CorrectAnswer indexes into it.
type QuizQuestion struct {
	BaseModel
	QuizID        uint            `gorm:"index;not null" json:"quizId"`
	Prompt        string          `gorm:"type:text;not null" json:"prompt"`
	Options       json.RawMessage `gorm:"type:jsonb;not null" json:"options"`
	CorrectAnswer int             `gorm:"not null" json:"correctAnswer"`
}

// TableName specifies the table name for the QuizQuestion model.
func (QuizQuestion) TableName() string {
	return "quiz_questions"
}
