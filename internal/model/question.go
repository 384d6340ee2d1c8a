package model

import (
	"time"

	"gorm.io/gorm"
)

type Question struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	TestID         uint           `json:"test_id" gorm:"not null;index;uniqueIndex:idx_test_question_number"`
	QuestionNumber int            `json:"question_number" gorm:"not null;uniqueIndex:idx_test_question_number"` // display and grading order
	QuestionText   string         `json:"question_text" gorm:"type:text;not null"`
	OptionA        string         `json:"option_a" gorm:"not null"`
	OptionB        string         `json:"option_b" gorm:"not null"`
	OptionC        string         `json:"option_c" gorm:"not null"`
	OptionD        string         `json:"option_d" gorm:"not null"`
	CorrectAnswer  string         `json:"correct_answer" gorm:"not null"` // one of A/B/C/D, stored uppercase
	Marks          float64        `json:"marks" gorm:"not null"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}
