package model

import (
	"time"

	"gorm.io/gorm"
)

// Answer is the student's current selection for one question within one
// attempt. The unique index on (attempt_id, question_id) backs the sync
// upsert; a nil SelectedOption is an explicit skip.
type Answer struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	AttemptID      uint           `json:"attempt_id" gorm:"not null;index;uniqueIndex:idx_answer_attempt_question"`
	QuestionID     uint           `json:"question_id" gorm:"not null;uniqueIndex:idx_answer_attempt_question"`
	Question       Question       `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	SelectedOption *string        `json:"selected_option"`
	AnsweredAt     time.Time      `json:"answered_at" gorm:"not null"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}
