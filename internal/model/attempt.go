package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	AttemptInProgress = "in_progress"
	AttemptCompleted  = "completed"
)

// Attempt is one student's single run through a test. The unique index on
// (student_email, test_id) is the source of truth for the
// one-attempt-per-student-per-test rule; the application-level existence check
// is only an optimization.
type Attempt struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	StudentEmail   string         `json:"student_email" gorm:"not null;uniqueIndex:idx_attempt_student_test"`
	TestID         string         `json:"test_id" gorm:"not null;uniqueIndex:idx_attempt_student_test"`
	StartTime      time.Time      `json:"start_time" gorm:"not null"`
	EndTime        time.Time      `json:"end_time" gorm:"not null"`
	Status         string         `json:"status" gorm:"not null;default:'in_progress'"`
	SubmittedAt    *time.Time     `json:"submitted_at,omitempty"`
	Score          *float64       `json:"score,omitempty"`
	CorrectAnswers *int           `json:"correct_answers,omitempty"`
	Answers        []Answer       `json:"answers,omitempty" gorm:"foreignKey:AttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}
