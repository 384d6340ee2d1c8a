package model

import (
	"time"

	"gorm.io/gorm"
)

type Test struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	TestID          string         `json:"test_id" gorm:"not null;uniqueIndex"` // external identifier, stored lowercase
	Title           string         `json:"title" gorm:"not null"`
	DurationMinutes int            `json:"duration_minutes" gorm:"not null"`
	TotalMarks      float64        `json:"total_marks" gorm:"not null"`
	Questions       []Question     `json:"questions,omitempty" gorm:"foreignKey:TestID"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}
