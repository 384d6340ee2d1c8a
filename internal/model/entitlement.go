package model

import (
	"time"

	"gorm.io/gorm"
)

// Entitlement records that a student may take a test. Rows are written by the
// payment-verification flow; the unique index on (email, test_id) keeps one
// grant per pair. Both identifier columns are stored lowercase.
type Entitlement struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	Email      string         `json:"email" gorm:"not null;uniqueIndex:idx_entitlement_email_test"`
	TestID     string         `json:"test_id" gorm:"not null;uniqueIndex:idx_entitlement_email_test"`
	RollNumber *string        `json:"roll_number,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}
