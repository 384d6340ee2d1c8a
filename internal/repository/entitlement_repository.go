package repository

import (
	"strings"

	"github.com/examgate/examgate/internal/model"
	"gorm.io/gorm"
)

type EntitlementRepository interface {
	Create(entitlement *model.Entitlement) error
	FindByEmailAndTest(email, testID string) (*model.Entitlement, error)
}

type entitlementRepository struct {
	db *gorm.DB
}

func NewEntitlementRepository(db *gorm.DB) EntitlementRepository {
	return &entitlementRepository{db: db}
}

func (r *entitlementRepository) Create(entitlement *model.Entitlement) error {
	entitlement.Email = strings.ToLower(entitlement.Email)
	entitlement.TestID = strings.ToLower(entitlement.TestID)
	return r.db.Create(entitlement).Error
}

func (r *entitlementRepository) FindByEmailAndTest(email, testID string) (*model.Entitlement, error) {
	var entitlement model.Entitlement
	err := r.db.
		Where("email = ? AND test_id = ?", strings.ToLower(email), strings.ToLower(testID)).
		First(&entitlement).Error
	if err != nil {
		return nil, err
	}
	return &entitlement, nil
}
