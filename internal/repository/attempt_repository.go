package repository

import (
	"time"

	"github.com/examgate/examgate/internal/model"
	"gorm.io/gorm"
)

type AttemptRepository interface {
	Create(attempt *model.Attempt) error
	FindByID(id uint) (*model.Attempt, error)
	FindByStudentAndTest(email, testID string) (*model.Attempt, error)
	FindAllByTest(testID string) ([]model.Attempt, error)
	// FinalizeScore completes an attempt with a status guard: the update only
	// applies while the attempt is still in progress, so exactly one of any
	// number of concurrent submitters wins. Returns false when the guard
	// rejected the write.
	FinalizeScore(id uint, submittedAt time.Time, score float64, correctAnswers int) (bool, error)
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Create(attempt *model.Attempt) error {
	return r.db.Create(attempt).Error
}

func (r *attemptRepository) FindByID(id uint) (*model.Attempt, error) {
	var attempt model.Attempt
	if err := r.db.First(&attempt, id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindByStudentAndTest(email, testID string) (*model.Attempt, error) {
	var attempt model.Attempt
	err := r.db.Where("student_email = ? AND test_id = ?", email, testID).First(&attempt).Error
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *attemptRepository) FindAllByTest(testID string) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.db.Where("test_id = ?", testID).Order("created_at DESC").Find(&attempts).Error
	return attempts, err
}

func (r *attemptRepository) FinalizeScore(id uint, submittedAt time.Time, score float64, correctAnswers int) (bool, error) {
	res := r.db.Model(&model.Attempt{}).
		Where("id = ? AND status = ?", id, model.AttemptInProgress).
		Updates(map[string]interface{}{
			"status":          model.AttemptCompleted,
			"submitted_at":    submittedAt,
			"score":           score,
			"correct_answers": correctAnswers,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
