package repository

import (
	"github.com/examgate/examgate/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnswerRepository interface {
	// Upsert inserts the answer or, when a row for (attempt_id, question_id)
	// already exists, overwrites its selection and timestamp. Atomic at the
	// storage layer so rapid duplicate syncs converge to one row.
	Upsert(answer *model.Answer) error
	FindByAttemptID(attemptID uint) ([]model.Answer, error)
}

type answerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) AnswerRepository {
	return &answerRepository{db: db}
}

func (r *answerRepository) Upsert(answer *model.Answer) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "attempt_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"selected_option", "answered_at", "updated_at"}),
	}).Create(answer).Error
}

func (r *answerRepository) FindByAttemptID(attemptID uint) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.db.
		Joins("JOIN questions ON questions.id = answers.question_id").
		Where("answers.attempt_id = ?", attemptID).
		Order("questions.question_number ASC").
		Preload("Question").
		Find(&answers).Error
	return answers, err
}
