package service

import (
	"errors"
	"strings"
	"time"

	"github.com/examgate/examgate/internal/apperr"
	"github.com/examgate/examgate/internal/dto"
	"github.com/examgate/examgate/internal/model"
	"github.com/examgate/examgate/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AnswerSyncService records the student's current selections while the
// attempt window is open. Called on every option click, so it has to be cheap
// and fully idempotent: syncing the same value twice leaves identical state.
type AnswerSyncService interface {
	Sync(req dto.SyncAnswerRequest) (*dto.SyncAckDTO, error)
}

type answerSyncService struct {
	attemptRepo  repository.AttemptRepository
	testRepo     repository.TestRepository
	questionRepo repository.QuestionRepository
	answerRepo   repository.AnswerRepository
}

func NewAnswerSyncService(
	attemptRepo repository.AttemptRepository,
	testRepo repository.TestRepository,
	questionRepo repository.QuestionRepository,
	answerRepo repository.AnswerRepository,
) AnswerSyncService {
	return &answerSyncService{
		attemptRepo:  attemptRepo,
		testRepo:     testRepo,
		questionRepo: questionRepo,
		answerRepo:   answerRepo,
	}
}

func (s *answerSyncService) Sync(req dto.SyncAnswerRequest) (*dto.SyncAckDTO, error) {
	attempt, err := s.attemptRepo.FindByID(req.AttemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.AttemptNotFound(req.AttemptID)
		}
		log.Error().Err(err).Uint("attempt_id", req.AttemptID).Msg("Sync: attempt lookup failed")
		return nil, apperr.StorageFailure(err)
	}
	if attempt.Status == model.AttemptCompleted {
		return nil, apperr.AttemptClosed(req.AttemptID)
	}

	question, err := s.questionRepo.FindByID(req.QuestionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.MissingFields("question not found")
		}
		log.Error().Err(err).Uint("question_id", req.QuestionID).Msg("Sync: question lookup failed")
		return nil, apperr.StorageFailure(err)
	}
	test, err := s.testRepo.FindByTestID(attempt.TestID)
	if err != nil {
		log.Error().Err(err).Str("test_id", attempt.TestID).Msg("Sync: test lookup failed")
		return nil, apperr.StorageFailure(err)
	}
	if question.TestID != test.ID {
		return nil, apperr.MissingFields("question does not belong to the attempted test")
	}

	selected := normalizeSelection(req.SelectedOption)
	if selected != nil && !isValidOption(*selected) {
		return nil, apperr.MissingFields("selected_option must be one of A, B, C, D")
	}

	answer := model.Answer{
		AttemptID:      req.AttemptID,
		QuestionID:     req.QuestionID,
		SelectedOption: selected,
		AnsweredAt:     time.Now(),
	}
	if err := s.answerRepo.Upsert(&answer); err != nil {
		log.Error().Err(err).Uint("attempt_id", req.AttemptID).Uint("question_id", req.QuestionID).Msg("Sync: upsert failed")
		return nil, apperr.StorageFailure(err)
	}

	return &dto.SyncAckDTO{
		AttemptID:      answer.AttemptID,
		QuestionID:     answer.QuestionID,
		SelectedOption: answer.SelectedOption,
		AnsweredAt:     answer.AnsweredAt,
	}, nil
}

// normalizeSelection maps an empty or whitespace selection to nil, the stored
// form of "skipped".
func normalizeSelection(selected *string) *string {
	if selected == nil {
		return nil
	}
	v := strings.TrimSpace(*selected)
	if v == "" {
		return nil
	}
	return &v
}

func isValidOption(v string) bool {
	switch strings.ToUpper(v) {
	case "A", "B", "C", "D":
		return true
	}
	return false
}
