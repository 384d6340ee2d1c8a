package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/examgate/examgate/internal/apperr"
	"github.com/examgate/examgate/internal/dto"
	"github.com/examgate/examgate/internal/model"
	"github.com/examgate/examgate/internal/repository"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AdminTestService manages the exam blueprints: tests and their questions.
// Questions are only created together with their test; there is no mutation
// of a live question set.
type AdminTestService interface {
	CreateTest(req dto.TestCreateDTO) (*dto.AdminTestDTO, error)
	ListTests() ([]dto.TestSummaryDTO, error)
	ListAttempts(testID string) ([]dto.AttemptSummaryDTO, error)
}

type adminTestService struct {
	testRepo    repository.TestRepository
	attemptRepo repository.AttemptRepository
}

func NewAdminTestService(testRepo repository.TestRepository, attemptRepo repository.AttemptRepository) AdminTestService {
	return &adminTestService{testRepo: testRepo, attemptRepo: attemptRepo}
}

func (s *adminTestService) CreateTest(req dto.TestCreateDTO) (*dto.AdminTestDTO, error) {
	numbers := make(map[int]bool, len(req.Questions))
	for _, q := range req.Questions {
		if numbers[q.QuestionNumber] {
			return nil, apperr.MissingFields(fmt.Sprintf("duplicate question number %d", q.QuestionNumber))
		}
		numbers[q.QuestionNumber] = true
	}

	test := model.Test{
		TestID:          strings.ToLower(strings.TrimSpace(req.TestID)),
		Title:           req.Title,
		DurationMinutes: req.DurationMinutes,
		TotalMarks:      req.TotalMarks,
	}
	test.Questions = make([]model.Question, len(req.Questions))
	for i, q := range req.Questions {
		test.Questions[i] = model.Question{
			QuestionNumber: q.QuestionNumber,
			QuestionText:   q.QuestionText,
			OptionA:        q.OptionA,
			OptionB:        q.OptionB,
			OptionC:        q.OptionC,
			OptionD:        q.OptionD,
			CorrectAnswer:  strings.ToUpper(strings.TrimSpace(q.CorrectAnswer)),
			Marks:          q.Marks,
		}
	}

	if err := s.testRepo.Create(&test); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.TestExists(test.TestID)
		}
		log.Error().Err(err).Str("test_id", test.TestID).Msg("CreateTest: failed to create test")
		return nil, apperr.StorageFailure(err)
	}

	log.Info().Str("test_id", test.TestID).Int("questions", len(test.Questions)).Msg("Test created")

	var resp dto.AdminTestDTO
	if err := copier.Copy(&resp, &test); err != nil {
		log.Error().Err(err).Str("test_id", test.TestID).Msg("CreateTest: failed to copy test to DTO")
		return nil, apperr.StorageFailure(err)
	}
	return &resp, nil
}

func (s *adminTestService) ListTests() ([]dto.TestSummaryDTO, error) {
	testsWithCount, err := s.testRepo.FindAllWithQuestionCount()
	if err != nil {
		log.Error().Err(err).Msg("ListTests: repository failure")
		return nil, apperr.StorageFailure(err)
	}

	dtos := make([]dto.TestSummaryDTO, 0, len(testsWithCount))
	for _, twc := range testsWithCount {
		dtos = append(dtos, dto.TestSummaryDTO{
			ID:              twc.Test.ID,
			TestID:          twc.Test.TestID,
			Title:           twc.Test.Title,
			DurationMinutes: twc.Test.DurationMinutes,
			TotalMarks:      twc.Test.TotalMarks,
			QuestionCount:   twc.QuestionCount,
			CreatedAt:       twc.Test.CreatedAt,
		})
	}
	return dtos, nil
}

func (s *adminTestService) ListAttempts(testID string) ([]dto.AttemptSummaryDTO, error) {
	attempts, err := s.attemptRepo.FindAllByTest(strings.ToLower(strings.TrimSpace(testID)))
	if err != nil {
		log.Error().Err(err).Str("test_id", testID).Msg("ListAttempts: repository failure")
		return nil, apperr.StorageFailure(err)
	}

	dtos := make([]dto.AttemptSummaryDTO, 0, len(attempts))
	for i := range attempts {
		dtos = append(dtos, attemptSummary(&attempts[i]))
	}
	return dtos, nil
}
