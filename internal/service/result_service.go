package service

import (
	"errors"
	"fmt"

	"github.com/examgate/examgate/internal/apperr"
	"github.com/examgate/examgate/internal/dto"
	"github.com/examgate/examgate/internal/model"
	"github.com/examgate/examgate/internal/repository"
	"github.com/examgate/examgate/internal/scoring"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ResultService assembles the read-only result projection. It never triggers
// scoring; called before submit it simply shows the attempt's current state.
type ResultService interface {
	GetResult(attemptID uint) (*dto.ResultDTO, error)
}

type resultService struct {
	attemptRepo     repository.AttemptRepository
	testRepo        repository.TestRepository
	entitlementRepo repository.EntitlementRepository
	answerRepo      repository.AnswerRepository
}

func NewResultService(
	attemptRepo repository.AttemptRepository,
	testRepo repository.TestRepository,
	entitlementRepo repository.EntitlementRepository,
	answerRepo repository.AnswerRepository,
) ResultService {
	return &resultService{
		attemptRepo:     attemptRepo,
		testRepo:        testRepo,
		entitlementRepo: entitlementRepo,
		answerRepo:      answerRepo,
	}
}

func (s *resultService) GetResult(attemptID uint) (*dto.ResultDTO, error) {
	attempt, err := s.attemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ResultNotFound(attemptID)
		}
		log.Error().Err(err).Uint("attempt_id", attemptID).Msg("GetResult: attempt lookup failed")
		return nil, apperr.StorageFailure(err)
	}

	test, err := s.testRepo.FindByTestIDWithQuestions(attempt.TestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ResultNotFound(attemptID)
		}
		log.Error().Err(err).Str("test_id", attempt.TestID).Msg("GetResult: test lookup failed")
		return nil, apperr.StorageFailure(err)
	}

	// Roll number comes from the purchase record; attempts don't carry it.
	rollNumber := "N/A"
	entitlement, err := s.entitlementRepo.FindByEmailAndTest(attempt.StudentEmail, attempt.TestID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error().Err(err).Uint("attempt_id", attemptID).Msg("GetResult: entitlement lookup failed")
		return nil, apperr.StorageFailure(err)
	}
	if entitlement != nil {
		rollNumber = rollNumberOrNA(entitlement)
	}

	answers, err := s.answerRepo.FindByAttemptID(attemptID)
	if err != nil {
		log.Error().Err(err).Uint("attempt_id", attemptID).Msg("GetResult: failed to load answers")
		return nil, apperr.StorageFailure(err)
	}

	var score float64
	if attempt.Score != nil {
		score = *attempt.Score
	}
	var correctAnswers int
	if attempt.CorrectAnswers != nil {
		correctAnswers = *attempt.CorrectAnswers
	}

	result := dto.ResultDTO{
		Student: dto.StudentDTO{
			Email:      attempt.StudentEmail,
			RollNumber: rollNumber,
		},
		Test: dto.TestInfoDTO{
			TestID:          test.TestID,
			Title:           test.Title,
			DurationMinutes: test.DurationMinutes,
			TotalMarks:      test.TotalMarks,
			TotalQuestions:  len(test.Questions),
		},
		Result: dto.ResultSummaryDTO{
			Score:          score,
			CorrectAnswers: correctAnswers,
			TotalQuestions: len(answers),
			Percentage:     formatPercentage(score, test.TotalMarks),
			Status:         attempt.Status,
			StartTime:      attempt.StartTime,
			SubmittedAt:    attempt.SubmittedAt,
		},
	}

	result.Answers = make([]dto.AnswerReviewDTO, len(answers))
	for i, a := range answers {
		result.Answers[i] = answerReview(a)
	}
	return &result, nil
}

func answerReview(a model.Answer) dto.AnswerReviewDTO {
	return dto.AnswerReviewDTO{
		QuestionNumber: a.Question.QuestionNumber,
		QuestionText:   a.Question.QuestionText,
		Options: dto.OptionSetDTO{
			A: a.Question.OptionA,
			B: a.Question.OptionB,
			C: a.Question.OptionC,
			D: a.Question.OptionD,
		},
		SelectedOption: a.SelectedOption,
		CorrectAnswer:  a.Question.CorrectAnswer,
		IsCorrect:      scoring.IsCorrect(a.SelectedOption, a.Question.CorrectAnswer),
		Marks:          a.Question.Marks,
	}
}

// formatPercentage renders score/totalMarks as a two-decimal percentage,
// "0.00" when totalMarks is zero.
func formatPercentage(score, totalMarks float64) string {
	if totalMarks <= 0 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", score/totalMarks*100)
}
