package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/examgate/examgate/internal/apperr"
	"github.com/examgate/examgate/internal/dto"
	"github.com/examgate/examgate/internal/model"
	"github.com/examgate/examgate/internal/repository"
	"github.com/examgate/examgate/internal/scoring"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// AttemptService orchestrates the exam attempt lifecycle: start once per
// student/test pair, score exactly once on submit.
type AttemptService interface {
	Start(email, testID string) (*dto.ExamSessionDTO, error)
	Submit(attemptID uint) (*dto.ScoreSummaryDTO, error)
}

// AlreadyAttemptedError is returned by Start when an attempt for the pair
// already exists. It carries the prior attempt so the client can show it;
// attempts are not resumable once started.
type AlreadyAttemptedError struct {
	Attempt dto.AttemptSummaryDTO
}

func (e *AlreadyAttemptedError) Error() string {
	return fmt.Sprintf("test %s already attempted by %s", e.Attempt.TestID, e.Attempt.StudentEmail)
}

type attemptService struct {
	entitlementRepo repository.EntitlementRepository
	testRepo        repository.TestRepository
	attemptRepo     repository.AttemptRepository
	answerRepo      repository.AnswerRepository
}

func NewAttemptService(
	entitlementRepo repository.EntitlementRepository,
	testRepo repository.TestRepository,
	attemptRepo repository.AttemptRepository,
	answerRepo repository.AnswerRepository,
) AttemptService {
	return &attemptService{
		entitlementRepo: entitlementRepo,
		testRepo:        testRepo,
		attemptRepo:     attemptRepo,
		answerRepo:      answerRepo,
	}
}

func (s *attemptService) Start(email, testID string) (*dto.ExamSessionDTO, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	testID = strings.ToLower(strings.TrimSpace(testID))

	entitlement, err := s.entitlementRepo.FindByEmailAndTest(email, testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotEntitled(email, testID)
		}
		log.Error().Err(err).Str("email", email).Str("test_id", testID).Msg("Start: entitlement lookup failed")
		return nil, apperr.StorageFailure(err)
	}

	test, err := s.testRepo.FindByTestIDWithQuestions(testID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.UnknownTest(testID)
		}
		log.Error().Err(err).Str("test_id", testID).Msg("Start: test lookup failed")
		return nil, apperr.StorageFailure(err)
	}

	// Fast path: an attempt already exists. The unique index below remains
	// the source of truth, this check just avoids a doomed insert.
	existing, err := s.attemptRepo.FindByStudentAndTest(email, testID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error().Err(err).Str("email", email).Str("test_id", testID).Msg("Start: attempt lookup failed")
		return nil, apperr.StorageFailure(err)
	}
	if existing != nil {
		return nil, &AlreadyAttemptedError{Attempt: attemptSummary(existing)}
	}

	startTime := time.Now()
	attempt := model.Attempt{
		StudentEmail: email,
		TestID:       testID,
		StartTime:    startTime,
		EndTime:      startTime.Add(time.Duration(test.DurationMinutes) * time.Minute),
		Status:       model.AttemptInProgress,
	}
	if err := s.attemptRepo.Create(&attempt); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a concurrent start race; the winner's row is the attempt.
			winner, findErr := s.attemptRepo.FindByStudentAndTest(email, testID)
			if findErr != nil {
				log.Error().Err(findErr).Str("email", email).Str("test_id", testID).Msg("Start: failed to load attempt after duplicate-key race")
				return nil, apperr.StorageFailure(findErr)
			}
			return nil, &AlreadyAttemptedError{Attempt: attemptSummary(winner)}
		}
		log.Error().Err(err).Str("email", email).Str("test_id", testID).Msg("Start: failed to create attempt")
		return nil, apperr.StorageFailure(err)
	}

	log.Info().Uint("attempt_id", attempt.ID).Str("email", email).Str("test_id", testID).Msg("Attempt started")

	session := dto.ExamSessionDTO{
		AttemptID: attempt.ID,
		Student: dto.StudentDTO{
			Email:      email,
			RollNumber: rollNumberOrNA(entitlement),
		},
		Test: dto.TestInfoDTO{
			TestID:          test.TestID,
			Title:           test.Title,
			DurationMinutes: test.DurationMinutes,
			TotalMarks:      test.TotalMarks,
			TotalQuestions:  len(test.Questions),
		},
		Timing: dto.TimingDTO{
			StartTime:       attempt.StartTime,
			EndTime:         attempt.EndTime,
			DurationMinutes: test.DurationMinutes,
		},
	}
	// Correct answers and marks stay server-side; ExamQuestionDTO has no
	// fields for them.
	session.Questions = make([]dto.ExamQuestionDTO, len(test.Questions))
	for i, q := range test.Questions {
		if err := copier.Copy(&session.Questions[i], &q); err != nil {
			log.Error().Err(err).Uint("question_id", q.ID).Msg("Start: failed to copy question to DTO")
			return nil, apperr.StorageFailure(err)
		}
	}
	return &session, nil
}

func (s *attemptService) Submit(attemptID uint) (*dto.ScoreSummaryDTO, error) {
	attempt, err := s.attemptRepo.FindByID(attemptID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.AttemptNotFound(attemptID)
		}
		log.Error().Err(err).Uint("attempt_id", attemptID).Msg("Submit: attempt lookup failed")
		return nil, apperr.StorageFailure(err)
	}

	answers, err := s.answerRepo.FindByAttemptID(attemptID)
	if err != nil {
		log.Error().Err(err).Uint("attempt_id", attemptID).Msg("Submit: failed to load answers")
		return nil, apperr.StorageFailure(err)
	}

	// Retried submit: return the stored result, never rescore.
	if attempt.Status == model.AttemptCompleted {
		return storedScoreSummary(attempt, len(answers)), nil
	}

	rows := make([]scoring.AnswerRow, len(answers))
	for i, a := range answers {
		rows[i] = scoring.AnswerRow{
			Selected: a.SelectedOption,
			Correct:  a.Question.CorrectAnswer,
			Marks:    a.Question.Marks,
		}
	}
	summary := scoring.Score(rows)

	submittedAt := time.Now()
	finalized, err := s.attemptRepo.FinalizeScore(attemptID, submittedAt, summary.TotalScore, summary.CorrectAnswers)
	if err != nil {
		log.Error().Err(err).Uint("attempt_id", attemptID).Msg("Submit: failed to finalize attempt")
		return nil, apperr.StorageFailure(err)
	}
	if !finalized {
		// A concurrent submit finalized first; its result is the result.
		completed, findErr := s.attemptRepo.FindByID(attemptID)
		if findErr != nil {
			log.Error().Err(findErr).Uint("attempt_id", attemptID).Msg("Submit: failed to reload attempt after lost finalize race")
			return nil, apperr.StorageFailure(findErr)
		}
		return storedScoreSummary(completed, len(answers)), nil
	}

	log.Info().
		Uint("attempt_id", attemptID).
		Float64("score", summary.TotalScore).
		Int("correct_answers", summary.CorrectAnswers).
		Int("total_questions", summary.TotalQuestions).
		Msg("Attempt submitted and scored")

	return &dto.ScoreSummaryDTO{
		AttemptID:      attemptID,
		Score:          summary.TotalScore,
		CorrectAnswers: summary.CorrectAnswers,
		TotalQuestions: summary.TotalQuestions,
		SubmittedAt:    submittedAt,
	}, nil
}

func storedScoreSummary(attempt *model.Attempt, totalQuestions int) *dto.ScoreSummaryDTO {
	out := &dto.ScoreSummaryDTO{
		AttemptID:      attempt.ID,
		TotalQuestions: totalQuestions,
	}
	if attempt.Score != nil {
		out.Score = *attempt.Score
	}
	if attempt.CorrectAnswers != nil {
		out.CorrectAnswers = *attempt.CorrectAnswers
	}
	if attempt.SubmittedAt != nil {
		out.SubmittedAt = *attempt.SubmittedAt
	}
	return out
}

func attemptSummary(attempt *model.Attempt) dto.AttemptSummaryDTO {
	return dto.AttemptSummaryDTO{
		AttemptID:      attempt.ID,
		StudentEmail:   attempt.StudentEmail,
		TestID:         attempt.TestID,
		Status:         attempt.Status,
		StartTime:      attempt.StartTime,
		EndTime:        attempt.EndTime,
		SubmittedAt:    attempt.SubmittedAt,
		Score:          attempt.Score,
		CorrectAnswers: attempt.CorrectAnswers,
	}
}

func rollNumberOrNA(entitlement *model.Entitlement) string {
	if entitlement != nil && entitlement.RollNumber != nil && *entitlement.RollNumber != "" {
		return *entitlement.RollNumber
	}
	return "N/A"
}
