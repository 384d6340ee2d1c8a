package user

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/examgate/examgate/internal/apperr"
	"github.com/examgate/examgate/internal/dto"
	"github.com/examgate/examgate/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ExamController struct {
	attemptService service.AttemptService
	syncService    service.AnswerSyncService
	resultService  service.ResultService
}

func NewExamController(
	attemptService service.AttemptService,
	syncService service.AnswerSyncService,
	resultService service.ResultService,
) *ExamController {
	return &ExamController{
		attemptService: attemptService,
		syncService:    syncService,
		resultService:  resultService,
	}
}

// StartExam godoc
// @Summary Start an exam attempt
// @Description Starts a timed attempt for an entitled student. Each student gets exactly one attempt per test; a repeated start returns the existing attempt instead of creating another.
// @Tags Exam
// @Accept json
// @Produce json
// @Param request body dto.StartExamRequest true "Student email and test identifier"
// @Success 200 {object} dto.ExamSessionDTO
// @Failure 400 {object} dto.ErrorResponse "Missing or malformed fields"
// @Failure 403 {object} dto.ErrorResponse "No entitlement for this test"
// @Failure 404 {object} dto.ErrorResponse "Test not found"
// @Failure 409 {object} dto.AlreadyAttemptedResponse "Already attempted"
// @Router /exams/start [post]
func (c *ExamController) StartExam(ctx *gin.Context) {
	var req dto.StartExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("StartExam: failed to bind request")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: apperr.CodeMissingFields, Message: "email and test_id are required", Details: []string{err.Error()}})
		return
	}

	session, err := c.attemptService.Start(req.Email, req.TestID)
	if err != nil {
		var already *service.AlreadyAttemptedError
		if errors.As(err, &already) {
			ae := apperr.AlreadyAttempted(already.Attempt.TestID)
			ctx.JSON(ae.Status, dto.AlreadyAttemptedResponse{
				Code:    ae.Code,
				Message: ae.Message,
				Attempt: already.Attempt,
			})
			return
		}
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, session)
}

// SyncAnswer godoc
// @Summary Sync one answer selection
// @Description Upserts the student's current selection for a question. Fired on every option click; repeat calls with the same value are harmless. An empty selection records a skip.
// @Tags Exam
// @Accept json
// @Produce json
// @Param request body dto.SyncAnswerRequest true "Attempt, question and selected option"
// @Success 200 {object} dto.SyncAckDTO
// @Failure 400 {object} dto.ErrorResponse "Missing or malformed fields"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 409 {object} dto.ErrorResponse "Attempt already completed"
// @Router /exams/answers/sync [post]
func (c *ExamController) SyncAnswer(ctx *gin.Context) {
	var req dto.SyncAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("SyncAnswer: failed to bind request")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: apperr.CodeMissingFields, Message: "attempt_id and question_id are required", Details: []string{err.Error()}})
		return
	}

	ack, err := c.syncService.Sync(req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, ack)
}

// SubmitExam godoc
// @Summary Submit an exam attempt
// @Description Finalizes the attempt and computes the score. Idempotent: resubmitting a completed attempt returns the originally computed result without rescoring.
// @Tags Exam
// @Accept json
// @Produce json
// @Param request body dto.SubmitExamRequest true "Attempt identifier"
// @Success 200 {object} dto.ScoreSummaryDTO
// @Failure 400 {object} dto.ErrorResponse "Missing attempt_id"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Router /exams/submit [post]
func (c *ExamController) SubmitExam(ctx *gin.Context) {
	var req dto.SubmitExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("SubmitExam: failed to bind request")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: apperr.CodeMissingFields, Message: "attempt_id is required", Details: []string{err.Error()}})
		return
	}

	summary, err := c.attemptService.Submit(req.AttemptID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, summary)
}

// GetResult godoc
// @Summary Get the result of an attempt
// @Description Read-only projection of an attempt: score, percentage, timing and a per-question breakdown. Callable any number of times.
// @Tags Exam
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {object} dto.ResultDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid attempt ID format"
// @Failure 404 {object} dto.ErrorResponse "Result not found"
// @Router /exams/attempts/{attempt_id}/result [get]
func (c *ExamController) GetResult(ctx *gin.Context) {
	attemptIDStr := ctx.Param("attempt_id")
	attemptID, err := strconv.ParseUint(attemptIDStr, 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: apperr.CodeMissingFields, Message: "Invalid attempt ID format"})
		return
	}

	result, err := c.resultService.GetResult(uint(attemptID))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// respondError maps service errors onto user-safe JSON. Anything that is not
// a structured *apperr.Error comes back as an opaque storage failure.
func respondError(ctx *gin.Context, err error) {
	ae := apperr.From(err)
	if ae.Code == apperr.CodeStorageFailure {
		log.Error().Err(err).Str("path", ctx.FullPath()).Msg("Request failed with storage error")
	}
	ctx.JSON(ae.Status, dto.ErrorResponse{Code: ae.Code, Message: ae.Message})
}
