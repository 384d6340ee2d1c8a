package admin

import (
	"net/http"

	"github.com/examgate/examgate/internal/apperr"
	"github.com/examgate/examgate/internal/dto"
	"github.com/examgate/examgate/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type AdminController struct {
	adminTestService   service.AdminTestService
	entitlementService service.EntitlementService
}

func NewAdminController(adminTestService service.AdminTestService, entitlementService service.EntitlementService) *AdminController {
	return &AdminController{
		adminTestService:   adminTestService,
		entitlementService: entitlementService,
	}
}

// CreateTest godoc
// @Summary (Admin) Create a test with its questions
// @Description Creates a new test blueprint and all of its questions in one call. Question numbers must be unique within the test.
// @Tags Admin
// @Accept json
// @Produce json
// @Param test body dto.TestCreateDTO true "Test definition including questions"
// @Success 201 {object} dto.AdminTestDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 409 {object} dto.ErrorResponse "Test already exists"
// @Router /admin/tests [post]
func (c *AdminController) CreateTest(ctx *gin.Context) {
	var req dto.TestCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("CreateTest: failed to bind request")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: apperr.CodeMissingFields, Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	test, err := c.adminTestService.CreateTest(req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, test)
}

// ListTests godoc
// @Summary (Admin) List all tests
// @Description Lists every test with its question count.
// @Tags Admin
// @Produce json
// @Success 200 {array} dto.TestSummaryDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/tests [get]
func (c *AdminController) ListTests(ctx *gin.Context) {
	tests, err := c.adminTestService.ListTests()
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, tests)
}

// ListAttempts godoc
// @Summary (Admin) List attempts for a test
// @Description Read-only reporting view of all attempts against one test, newest first.
// @Tags Admin
// @Produce json
// @Param test_id path string true "Test identifier"
// @Success 200 {array} dto.AttemptSummaryDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/tests/{test_id}/attempts [get]
func (c *AdminController) ListAttempts(ctx *gin.Context) {
	attempts, err := c.adminTestService.ListAttempts(ctx.Param("test_id"))
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, attempts)
}

// GrantEntitlement godoc
// @Summary (Admin) Grant exam access to a student
// @Description Records that a student may take a test. Granting the same pair twice returns the original grant.
// @Tags Admin
// @Accept json
// @Produce json
// @Param entitlement body dto.EntitlementCreateDTO true "Student email, test identifier and optional roll number"
// @Success 201 {object} dto.EntitlementDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/entitlements [post]
func (c *AdminController) GrantEntitlement(ctx *gin.Context) {
	var req dto.EntitlementCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("GrantEntitlement: failed to bind request")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Code: apperr.CodeMissingFields, Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	entitlement, err := c.entitlementService.Grant(req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, entitlement)
}

func respondError(ctx *gin.Context, err error) {
	ae := apperr.From(err)
	if ae.Code == apperr.CodeStorageFailure {
		log.Error().Err(err).Str("path", ctx.FullPath()).Msg("Admin request failed with storage error")
	}
	ctx.JSON(ae.Status, dto.ErrorResponse{Code: ae.Code, Message: ae.Message})
}
