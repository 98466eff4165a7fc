package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spellbook-app/spellbook/internal/preview"
	"github.com/spellbook-app/spellbook/internal/validation"
)

// bodyOverhead is the room left for JSON framing around the code field.
const bodyOverhead = 4096

// RunRequest is the body of POST /api/run.
type RunRequest struct {
	Language string `json:"language" validate:"required,max=50"`
	Code     string `json:"code"`
}

// RunController exposes the snippet runner.
type RunController struct {
	runner    *preview.Runner
	validator *validation.Validator
	logger    *zap.Logger
}

// NewRunController creates a new run controller.
func NewRunController(runner *preview.Runner, v *validation.Validator, logger *zap.Logger) *RunController {
	return &RunController{runner: runner, validator: v, logger: logger}
}

// Run returns the output, preview document or client-execution marker for a
// snippet.
// POST /api/run
func (rc *RunController) Run(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(rc.runner.MaxCodeBytes()+bodyOverhead))

	var req RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(c, http.StatusRequestEntityTooLarge, "Code is too large")
			return
		}
		respondBadRequest(c, "Invalid request body")
		return
	}
	if err := rc.validator.Validate(&req); err != nil {
		respondDomainError(c, rc.logger, err, "Language", "Failed to run code")
		return
	}

	result, err := rc.runner.Run(c.Request.Context(), req.Language, req.Code)
	if errors.Is(err, preview.ErrCodeTooLarge) {
		respondError(c, http.StatusRequestEntityTooLarge, "Code is too large")
		return
	}
	if err != nil {
		respondInternalError(c, rc.logger, err, "Failed to run code")
		return
	}
	c.JSON(http.StatusOK, result)
}
