package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/cyberassess-backend/internal/model"
	"github.com/stemsi/cyberassess-backend/internal/repository"
	"github.com/stemsi/cyberassess-backend/internal/response"
	"github.com/stemsi/cyberassess-backend/internal/service"
)

// SubmissionHandler accepts assessments from respondents.
type SubmissionHandler struct {
	submissions *service.SubmissionService
	log         zerolog.Logger
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(submissions *service.SubmissionService, log zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissions: submissions,
		log:         log.With().Str("component", "submission_handler").Logger(),
	}
}

// Submit godoc
// POST /api/v1/assessments
// Records a completed assessment. 201 when stored, 200 when it was already recorded.
func (h *SubmissionHandler) Submit(c *gin.Context) {
	var sub model.Submission
	if !decodeSubmission(c, &sub) {
		return
	}
	if sub.Metadata.UserAgent == "" {
		sub.Metadata.UserAgent = c.Request.UserAgent()
	}

	res, err := h.submissions.Submit(c.Request.Context(), sub)
	if err != nil {
		writeSubmitError(c, err)
		return
	}

	status := http.StatusCreated
	if res.Status == model.SubmitAlreadyExists {
		status = http.StatusOK
	}
	response.Success(c, status, res)
}

func writeSubmitError(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, ve.Fields)
	case repository.IsTransient(err), errors.Is(err, context.DeadlineExceeded):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrSubmissionFailed)
	default:
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrSubmissionFailed)
	}
}
