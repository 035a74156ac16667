package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/cyberassess-backend/internal/model"
	"github.com/stemsi/cyberassess-backend/internal/repository"
	"github.com/stemsi/cyberassess-backend/internal/response"
	"github.com/stemsi/cyberassess-backend/internal/service"
)

// AssessmentHandler serves the admin assessment views.
type AssessmentHandler struct {
	assessments *service.AssessmentService
	log         zerolog.Logger
}

// NewAssessmentHandler creates a new AssessmentHandler.
func NewAssessmentHandler(assessments *service.AssessmentService, log zerolog.Logger) *AssessmentHandler {
	return &AssessmentHandler{
		assessments: assessments,
		log:         log.With().Str("component", "assessment_handler").Logger(),
	}
}

// List godoc
// GET /api/v1/admin/assessments?limit=&skip=&email=&environment_name=&date_from=&date_to=
// Lists assessments newest first with score statistics over the same filter.
func (h *AssessmentHandler) List(c *gin.Context) {
	q, fields := parseListQuery(c)
	if fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidQuery, fields)
		return
	}

	res, err := h.assessments.List(c.Request.Context(), q)
	if err != nil {
		h.log.Error().Err(err).Msg("list assessments")
		failStore(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{
		"items":      res.Items,
		"statistics": res.Statistics,
	}, &response.Pagination{
		Total:   res.Total,
		Limit:   res.Limit,
		Skip:    res.Skip,
		HasMore: res.HasMore(),
	})
}

// Get godoc
// GET /api/v1/admin/assessments/:id
func (h *AssessmentHandler) Get(c *gin.Context) {
	sub, err := h.assessments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failStore(c, err)
		return
	}
	response.Success(c, http.StatusOK, sub)
}

// Delete godoc
// DELETE /api/v1/admin/assessments/:id
// Permanently removes an assessment. 404 when nothing matched.
func (h *AssessmentHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	deleted, err := h.assessments.Delete(c.Request.Context(), id)
	if err != nil {
		failStore(c, err)
		return
	}
	if !deleted {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id, "deleted": true})
}

// failStore maps repository errors to HTTP responses.
func failStore(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrInvalidID):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
	case errors.Is(err, repository.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case repository.IsTransient(err):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrStorageUnavailable)
	default:
		_ = c.Error(err)
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

func parseListQuery(c *gin.Context) (model.ListAssessmentsQuery, map[string]string) {
	var q model.ListAssessmentsQuery
	fields := make(map[string]string)

	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			fields["limit"] = "limit must be an integer"
		}
		q.Limit = n
	}
	if v := c.Query("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			fields["skip"] = "skip must be a non-negative integer"
		}
		q.Skip = n
	}
	q.Email = c.Query("email")
	q.EnvironmentName = c.Query("environment_name")

	if v := c.Query("date_from"); v != "" {
		t, _, err := parseDate(v)
		if err != nil {
			fields["date_from"] = "date_from must be RFC3339 or YYYY-MM-DD"
		}
		q.DateFrom = &t
	}
	if v := c.Query("date_to"); v != "" {
		t, dayOnly, err := parseDate(v)
		if err != nil {
			fields["date_to"] = "date_to must be RFC3339 or YYYY-MM-DD"
		}
		if dayOnly {
			// A bare date includes the whole day.
			t = t.Add(24*time.Hour - time.Millisecond)
		}
		q.DateTo = &t
	}

	if len(fields) > 0 {
		return q, fields
	}
	return q, nil
}

func parseDate(v string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), false, nil
	}
	t, err := time.Parse(time.DateOnly, v)
	return t, true, err
}
