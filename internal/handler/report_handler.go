package handler

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/cyberassess-backend/internal/model"
	"github.com/stemsi/cyberassess-backend/internal/report"
	"github.com/stemsi/cyberassess-backend/internal/response"
	"github.com/stemsi/cyberassess-backend/internal/service"
)

var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// ReportHandler renders PDF reports.
type ReportHandler struct {
	submissions *service.SubmissionService
	assessments *service.AssessmentService
	log         zerolog.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(submissions *service.SubmissionService, assessments *service.AssessmentService, log zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		submissions: submissions,
		assessments: assessments,
		log:         log.With().Str("component", "report_handler").Logger(),
	}
}

// Preview godoc
// POST /api/v1/reports/pdf
// Scores the posted assessment and returns its PDF report. Nothing is stored.
func (h *ReportHandler) Preview(c *gin.Context) {
	var sub model.Submission
	if !decodeSubmission(c, &sub) {
		return
	}

	rec, err := h.submissions.Preview(sub)
	if err != nil {
		writeSubmitError(c, err)
		return
	}
	h.render(c, *rec)
}

// Stored godoc
// GET /api/v1/admin/assessments/:id/report
func (h *ReportHandler) Stored(c *gin.Context) {
	sub, err := h.assessments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failStore(c, err)
		return
	}
	h.render(c, *sub)
}

func (h *ReportHandler) render(c *gin.Context, sub model.Submission) {
	pdf, err := report.RenderPDF(report.Build(sub, time.Now().UTC()))
	if err != nil {
		h.log.Error().Err(err).Str("submission", sub.ID).Msg("render report")
		response.Fail(c, http.StatusInternalServerError, response.ErrReportFailed)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, reportFilename(sub)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func reportFilename(sub model.Submission) string {
	name := strings.Trim(unsafeFilename.ReplaceAllString(sub.Environment.UniqueName, "-"), "-")
	if name == "" {
		name = "assessment"
	}
	return "cybersecurity-assessment-" + strings.ToLower(name) + ".pdf"
}
