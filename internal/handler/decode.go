package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stemsi/cyberassess-backend/internal/response"
)

const maxSubmissionBytes = 2 << 20

// decodeSubmission reads a JSON body without running binding validation.
// The submission service normalizes fields before validating them.
func decodeSubmission(c *gin.Context, dst any) bool {
	body := http.MaxBytesReader(c.Writer, c.Request.Body, maxSubmissionBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.FailWithFields(c, http.StatusRequestEntityTooLarge, response.ErrInvalidPayload,
				map[string]string{"detail": "request body too large"})
			return false
		}
		response.FailWithFields(c, http.StatusBadRequest, response.ErrInvalidPayload,
			map[string]string{"detail": err.Error()})
		return false
	}
	return true
}
