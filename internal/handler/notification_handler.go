package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/cyberassess-backend/internal/mailer"
	"github.com/stemsi/cyberassess-backend/internal/model"
	"github.com/stemsi/cyberassess-backend/internal/notification"
	"github.com/stemsi/cyberassess-backend/internal/response"
	"github.com/stemsi/cyberassess-backend/internal/validator"
)

// MailSender is the outbound mail capability the test endpoint needs.
type MailSender interface {
	Enabled() bool
	Send(ctx context.Context, msg mailer.Message) error
}

// NotificationHandler lets admins verify the SMTP setup.
type NotificationHandler struct {
	mail    MailSender
	timeout time.Duration
	log     zerolog.Logger
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(mail MailSender, timeout time.Duration, log zerolog.Logger) *NotificationHandler {
	return &NotificationHandler{
		mail:    mail,
		timeout: timeout,
		log:     log.With().Str("component", "notification_handler").Logger(),
	}
}

// SendTest godoc
// POST /api/v1/admin/notifications/test
// Sends a test mail synchronously and reports the SMTP outcome.
func (h *NotificationHandler) SendTest(c *gin.Context) {
	var req model.TestNotificationRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if !h.mail.Enabled() {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrNotificationsDisabled)
		return
	}

	msg, err := notification.TestMessage(req.Email, time.Now().UTC())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()
	if err := h.mail.Send(ctx, msg); err != nil {
		h.log.Error().Err(err).Str("to", req.Email).Msg("test notification failed")
		response.FailWithMessage(c, http.StatusBadGateway, response.ErrNotificationFailed, err.Error())
		return
	}

	h.log.Info().Str("to", req.Email).Msg("test notification sent")
	response.Success(c, http.StatusOK, gin.H{"sent": true, "to": req.Email})
}
