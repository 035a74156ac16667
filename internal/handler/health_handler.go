package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports how the service is wired.
type HealthHandler struct {
	storage       string
	queue         string
	notifications bool
	startedAt     time.Time
}

func NewHealthHandler(storage, queue string, notifications bool) *HealthHandler {
	return &HealthHandler{storage: storage, queue: queue, notifications: notifications, startedAt: time.Now()}
}

// Health godoc
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"storage":       h.storage,
		"queue":         h.queue,
		"notifications": h.notifications,
		"uptime":        time.Since(h.startedAt).Round(time.Second).String(),
	})
}
