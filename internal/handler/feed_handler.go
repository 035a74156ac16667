package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/cyberassess-backend/internal/middleware"
	ws "github.com/stemsi/cyberassess-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// FeedHandler streams submission events to admin dashboards.
type FeedHandler struct {
	rdb      *redis.Client
	channel  string
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(rdb *redis.Client, channel string, log zerolog.Logger, allowedOrigins []string) *FeedHandler {
	return &FeedHandler{
		rdb:      rdb,
		channel:  channel,
		log:      log.With().Str("component", "feed_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// Stream godoc
// WS /api/v1/admin/feed?token=
// Forwards submission.created events published on the Redis feed channel.
func (h *FeedHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	log := h.log
	if claims := middleware.GetClaims(c); claims != nil {
		log = log.With().Str("admin_id", claims.AdminID).Logger()
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	pubsub := h.rdb.Subscribe(ctx, h.channel)
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		log.Error().Err(err).Msg("feed subscribe failed")
		_ = ws.WriteError(conn, "live feed unavailable")
		return
	}
	if err := ws.WriteTyped(conn, ws.ReadyResponse{Event: ws.EventReady, Channel: h.channel}); err != nil {
		return
	}
	log.Info().Msg("Admin attached to live feed")

	// gorilla allows one concurrent writer, so the reader only signals.
	pongs := make(chan struct{}, 1)
	ws.KeepAlive(conn)
	go func() {
		defer cancel()
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn().Err(err).Msg("Unexpected close")
				}
				return
			}
			if msg.Action == ws.ActionPing {
				select {
				case pongs <- struct{}{}:
				default:
				}
			}
		}
	}()

	ticker := time.NewTicker(ws.PingPeriod)
	defer ticker.Stop()
	events := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Admin detached from live feed")
			return

		case msg, ok := <-events:
			if !ok {
				return
			}
			if err := ws.WriteRaw(conn, []byte(msg.Payload)); err != nil {
				return
			}

		case <-pongs:
			if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
				return
			}

		case <-ticker.C:
			if err := ws.WritePing(conn); err != nil {
				return
			}
		}
	}
}
