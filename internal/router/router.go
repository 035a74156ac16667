package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/stemsi/cyberassess-backend/internal/config"
	"github.com/stemsi/cyberassess-backend/internal/handler"
	"github.com/stemsi/cyberassess-backend/internal/middleware"
	"github.com/stemsi/cyberassess-backend/internal/model"
	"github.com/stemsi/cyberassess-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Submission   *handler.SubmissionHandler
	Assessment   *handler.AssessmentHandler
	Report       *handler.ReportHandler
	Auth         *handler.AuthHandler
	Notification *handler.NotificationHandler
	Health       *handler.HealthHandler
	// Feed is nil when Redis is not configured.
	Feed *handler.FeedHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	auth middleware.TokenValidator,
	handlers *Handlers,
	cfg *config.Config,
	gatherer prometheus.Gatherer,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// Restrict to AllowedOrigins when set; otherwise allow all for development.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Brotli())

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	// ─── Operations ────────────────────────────────────────────────────
	router.GET("/health", handlers.Health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)

	// ─── 1. Public Group (Rate Limited) ────────────────────────────────
	publicAPI := router.Group("/api/v1")
	publicAPI.Use(limiter.Middleware(), middleware.NoStore())
	{
		publicAPI.POST("/assessments", handlers.Submission.Submit)
		publicAPI.POST("/reports/pdf", handlers.Report.Preview)
		publicAPI.POST("/auth/admin/login", handlers.Auth.AdminLogin)
	}

	// ─── 2. Admin Group (JWT + RBAC) ───────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(auth), middleware.NoStore())
	{
		adminAPI.GET("/me", handlers.Auth.GetAdminProfile)

		assessments := adminAPI.Group("/assessments")
		{
			assessments.GET("", middleware.RequirePermission(model.PermissionAssessmentsRead), handlers.Assessment.List)
			assessments.GET("/:id", middleware.RequirePermission(model.PermissionAssessmentsRead), handlers.Assessment.Get)
			assessments.DELETE("/:id", middleware.RequirePermission(model.PermissionAssessmentsDelete), handlers.Assessment.Delete)
			assessments.GET("/:id/report", middleware.RequirePermission(model.PermissionReportsGenerate), handlers.Report.Stored)
		}

		adminAPI.POST("/notifications/test", middleware.RequirePermission(model.PermissionNotificationsTest), handlers.Notification.SendTest)

		if handlers.Feed != nil {
			adminAPI.GET("/feed", middleware.RequirePermission(model.PermissionAssessmentsRead), handlers.Feed.Stream)
		}
	}

	return router
}
