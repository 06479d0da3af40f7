package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/smartquizzer/quizzer-backend/internal/config"
	"github.com/smartquizzer/quizzer-backend/internal/handler"
	"github.com/smartquizzer/quizzer-backend/internal/metrics"
	"github.com/smartquizzer/quizzer-backend/internal/middleware"
	"github.com/smartquizzer/quizzer-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Content   *handler.ContentHandler
	Quiz      *handler.QuizHandler
	Analytics *handler.AnalyticsHandler
	User      *handler.UserHandler
	WS        *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// ctx bounds background goroutines owned by middlewares.
func SetupRouter(
	ctx context.Context,
	auth middleware.TokenValidator,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Request ID first so the logger and every envelope can see it.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Brotli("/metrics"))

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", metrics.Handler())

	authLimiter := middleware.NewRateLimiter(ctx, cfg.AuthRateLimitPerMinute, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	authAPI := router.Group("/api/v1/auth")
	{
		authAPI.POST("/register", authLimiter.Middleware(), handlers.Auth.Register)
		authAPI.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)
		authAPI.GET("/me", middleware.RequireUserJWT(auth), handlers.Auth.Me)
	}

	// ─── 2. User Group (JWT) ───────────────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireUserJWT(auth))
	{
		api.POST("/content", handlers.Content.CreateText)
		api.GET("/content", handlers.Content.List)
		api.GET("/content/:id", handlers.Content.Get)
		api.DELETE("/content/:id", handlers.Content.Delete)

		api.POST("/quiz/generate", handlers.Quiz.Generate)
		api.GET("/quiz/history", handlers.Quiz.History)
		api.GET("/quiz/:id", handlers.Quiz.Get)
		api.POST("/quiz/:id/submit-answer", handlers.Quiz.SubmitAnswer)
		api.POST("/quiz/:id/complete", handlers.Quiz.Complete)
		api.POST("/quiz/:id/abandon", handlers.Quiz.Abandon)

		api.GET("/analytics/overview", handlers.Analytics.Overview)

		api.DELETE("/users/me", handlers.User.DeleteMe)
	}

	// ─── 3. WebSocket Group (Query Token Auth) ─────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(auth))
	{
		ws.GET("/quiz/:id/stream", handlers.WS.QuizStream)
	}

	return router
}
