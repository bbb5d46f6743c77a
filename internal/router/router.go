package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/2202030400009/maggic-mock-sub000/internal/config"
	"github.com/2202030400009/maggic-mock-sub000/internal/handler"
	"github.com/2202030400009/maggic-mock-sub000/internal/middleware"
	"github.com/2202030400009/maggic-mock-sub000/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	TestSession *handler.TestSessionHandler
	Result      *handler.ResultHandler
	WS          *handler.WSHandler
	System      *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// startLimiter throttles session starts; nil disables it.
func SetupRouter(
	auth middleware.TokenValidator,
	handlers *Handlers,
	startLimiter *middleware.RateLimiter,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// Restrict to AllowedOrigins when set; otherwise allow all for dev.
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

	router.Use(response.RequestIDMiddleware(log))
	router.Use(accessLog())

	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Test API (User JWT) ────────────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireUserJWT(auth))
	{
		tests := api.Group("/tests")
		{
			tests.GET("/formats", handlers.TestSession.ListFormats)

			start := []gin.HandlerFunc{handlers.TestSession.StartSession}
			if startLimiter != nil {
				start = append([]gin.HandlerFunc{startLimiter.Middleware()}, start...)
			}
			tests.POST("/sessions", start...)

			tests.GET("/sessions/active", handlers.TestSession.ActiveSession)
			tests.GET("/sessions/:id", handlers.TestSession.GetSession)
			tests.POST("/sessions/:id/select", handlers.TestSession.SelectOption)
			tests.POST("/sessions/:id/numeric", handlers.TestSession.SetNumericInput)
			tests.POST("/sessions/:id/review", handlers.TestSession.SetReviewFlag)
			tests.POST("/sessions/:id/next", handlers.TestSession.Next)
			tests.POST("/sessions/:id/skip", handlers.TestSession.Skip)
			tests.POST("/sessions/:id/jump", handlers.TestSession.JumpTo)
			tests.POST("/sessions/:id/submit", handlers.TestSession.Submit)
			tests.DELETE("/sessions/:id", handlers.TestSession.AbandonSession)
		}

		// Result payloads carry every answer line; compress them.
		results := api.Group("/results")
		results.Use(middleware.Brotli(5, middleware.DefaultMinCompressLength))
		{
			results.GET("", handlers.Result.ListResults)
			results.GET("/:id", handlers.Result.GetResult)
		}

		api.GET("/stats/subjects", handlers.Result.SubjectStats)

		system := api.Group("/system")
		{
			system.GET("/status", handlers.System.Status)
			system.GET("/status/stream", handlers.System.StatusStream)
		}
	}

	// ─── 2. WebSocket (token in query) ─────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(auth))
	{
		ws.GET("/tests/sessions/:id/stream", handlers.WS.StreamSession)
	}

	return router
}

// accessLog logs one line per request on the request-scoped logger.
func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := response.Logger(c).Info()
		if status >= http.StatusInternalServerError {
			event = response.Logger(c).Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("Request handled")
	}
}
