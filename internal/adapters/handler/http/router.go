package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/aethernova/habits-api/docs"
	"github.com/aethernova/habits-api/internal/adapters/handler/http/middleware"
	"github.com/aethernova/habits-api/internal/adapters/metrics"
	"github.com/aethernova/habits-api/internal/config"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type RouterDependencies struct {
	AuthHandler       *AuthHandler
	HabitHandler      *HabitHandler
	CompletionHandler *CompletionHandler
	StatsHandler      *StatsHandler
	QuoteHandler      *QuoteHandler
	Tokens            middleware.TokenValidator
	Metrics           *metrics.Collector
	DB                Pinger
	Redis             *redis.Client
	Config            *config.Config
	Logger            *zap.Logger
	StartTime         time.Time
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if deps.Config != nil {
		corsConfig.AllowOrigins = []string{deps.Config.HTTP.FrontendURL}
	} else {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	router.Use(cors.New(corsConfig))

	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	router.GET("/health", healthHandler(deps))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "Route not found.")
	})

	api := router.Group("/api")

	var authLimit []gin.HandlerFunc
	if deps.Redis != nil && deps.Config != nil {
		rl := deps.Config.RateLimit
		api.Use(middleware.RateLimiter(deps.Redis,
			middleware.RateLimit{Scope: "api", Limit: rl.Limit, Window: rl.Window}, deps.Metrics, logger))
		authLimit = append(authLimit, middleware.RateLimiter(deps.Redis,
			middleware.RateLimit{Scope: "auth", Limit: rl.AuthLimit, Window: rl.Window}, deps.Metrics, logger))
	}

	public := api.Group("")
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Tokens))

	deps.AuthHandler.RegisterRoutes(public, protected, authLimit...)
	deps.QuoteHandler.RegisterRoutes(public, protected)
	deps.HabitHandler.RegisterRoutes(protected)
	deps.CompletionHandler.RegisterRoutes(protected)
	deps.StatsHandler.RegisterRoutes(protected)

	return router
}

func healthHandler(deps RouterDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "connected"
		if deps.DB == nil || deps.DB.PingContext(ctx) != nil {
			dbStatus = "unreachable"
		}

		// Redis is optional, so its absence does not fail the check.
		redisStatus := "disabled"
		if deps.Redis != nil {
			redisStatus = "connected"
			if deps.Redis.Ping(ctx).Err() != nil {
				redisStatus = "unreachable"
			}
		}

		statusCode := http.StatusOK
		status := "ok"
		if dbStatus == "unreachable" || redisStatus == "unreachable" {
			statusCode = http.StatusServiceUnavailable
			status = "degraded"
		}

		c.JSON(statusCode, gin.H{
			"status":   status,
			"database": dbStatus,
			"redis":    redisStatus,
			"uptime":   time.Since(deps.StartTime).String(),
		})
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}

		if len(c.Errors) > 0 {
			logger.Error("Request failed", append(fields, zap.String("errors", c.Errors.String()))...)
			return
		}
		logger.Debug("Request served", fields...)
	}
}
