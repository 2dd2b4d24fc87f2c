package handler

import (
	"rental-payment-service/internal/adapter/http/middleware"
	redisStore "rental-payment-service/internal/adapter/storage/redis"
	"rental-payment-service/internal/core/ports"
	"rental-payment-service/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	PaymentSvc     ports.PaymentService
	TokenVerifier  ports.TokenVerifier
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.HTTPMetrics())
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes (all JWT-authenticated)
	jwtAuth := middleware.JWTAuth(deps.TokenVerifier, deps.Logger)
	paymentHandler := NewPaymentHandler(deps.PaymentSvc)

	payment := r.Group("/api/v1/payment", jwtAuth)
	{
		payment.POST("/topup", rl("payment_topup"), paymentHandler.TopUp)
		payment.POST("/pay", rl("payment_pay"), paymentHandler.Pay)
		payment.GET("/balance", rl("payment_read"), paymentHandler.GetBalance)
		payment.GET("/history", rl("payment_read"), paymentHandler.GetHistory)
	}

	return r
}
