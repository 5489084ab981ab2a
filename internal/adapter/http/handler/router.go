package handler

import (
	"gaugyan-payout-service/internal/adapter/http/middleware"
	redisStore "gaugyan-payout-service/internal/adapter/storage/redis"
	"gaugyan-payout-service/internal/core/domain"
	"gaugyan-payout-service/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	PayoutSvc      ports.PayoutService
	WalletSvc      ports.WalletService
	ReportingSvc   ports.ReportingService
	TokenSvc       ports.TokenService
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
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep, verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

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

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	payoutHandler := NewPayoutHandler(deps.PayoutSvc, deps.ReportingSvc)
	walletHandler := NewWalletHandler(deps.WalletSvc, deps.ReportingSvc)
	dashboardHandler := NewDashboardHandler(deps.ReportingSvc)

	payouts := v1.Group("/payouts", jwtAuth)
	{
		payouts.POST("",
			middleware.RequireCapability(domain.CapPayoutInitiate),
			rl("payouts_initiate"), payoutHandler.Initiate)
		payouts.POST("/:id/approve",
			middleware.RequireCapability(domain.CapPayoutApprove),
			rl("payouts_decide"), payoutHandler.Approve)
		payouts.POST("/:id/reject",
			middleware.RequireCapability(domain.CapPayoutReject),
			rl("payouts_decide"), payoutHandler.Reject)
		payouts.POST("/:id/execute",
			middleware.RequireCapability(domain.CapPayoutExecute),
			rl("payouts_execute"), payoutHandler.Execute)
		payouts.GET("/:id",
			middleware.RequireCapability(domain.CapPayoutRead),
			rl("dashboard"), payoutHandler.Get)
		payouts.GET("",
			middleware.RequireCapability(domain.CapPayoutRead),
			rl("dashboard"), payoutHandler.List)
	}

	wallets := v1.Group("/wallets", jwtAuth)
	{
		wallets.GET("/balance",
			middleware.RequireCapability(domain.CapWalletRead),
			rl("dashboard"), walletHandler.GetBalance)
		wallets.POST("/credit",
			middleware.RequireCapability(domain.CapWalletCredit),
			rl("wallets_credit"), walletHandler.Credit)
	}

	dashboard := v1.Group("/dashboard", jwtAuth)
	{
		dashboard.GET("/stats",
			middleware.RequireCapability(domain.CapDashboardView),
			rl("dashboard"), dashboardHandler.GetStats)
	}

	return r
}
