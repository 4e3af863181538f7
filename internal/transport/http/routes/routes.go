package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/burakzaferozcan/Vaultify/internal/infra/config"
	"github.com/burakzaferozcan/Vaultify/internal/transport/http/handlers"
	"github.com/burakzaferozcan/Vaultify/internal/transport/http/middleware"
	"github.com/burakzaferozcan/Vaultify/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth          *usecase.AuthService
	Credentials   *usecase.CredentialService
	Cards         *usecase.CardService
	Activities    *usecase.ActivityService
	Notifications *usecase.NotificationService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Metrics     *middleware.HTTPMetrics
	Services    ServiceSet
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config != nil && deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if deps.Config != nil {
		r.Use(middleware.CORS(deps.Config.CORS.AllowedOrigins))
	}
	r.Use(deps.Metrics.Handler())

	authMiddleware := middleware.RequireAuth(deps.Services.Auth)

	checks := map[string]handlers.ReadinessCheck{}
	if deps.Database != nil {
		checks["database"] = deps.Database.Ping
	}
	if deps.Cache != nil {
		checks["redis"] = deps.Cache.HealthCheck
	}

	healthHandler := handlers.NewHealthHandler(checks)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")

		authHandler := handlers.NewAuthHandler(deps.Services.Auth)
		authHandler.RegisterRoutes(authGroup,
			rateLimitFor(deps, "auth_register_ip", deps.Config.RateLimit.RegisterMaxAttempts),
			rateLimitFor(deps, "auth_login_ip", deps.Config.RateLimit.LoginMaxAttempts),
		)

		accountGroup := api.Group("/account")
		accountGroup.Use(authMiddleware)
		authHandler.RegisterAccountRoutes(accountGroup)

		passwordGroup := api.Group("/passwords")
		passwordGroup.Use(authMiddleware)
		handlers.NewPasswordHandler(deps.Services.Credentials).RegisterRoutes(passwordGroup)

		cardGroup := api.Group("/cards")
		cardGroup.Use(authMiddleware)
		handlers.NewCardHandler(deps.Services.Cards).RegisterRoutes(cardGroup)

		activityGroup := api.Group("/activities")
		activityGroup.Use(authMiddleware)
		handlers.NewActivityHandler(deps.Services.Activities).RegisterRoutes(activityGroup)

		notificationGroup := api.Group("/notifications")
		notificationGroup.Use(authMiddleware)
		handlers.NewNotificationHandler(deps.Services.Notifications).RegisterRoutes(notificationGroup)
	}

	return r
}

func rateLimitFor(deps Dependencies, name string, limit int) gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil || limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       name,
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return deps.RateLimiter.RateLimit(rule)
}
