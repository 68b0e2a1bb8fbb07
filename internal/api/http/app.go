package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/repair-service/internal/api/http/handlers"
	"github.com/spec-kit/repair-service/internal/auth"
	"github.com/spec-kit/repair-service/internal/config"
	"github.com/spec-kit/repair-service/internal/events"
	"github.com/spec-kit/repair-service/internal/observability"
	"github.com/spec-kit/repair-service/internal/repository"
	"github.com/spec-kit/repair-service/internal/service"
)

// AppDependencies is everything NewApp wires together. Limiter, Postgres and
// Redis may be nil.
type AppDependencies struct {
	Config      *config.Config
	Logger      *zap.Logger
	Metrics     *observability.Metrics
	Requests    repository.RequestRepository
	Users       repository.UserRepository
	Broadcaster *events.Broadcaster
	Notifier    service.Notifier
	Limiter     Limiter
	Postgres    handlers.Pinger
	Redis       handlers.Pinger
}

// NewApp assembles services, handlers and routes into a Fiber app.
func NewApp(deps AppDependencies) *fiber.App {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	requestService := service.NewRequestService(service.RequestDependencies{
		RequestRepo:     deps.Requests,
		Publisher:       deps.Broadcaster,
		Notifier:        deps.Notifier,
		CompletedStatus: cfg.Lifecycle.CompletedStatus,
		Logger:          logger,
	})
	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:    deps.Users,
		Credentials: auth.NewBcryptVerifier(cfg.Auth.BcryptCost),
	})

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	RegisterMiddlewares(app, logger, deps.Metrics, cfg.App.RequestTimeout())

	var rateLimit fiber.Handler
	if cfg.RateLimit.Enabled && deps.Limiter != nil {
		rateLimit = RateLimitMiddleware(deps.Limiter, logger)
	}

	RegisterRoutes(app, RouteConfig{
		Health:      handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps.Postgres, deps.Redis, deps.Metrics),
		Users:       handlers.NewUsersHandler(authService),
		Requests:    handlers.NewRequestsHandler(requestService),
		Admin:       handlers.NewAdminHandler(requestService, authService),
		Updates:     handlers.NewUpdatesHandler(deps.Broadcaster, logger),
		Resolver:    auth.NewHeaderScopeResolver(cfg.Auth),
		RateLimit:   rateLimit,
		CORSOrigins: cfg.App.CORSAllowOrigins,
	})
	return app
}
