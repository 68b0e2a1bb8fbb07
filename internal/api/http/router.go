package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/spec-kit/repair-service/internal/api/http/handlers"
	"github.com/spec-kit/repair-service/internal/auth"
)

// StreamPath is exempt from the request timeout.
const StreamPath = "/api/updates"

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health      *handlers.HealthHandler
	Users       *handlers.UsersHandler
	Requests    *handlers.RequestsHandler
	Admin       *handlers.AdminHandler
	Updates     *handlers.UpdatesHandler
	Resolver    auth.ScopeResolver
	RateLimit   fiber.Handler
	CORSOrigins string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	origins := cfg.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	api := app.Group("/api", cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, X-UID, X-Admin",
	}))

	account := []fiber.Handler{}
	if cfg.RateLimit != nil {
		account = append(account, cfg.RateLimit)
	}
	api.Post("/register", append(account, cfg.Users.Register)...)
	api.Post("/login", append(account, cfg.Users.Login)...)

	api.Get("/updates", cfg.Updates.Stream)

	owner := api.Group("/requests", auth.RequireOwner(cfg.Resolver))
	owner.Get("/", cfg.Requests.List)
	owner.Post("/", cfg.Requests.Create)
	owner.Get("/:id", cfg.Requests.Get)
	owner.Put("/:id", cfg.Requests.Update)
	owner.Delete("/:id", cfg.Requests.Delete)

	admin := api.Group("/admin", auth.RequireAdmin(cfg.Resolver))
	admin.Get("/requests", cfg.Admin.ListRequests)
	admin.Put("/requests/:id", cfg.Admin.UpdateRequest)
	admin.Delete("/requests/:id", cfg.Admin.DeleteRequest)
	admin.Get("/users", cfg.Admin.ListUsers)
}
