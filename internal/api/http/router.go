package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/inventory-service/internal/api/http/handlers"
	"github.com/spec-kit/inventory-service/internal/auth"
	"github.com/spec-kit/inventory-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Every /api/users route except register and
// login sits behind the authentication gate.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	users := app.Group("/api/users")
	// Open registration accepts role ADMIN; an absent role defaults to USER.
	users.Post("/", cfg.Users.Register)
	users.Post("/login", cfg.Users.Login)

	gate := cfg.AuthMiddleware.Handle
	adminOnly := auth.RequireRole(domain.RoleAdmin)
	users.Get("/me", gate, cfg.Users.Me)
	users.Post("/me/password", gate, cfg.Users.ChangePassword)
	users.Get("/", gate, adminOnly, cfg.Users.List)
	users.Get("/:id", gate, cfg.Users.Get)
	users.Patch("/:id", gate, cfg.Users.Update)
	users.Delete("/:id", gate, adminOnly, cfg.Users.Delete)
}
