package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ST1000-S/iTechies/internal/api/http/handlers"
	"github.com/ST1000-S/iTechies/internal/auth"
	"github.com/ST1000-S/iTechies/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health    *handlers.HealthHandler
	Auth      *handlers.AuthHandler
	Dashboard *handlers.DashboardHandler
	Requests  *handlers.RequestsHandler
	Providers *handlers.ProvidersHandler
	Sessions  *auth.SessionMiddleware
	Gates     *auth.Gatekeeper
}

// RegisterRoutes wires HTTP routes. The session middleware runs on every
// route; the gates decide access per route.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.Sessions.Handle)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/register", cfg.Auth.Register)
	app.Post("/login", cfg.Auth.Login)
	app.Get("/logout", cfg.Auth.Logout)

	app.Get("/dashboard", cfg.Gates.RequireAuthenticated(), cfg.Dashboard.Show)
	app.Get("/providers", cfg.Gates.RequireAuthenticated(), cfg.Providers.List)
	app.Post("/providers/:id/reviews", cfg.Gates.RequireRole(domain.RoleCustomer), cfg.Providers.AddReview)

	requests := app.Group("/service-requests")
	requests.Post("/", cfg.Gates.RequireRole(domain.RoleCustomer), cfg.Requests.Create)
	requests.Post("/:id/accept", cfg.Gates.RequireRole(domain.RoleProvider), cfg.Requests.Accept)
	requests.Put("/:id/accept", cfg.Gates.RequireRole(domain.RoleProvider), cfg.Requests.Accept)
}
