package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eventdesk/event-ticketing/internal/api/http/handlers"
	"github.com/eventdesk/event-ticketing/internal/auth"
	"github.com/eventdesk/event-ticketing/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Events         *handlers.EventsHandler
	AuthMiddleware *auth.Middleware
	Gatherer       prometheus.Gatherer
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Root)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	requireAuth := cfg.AuthMiddleware.Handle
	manageUsers := auth.RequireRole(domain.RoleEventOwner, domain.RoleSuperAdmin)

	users := app.Group("/api/users")
	users.Post("/register", cfg.Users.Register)
	users.Post("/login", cfg.Users.Login)
	users.Post("/refresh-token", cfg.Users.Refresh)
	users.Post("/recover-password", cfg.Users.RecoverPassword)
	users.Post("/update-password", cfg.Users.UpdatePassword)
	users.Patch("/approve/:userId", requireAuth, manageUsers, cfg.Users.Approve)
	users.Patch("/suspend/:userId", requireAuth, manageUsers, cfg.Users.Suspend)
	users.Get("/event-owners", requireAuth, cfg.Users.EventOwners)
	users.Get("/base-users", requireAuth, cfg.Users.BaseUsers)
	users.Post("/change-password", requireAuth, cfg.Users.ChangePassword)

	app.Post("/api/events", requireAuth, cfg.Events.Create)
}
