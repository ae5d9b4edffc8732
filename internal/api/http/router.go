package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/markvl91/helpdesk-service/internal/api/http/handlers"
	"github.com/markvl91/helpdesk-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	ServiceDesk    *handlers.ServiceDeskHandler
	Requests       *handlers.RequestsHandler
	Employees      *handlers.EmployeesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, auth.RequireEmployee(), cfg.Auth.ChangePassword)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireEmployee())
	tickets.Post("", cfg.Tickets.Create)
	tickets.Get("", cfg.Tickets.ListOwn)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Delete("/:id", cfg.Tickets.Delete)

	desk := app.Group("/service-desk", cfg.AuthMiddleware.Handle, auth.RequireServiceDesk())
	desk.Get("/tickets", cfg.ServiceDesk.ListAll)
	desk.Put("/tickets/:id", cfg.ServiceDesk.Edit)
	desk.Post("/tickets/:id/logs", cfg.ServiceDesk.ApplyLog)
	desk.Put("/tickets/:id/logs/:logId", cfg.ServiceDesk.EditLog)
	desk.Delete("/tickets/:id/logs/:logId", cfg.ServiceDesk.DeleteLog)
	desk.Post("/tickets/:id/close", cfg.ServiceDesk.Close)
	desk.Post("/tickets/:id/escalate", cfg.ServiceDesk.Escalate)
	desk.Put("/tickets/:id/archive", cfg.ServiceDesk.SetArchived)
	desk.Get("/tickets/:id/requests", cfg.Requests.ListByTicket)

	requests := app.Group("/requests", cfg.AuthMiddleware.Handle, auth.RequireServiceDesk())
	requests.Post("", cfg.Requests.Create)
	requests.Get("/received", cfg.Requests.ListReceived)
	requests.Get("/sent", cfg.Requests.ListSent)
	requests.Get("/:id", cfg.Requests.Get)
	requests.Post("/:id/accept", cfg.Requests.Accept)
	requests.Post("/:id/reject", cfg.Requests.Reject)
	requests.Post("/:id/fail", cfg.Requests.Fail)
	requests.Delete("/:id", cfg.Requests.Delete)
	requests.Put("/:id/archive", cfg.Requests.SetArchived)

	employees := app.Group("/employees", cfg.AuthMiddleware.Handle, auth.RequireEmployee())
	employees.Get("/me", cfg.Employees.Me)

	admin := employees.Group("", auth.RequireServiceDesk())
	admin.Post("", cfg.Employees.Create)
	admin.Get("", cfg.Employees.List)
	admin.Get("/:id", cfg.Employees.Get)
	admin.Put("/:id", cfg.Employees.Update)
	admin.Put("/:id/status", cfg.Employees.SetStatus)
	admin.Get("/:id/managed", cfg.Employees.ListManaged)
	admin.Delete("/:id", cfg.Employees.Delete)
}
