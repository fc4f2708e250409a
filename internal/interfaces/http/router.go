// Package http wires the capability middleware onto a Fiber app: the
// ambient stack (recovery, logging, CORS, Prometheus), the single RPC
// dispatch endpoint, and the admin control plane alongside it.
package http

import (
	"github.com/gofiber/fiber/v3"

	"github.com/opena2a/rpc-capabilities/internal/infrastructure/auth"
	"github.com/opena2a/rpc-capabilities/internal/infrastructure/metrics"
	"github.com/opena2a/rpc-capabilities/internal/interfaces/http/handlers"
	"github.com/opena2a/rpc-capabilities/internal/interfaces/http/middleware"
)

// Deps collects everything RegisterRoutes needs from main.
type Deps struct {
	RPC            *handlers.RPCHandlers
	Admin          *handlers.AdminHandlers
	JWT            *auth.JWTService
	AllowedOrigins []string
}

// RegisterRoutes mounts every route this module exposes on app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	app.Get("/metrics", metrics.PrometheusHandler())

	app.Use(middleware.Recovery())
	app.Use(middleware.Logger())
	app.Use(metrics.PrometheusMiddleware())
	app.Use(middleware.CORS(deps.AllowedOrigins))

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy", "service": "rpc-capabilities"})
	})

	rpc := app.Group("/")
	rpc.Use(middleware.DeriveOrigin(deps.JWT))
	rpc.Post("/rpc", deps.RPC.Dispatch)

	admin := app.Group("/admin")
	admin.Get("/domains", deps.Admin.ListDomains)
	admin.Get("/domains/:origin", deps.Admin.GetDomain)
	admin.Put("/domains/:origin", deps.Admin.SetDomain)
	admin.Delete("/domains/:origin", deps.Admin.RevokeDomain)
	admin.Delete("/domains", deps.Admin.ClearDomains)
	admin.Get("/descriptions", deps.Admin.Descriptions)
	admin.Get("/requests", deps.Admin.ListPendingRequests)
	admin.Post("/requests/:id/approve", deps.Admin.ApproveRequest)
	admin.Post("/requests/:id/reject", deps.Admin.RejectRequest)
}
