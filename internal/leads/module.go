// Package leads wires the contact-form intake pipeline and admin lead
// management into the HTTP server.
package leads

import (
	apphttp "lieux_backend/internal/http"
	"lieux_backend/internal/leads/handler"
	"lieux_backend/internal/leads/service"
	"lieux_backend/platform/logger"
)

// Module bundles the leads handlers for route registration.
type Module struct {
	public *handler.PublicHandler
	admin  *handler.AdminHandler
}

// NewModule creates the leads module.
func NewModule(svc *service.Service, enqueuer handler.ResyncEnqueuer, log *logger.Logger) *Module {
	return &Module{
		public: handler.NewPublicHandler(svc, log),
		admin:  handler.NewAdminHandler(svc, enqueuer),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// RegisterRoutes mounts the public contact endpoint and the admin lead API.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.POST("/contact/submit", m.public.Submit)

	admin := ctx.Admin.Group("/leads")
	admin.GET("", m.admin.List)
	admin.GET("/:id", m.admin.Get)
	admin.PATCH("/:id/status", m.admin.UpdateStatus)
	admin.DELETE("/:id", m.admin.Delete)
	admin.POST("/:id/resync", m.admin.Resync)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
