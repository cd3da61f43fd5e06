// Package venues wires the venue catalog into the HTTP server.
package venues

import (
	apphttp "lieux_backend/internal/http"
	"lieux_backend/internal/venues/handler"
	"lieux_backend/internal/venues/service"
)

// Module bundles the venues handler for route registration.
type Module struct {
	handler *handler.Handler
}

// NewModule creates the venues module.
func NewModule(svc *service.Service) *Module {
	return &Module{handler: handler.New(svc)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "venues"
}

// RegisterRoutes mounts the public catalog and the admin venue API.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/venues", m.handler.ListPublished)
	ctx.V1.GET("/venues/:slug", m.handler.GetBySlug)

	admin := ctx.Admin.Group("/venues")
	admin.GET("", m.handler.ListAll)
	admin.POST("", m.handler.Create)
	admin.GET("/:id", m.handler.Get)
	admin.PATCH("/:id", m.handler.Update)
	admin.DELETE("/:id", m.handler.Delete)
	admin.POST("/:id/images/upload-url", m.handler.RequestImageUpload)
	admin.POST("/:id/images", m.handler.ConfirmImage)
	admin.DELETE("/:id/images/:imageId", m.handler.DeleteImage)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
