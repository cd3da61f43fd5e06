package push

import (
	"net/http"

	apphttp "lieux_backend/internal/http"
	"lieux_backend/platform/httpkit"
	"lieux_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module exposes device-token registration endpoints to the admin dashboard.
type Module struct {
	repo *Repository
	val  *validator.Validator
}

// NewModule creates the push module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	return &Module{repo: NewRepository(pool), val: val}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "push"
}

// Repository returns the token store for the intake pipeline.
func (m *Module) Repository() *Repository {
	return m.repo
}

// RegisterRoutes mounts device-token routes under /admin/devices.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	devices := ctx.Admin.Group("/devices")
	devices.POST("", m.registerDevice)
	devices.DELETE("/:token", m.deactivateDevice)
}

type registerDeviceRequest struct {
	Token    string `json:"token" validate:"required,min=10,max=512"`
	Platform string `json:"platform" validate:"required,oneof=ios android web"`
}

func (m *Module) registerDevice(c *gin.Context) {
	var req registerDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := m.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	dt, err := m.repo.Register(c.Request.Context(), req.Token, req.Platform)
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "failed to register device", nil)
		return
	}

	httpkit.JSON(c, http.StatusCreated, gin.H{"id": dt.ID, "active": dt.Active})
}

func (m *Module) deactivateDevice(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		httpkit.Error(c, http.StatusBadRequest, "missing token", nil)
		return
	}

	if err := m.repo.Deactivate(c.Request.Context(), token); err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "failed to deactivate device", nil)
		return
	}

	httpkit.OK(c, gin.H{"status": "deactivated"})
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
