package auth

import (
	"net/http"

	apphttp "lieux_backend/internal/http"
	"lieux_backend/platform/httpkit"
	"lieux_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

// Module exposes the admin login endpoint.
type Module struct {
	svc *Service
	val *validator.Validator
}

// NewModule creates the auth module.
func NewModule(svc *Service, val *validator.Validator) *Module {
	return &Module{svc: svc, val: val}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// RegisterRoutes mounts the login route with the stricter auth rate limiter.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/auth")
	if ctx.AuthRateLimiter != nil {
		group.Use(ctx.AuthRateLimiter.RateLimit())
	}
	group.POST("/login", m.login)
	group.GET("/me", ctx.AuthMiddleware, m.me)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=200"`
}

func (m *Module) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := m.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", nil)
		return
	}

	tokens, err := m.svc.Login(c.Request.Context(), req.Email, req.Password)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, tokens)
}

func (m *Module) me(c *gin.Context) {
	email := c.GetString(httpkit.ContextAdminEmailKey)
	httpkit.OK(c, gin.H{"email": email})
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
