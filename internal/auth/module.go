package auth

import (
	apphttp "skm_agent_backend/internal/http"
	"skm_agent_backend/platform/config"
	"skm_agent_backend/platform/logger"
	"skm_agent_backend/platform/validator"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the auth module.
func NewModule(cfg config.AuthConfig, val *validator.Validator, log *logger.Logger) *Module {
	return &Module{handler: NewHandler(New(cfg, log), val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// RegisterRoutes mounts the public login route.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.POST("/auth/login", m.handler.HandleLogin)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
