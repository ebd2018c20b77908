package webhook

import (
	apphttp "skm_agent_backend/internal/http"
	"skm_agent_backend/platform/logger"
)

// Module is the channel webhook module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the webhook module.
func NewModule(processor Processor, cfg VerifyConfig, log *logger.Logger) *Module {
	return &Module{handler: NewHandler(processor, cfg, log)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts the webhook endpoints on the engine root: Meta calls
// /webhook directly, outside the /api prefix.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Engine.GET("/webhook", m.handler.HandleVerify)
	ctx.Engine.POST("/webhook", m.handler.HandleInbound)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
