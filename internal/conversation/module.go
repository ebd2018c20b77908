// Package conversation provides the conversation bounded context module.
package conversation

import (
	"skm_agent_backend/internal/conversation/handler"
	"skm_agent_backend/internal/conversation/service"
	apphttp "skm_agent_backend/internal/http"
	"skm_agent_backend/platform/validator"
)

// Module is the conversation bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the conversation module.
func NewModule(svc *service.Service, val *validator.Validator) *Module {
	return &Module{handler: handler.NewHandler(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "conversation"
}

// RegisterRoutes mounts the operator API behind authentication.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/conversations")
	group.GET("", m.handler.HandleList)
	group.GET("/:id", m.handler.HandleGet)
	group.POST("/:id/takeover", m.handler.HandleTakeover)
	group.POST("/:id/handback", m.handler.HandleHandback)
	group.POST("/:id/send", m.handler.HandleSend)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
