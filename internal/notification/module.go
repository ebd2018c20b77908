// Package notification forwards domain events to connected dashboard
// sessions. It subscribes to the event bus and inverts the dependency:
// the conversation module never needs to know the dashboard exists.
package notification

import (
	"context"

	"skm_agent_backend/internal/events"
	apphttp "skm_agent_backend/internal/http"
	"skm_agent_backend/internal/notification/sse"
	"skm_agent_backend/platform/logger"
)

// Module bridges conversation events onto the SSE stream.
type Module struct {
	sse *sse.Service
	log *logger.Logger
}

// New creates a new notification module.
func New(log *logger.Logger) *Module {
	return &Module{
		sse: sse.New(log),
		log: log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "notification" }

// SSE exposes the stream service for shutdown handling.
func (m *Module) SSE() *sse.Service { return m.sse }

// RegisterRoutes mounts the event stream behind authentication.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/events", m.sse.Handler())
}

// RegisterHandlers subscribes to all relevant domain events on the event bus.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.MessageReceived{}.EventName(), m)
	bus.Subscribe(events.ModeChanged{}.EventName(), m)
	bus.Subscribe(events.TakeoverNeeded{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the stream.
func (m *Module) Handle(_ context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.MessageReceived:
		m.sse.Broadcast(sse.Event{Type: sse.EventNewMessage, Data: e})
	case events.ModeChanged:
		m.sse.Broadcast(sse.Event{Type: sse.EventModeChanged, Data: e})
	case events.TakeoverNeeded:
		m.sse.Broadcast(sse.Event{Type: sse.EventTakeoverNeeded, Data: e})
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
	}
	return nil
}

var _ apphttp.Module = (*Module)(nil)
var _ events.Handler = (*Module)(nil)
