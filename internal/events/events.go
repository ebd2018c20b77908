// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"skm_agent_backend/platform/events"
	"skm_agent_backend/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// NewInMemoryBus creates a new in-memory event bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return events.NewInMemoryBus(log)
}

// =============================================================================
// Conversation Domain Events
// =============================================================================

// MessageReceived is published whenever a message is persisted on a
// conversation, inbound or outbound. The dashboard stream forwards it.
type MessageReceived struct {
	BaseEvent
	ConversationID uuid.UUID `json:"conversationId"`
	CustomerNumber string    `json:"customerNumber"`
	CustomerName   string    `json:"customerName,omitempty"`
	Direction      string    `json:"direction"`
	SenderType     string    `json:"senderType"`
	Content        string    `json:"content,omitempty"`
}

func (e MessageReceived) EventName() string { return "conversation.message.received" }

// ModeChanged is published when a conversation flips between bot and human
// handling, by operator takeover or handback.
type ModeChanged struct {
	BaseEvent
	ConversationID uuid.UUID `json:"conversationId"`
	Mode           string    `json:"mode"`
	Agent          string    `json:"agent,omitempty"`
}

func (e ModeChanged) EventName() string { return "conversation.mode.changed" }

// TakeoverNeeded is published when the generation collaborator signals a
// handoff and the conversation is escalated automatically. Consumers may use
// it to page a human.
type TakeoverNeeded struct {
	BaseEvent
	ConversationID uuid.UUID `json:"conversationId"`
	CustomerNumber string    `json:"customerNumber"`
	CustomerName   string    `json:"customerName,omitempty"`
	Reason         string    `json:"reason"`
}

func (e TakeoverNeeded) EventName() string { return "conversation.takeover.needed" }
