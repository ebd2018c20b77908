// Package ai generates customer-facing replies and extracts structured data
// from inbound messages using Gemini.
package ai

import (
	"context"
	"strings"
	"time"

	"skm_agent_backend/internal/conversation/domain"
)

// HandoffMarker is the literal the model appends when the customer asked for
// a human. It is stripped before the reply goes out.
const HandoffMarker = "[HANDOFF_REQUESTED]"

// ApologyReply is sent when generation fails; the conversation state is left
// untouched so the customer can simply try again.
const ApologyReply = "I apologize, I am having a technical issue. Please try again in a moment."

// Turn is one entry of the model-facing transcript.
type Turn struct {
	Role    string
	Content string
}

// GenerateInput carries the conversation context for one reply.
type GenerateInput struct {
	CustomerNumber string
	CustomerName   string
	Stage          domain.Stage
	ServiceType    domain.ServiceType
	Data           domain.CollectedData
	History        []Turn
	UserText       string
}

// Reply is a generated response with the handoff marker already stripped.
type Reply struct {
	Text             string
	HandoffRequested bool
}

// ExtractInput carries the context for structured data extraction.
type ExtractInput struct {
	Stage       domain.Stage
	ServiceType domain.ServiceType
	Data        domain.CollectedData
	UserText    string
}

// Generator defines the reply-generation collaborator.
type Generator interface {
	GenerateReply(ctx context.Context, in GenerateInput) (Reply, error)
	ExtractData(ctx context.Context, in ExtractInput) (domain.CollectedData, error)
}

// Config defines the configuration interface for the generator.
type Config interface {
	GetGeminiAPIKey() string
	GetGeminiModel() string
	GetGeminiTimeout() time.Duration
	IsAIEnabled() bool
}

// ParseHandoff strips the handoff marker from a raw model reply and reports
// whether it was present.
func ParseHandoff(raw string) (string, bool) {
	if !strings.Contains(raw, HandoffMarker) {
		return strings.TrimSpace(raw), false
	}
	clean := strings.ReplaceAll(raw, HandoffMarker, "")
	return strings.TrimSpace(clean), true
}
