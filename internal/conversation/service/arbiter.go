package service

import (
	"context"

	"github.com/google/uuid"

	"skm_agent_backend/internal/conversation/domain"
	"skm_agent_backend/internal/conversation/repository"
	"skm_agent_backend/internal/events"
	"skm_agent_backend/platform/apperr"
)

// Takeover assigns a conversation to a human operator. While in human mode
// the bot never replies; inbound messages are stored and surfaced only.
func (s *Service) Takeover(ctx context.Context, conversationID uuid.UUID, agent string) (repository.Conversation, error) {
	unlock := s.locks.Lock(conversationID.String())
	defer unlock()

	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return repository.Conversation{}, err
	}
	if conv.Mode == domain.ModeHuman {
		return repository.Conversation{}, apperr.Conflict("conversation is already handled by a human")
	}
	if conv.Status.IsTerminal() {
		return repository.Conversation{}, apperr.Conflict("conversation is closed")
	}

	reason := domain.TakeoverReasonOperator
	conv, err = s.repo.SetConversationMode(ctx, repository.SetModeParams{
		ID:             conversationID,
		Mode:           domain.ModeHuman,
		Status:         domain.StatusHumanTakeover,
		AssignedAgent:  &agent,
		TakeoverReason: &reason,
	})
	if err != nil {
		return repository.Conversation{}, err
	}

	s.bus.Publish(ctx, events.ModeChanged{
		BaseEvent:      events.NewBaseEvent(),
		ConversationID: conversationID,
		Mode:           string(domain.ModeHuman),
		Agent:          agent,
	})
	return conv, nil
}

// Handback returns a conversation to the bot. The transcript kept during
// human mode gives the bot context to resume from.
func (s *Service) Handback(ctx context.Context, conversationID uuid.UUID) (repository.Conversation, error) {
	unlock := s.locks.Lock(conversationID.String())
	defer unlock()

	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return repository.Conversation{}, err
	}
	if conv.Mode == domain.ModeBot {
		return repository.Conversation{}, apperr.Conflict("conversation is already handled by the bot")
	}

	conv, err = s.repo.SetConversationMode(ctx, repository.SetModeParams{
		ID:     conversationID,
		Mode:   domain.ModeBot,
		Status: domain.StatusActive,
	})
	if err != nil {
		return repository.Conversation{}, err
	}

	s.bus.Publish(ctx, events.ModeChanged{
		BaseEvent:      events.NewBaseEvent(),
		ConversationID: conversationID,
		Mode:           string(domain.ModeBot),
	})
	return conv, nil
}

// OperatorSend delivers a human operator's message to the customer. Only
// allowed while the conversation is in human mode; the message joins the
// transcript attributed to the assistant so the bot resumes with full
// context after a handback.
func (s *Service) OperatorSend(ctx context.Context, conversationID uuid.UUID, agent, text string) error {
	unlock := s.locks.Lock(conversationID.String())
	defer unlock()

	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return err
	}
	if conv.Mode != domain.ModeHuman {
		return apperr.Conflict("take over the conversation before sending messages")
	}

	customer, err := s.repo.GetCustomer(ctx, conv.CustomerID)
	if err != nil {
		return err
	}

	if err := s.sender.SendText(ctx, customer.WaNumber, text); err != nil {
		return err
	}

	if _, _, err := s.repo.SaveMessage(ctx, repository.SaveMessageParams{
		ConversationID: conversationID,
		Direction:      "outbound",
		SenderType:     "agent",
		MessageType:    "text",
		Content:        text,
	}); err != nil {
		return err
	}

	history := appendHistory(conv.History, "assistant", text)
	if err := s.repo.UpdateConversationState(ctx, repository.UpdateStateParams{
		ID:          conversationID,
		Stage:       conv.Stage,
		ServiceType: conv.ServiceType,
		Status:      conv.Status,
		Data:        conv.Data,
		History:     history,
	}); err != nil {
		return err
	}

	s.publishMessageReceived(ctx, conv, customer, "outbound", "agent", text)
	return nil
}
