// Package service orchestrates the conversation flow: inbound message intake,
// stage advancement, mode arbitration and reply dispatch.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"skm_agent_backend/internal/adapters/storage"
	"skm_agent_backend/internal/ai"
	"skm_agent_backend/internal/conversation/repository"
	"skm_agent_backend/internal/events"
	"skm_agent_backend/internal/whatsapp"
	"skm_agent_backend/platform/logger"
)

// historyLimit caps the model-facing transcript to keep prompts bounded.
const historyLimit = 30

// InboundMessage is one customer message as delivered by the channel webhook.
type InboundMessage struct {
	WaNumber         string
	ProfileName      string
	ChannelMessageID string
	Type             string
	Text             string
	MediaID          string
	Filename         string
}

// Service orchestrates conversations.
type Service struct {
	repo      repository.Repository
	generator ai.Generator
	sender    whatsapp.Sender
	media     whatsapp.MediaFetcher
	vault     storage.DocumentVault
	bus       events.Bus
	log       *logger.Logger
	locks     *conversationLocks
}

// New creates the conversation service.
func New(
	repo repository.Repository,
	generator ai.Generator,
	sender whatsapp.Sender,
	media whatsapp.MediaFetcher,
	vault storage.DocumentVault,
	bus events.Bus,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:      repo,
		generator: generator,
		sender:    sender,
		media:     media,
		vault:     vault,
		bus:       bus,
		log:       log,
		locks:     newConversationLocks(),
	}
}

// locateConversation finds the customer and their open conversation, starting
// a new one at the greeting stage if none is open.
func (s *Service) locateConversation(ctx context.Context, msg InboundMessage) (repository.Customer, repository.Conversation, error) {
	customer, err := s.repo.GetOrCreateCustomer(ctx, msg.WaNumber, msg.ProfileName)
	if err != nil {
		return repository.Customer{}, repository.Conversation{}, err
	}

	conv, err := s.repo.FindActiveConversation(ctx, customer.ID)
	if err == nil {
		return customer, conv, nil
	}
	conv, err = s.repo.CreateConversation(ctx, customer.ID)
	if err != nil {
		return repository.Customer{}, repository.Conversation{}, err
	}
	return customer, conv, nil
}

// appendHistory adds one turn and trims the transcript to the last
// historyLimit entries.
func appendHistory(history []repository.HistoryEntry, role, content string) []repository.HistoryEntry {
	history = append(history, repository.HistoryEntry{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	return history
}

func historyTurns(history []repository.HistoryEntry) []ai.Turn {
	turns := make([]ai.Turn, len(history))
	for i, entry := range history {
		turns[i] = ai.Turn{Role: entry.Role, Content: entry.Content}
	}
	return turns
}

func customerDisplayName(customer repository.Customer) string {
	if customer.Name != nil && *customer.Name != "" {
		return *customer.Name
	}
	return customer.WaNumber
}

func (s *Service) publishMessageReceived(ctx context.Context, conv repository.Conversation, customer repository.Customer, direction, senderType, content string) {
	s.bus.Publish(ctx, events.MessageReceived{
		BaseEvent:      events.NewBaseEvent(),
		ConversationID: conv.ID,
		CustomerNumber: customer.WaNumber,
		CustomerName:   customerDisplayName(customer),
		Direction:      direction,
		SenderType:     senderType,
		Content:        content,
	})
}

// GetConversation returns one conversation with its message and document
// trail for the operator detail view.
func (s *Service) GetConversation(ctx context.Context, id uuid.UUID) (ConversationDetail, error) {
	conv, err := s.repo.GetConversation(ctx, id)
	if err != nil {
		return ConversationDetail{}, err
	}
	messages, err := s.repo.ListMessages(ctx, id, 0)
	if err != nil {
		return ConversationDetail{}, err
	}
	documents, err := s.repo.ListDocuments(ctx, id)
	if err != nil {
		return ConversationDetail{}, err
	}
	customer, err := s.repo.GetCustomer(ctx, conv.CustomerID)
	if err != nil {
		return ConversationDetail{}, err
	}
	return ConversationDetail{
		Conversation: conv,
		Customer:     customer,
		Messages:     messages,
		Documents:    documents,
	}, nil
}

// ConversationDetail is the operator view of one conversation.
type ConversationDetail struct {
	Conversation repository.Conversation
	Customer     repository.Customer
	Messages     []repository.Message
	Documents    []repository.Document
}

// ListConversations returns dashboard rows.
func (s *Service) ListConversations(ctx context.Context, params repository.ListConversationsParams) ([]repository.ConversationSummary, int, error) {
	return s.repo.ListConversations(ctx, params)
}
