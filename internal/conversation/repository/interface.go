package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"skm_agent_backend/internal/conversation/domain"
)

// Customer is a WhatsApp customer keyed by their normalized number.
type Customer struct {
	ID        uuid.UUID
	WaNumber  string
	Name      *string
	Email     *string
	City      *string
	FolderKey *string
	FolderURL *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HistoryEntry is one turn of the model-facing conversation transcript.
type HistoryEntry struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is the persisted state of one guided flow.
type Conversation struct {
	ID             uuid.UUID
	CustomerID     uuid.UUID
	ServiceType    domain.ServiceType
	Status         domain.Status
	Mode           domain.Mode
	AssignedAgent  *string
	TakeoverReason *string
	Stage          domain.Stage
	Data           domain.CollectedData
	History        []HistoryEntry
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ConversationSummary is a row of the operator dashboard list: the
// conversation plus the customer identity and activity counters.
type ConversationSummary struct {
	ID             uuid.UUID          `json:"id"`
	CustomerNumber string             `json:"customer_number"`
	CustomerName   *string            `json:"customer_name"`
	ServiceType    domain.ServiceType `json:"service_type"`
	Status         domain.Status      `json:"status"`
	Mode           domain.Mode        `json:"mode"`
	Stage          domain.Stage       `json:"stage"`
	AssignedAgent  *string            `json:"assigned_agent"`
	TakeoverReason *string            `json:"takeover_reason"`
	LastMessage    *string            `json:"last_message"`
	LastMessageAt  *time.Time         `json:"last_message_at"`
	DocumentCount  int                `json:"document_count"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// Message is one stored inbound or outbound message.
type Message struct {
	ID               uuid.UUID  `json:"id"`
	ConversationID   uuid.UUID  `json:"conversation_id"`
	Direction        string     `json:"direction"`
	SenderType       string     `json:"sender_type"`
	MessageType      string     `json:"message_type"`
	Content          *string    `json:"content"`
	ChannelMessageID *string    `json:"channel_message_id,omitempty"`
	MediaID          *string    `json:"media_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Document is one stored customer upload.
type Document struct {
	ID               uuid.UUID `json:"id"`
	CustomerID       uuid.UUID `json:"customer_id"`
	ConversationID   uuid.UUID `json:"conversation_id"`
	DocumentType     string    `json:"document_type"`
	OriginalFilename *string   `json:"original_filename,omitempty"`
	StorageKey       *string   `json:"storage_key,omitempty"`
	StorageURL       *string   `json:"storage_url,omitempty"`
	ChannelMediaID   *string   `json:"channel_media_id,omitempty"`
	MimeType         *string   `json:"mime_type,omitempty"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

// SaveMessageParams contains data for storing a message.
type SaveMessageParams struct {
	ConversationID   uuid.UUID
	Direction        string
	SenderType       string
	MessageType      string
	Content          string
	ChannelMessageID string
	MediaID          string
}

// UpdateStateParams carries the post-turn conversation state.
type UpdateStateParams struct {
	ID          uuid.UUID
	Stage       domain.Stage
	ServiceType domain.ServiceType
	Status      domain.Status
	Data        domain.CollectedData
	History     []HistoryEntry
}

// SetModeParams flips a conversation between bot and human handling.
type SetModeParams struct {
	ID             uuid.UUID
	Mode           domain.Mode
	Status         domain.Status
	AssignedAgent  *string
	TakeoverReason *string
}

// ListConversationsParams defines filters for the dashboard list.
type ListConversationsParams struct {
	Status domain.Status
	Mode   domain.Mode
	Limit  int
	Offset int
}

// SaveDocumentParams contains data for recording an upload.
type SaveDocumentParams struct {
	CustomerID       uuid.UUID
	ConversationID   uuid.UUID
	DocumentType     string
	OriginalFilename string
	StorageKey       string
	StorageURL       string
	ChannelMediaID   string
	MimeType         string
}

// Repository defines conversation storage operations.
type Repository interface {
	GetOrCreateCustomer(ctx context.Context, waNumber, name string) (Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (Customer, error)
	UpdateCustomerProfile(ctx context.Context, id uuid.UUID, name, email, city string) error
	SetCustomerFolder(ctx context.Context, id uuid.UUID, key, url string) error

	FindActiveConversation(ctx context.Context, customerID uuid.UUID) (Conversation, error)
	CreateConversation(ctx context.Context, customerID uuid.UUID) (Conversation, error)
	GetConversation(ctx context.Context, id uuid.UUID) (Conversation, error)
	UpdateConversationState(ctx context.Context, params UpdateStateParams) error
	SetConversationMode(ctx context.Context, params SetModeParams) (Conversation, error)
	ListConversations(ctx context.Context, params ListConversationsParams) ([]ConversationSummary, int, error)
	MarkAbandoned(ctx context.Context, inactiveSince time.Time) ([]uuid.UUID, error)

	SaveMessage(ctx context.Context, params SaveMessageParams) (Message, bool, error)
	ListMessages(ctx context.Context, conversationID uuid.UUID, limit int) ([]Message, error)

	SaveDocument(ctx context.Context, params SaveDocumentParams) (Document, error)
	ListDocuments(ctx context.Context, conversationID uuid.UUID) ([]Document, error)
	ListDocumentTypes(ctx context.Context, conversationID uuid.UUID) ([]string, error)
}
