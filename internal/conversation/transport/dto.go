// Package transport holds request and response DTOs for the conversation
// operator API.
package transport

import (
	"time"

	"github.com/google/uuid"

	"skm_agent_backend/internal/conversation/domain"
	"skm_agent_backend/internal/conversation/repository"
	"skm_agent_backend/internal/conversation/service"
)

// SendMessageRequest is the body of an operator send.
type SendMessageRequest struct {
	Text string `json:"text" validate:"required,min=1,max=4096"`
}

// TakeoverRequest optionally names the operator taking the conversation.
type TakeoverRequest struct {
	Agent string `json:"agentName,omitempty" validate:"omitempty,max=100"`
}

// ListQuery carries the dashboard list filters.
type ListQuery struct {
	Status string `form:"status" validate:"omitempty,oneof=active human_takeover completed abandoned"`
	Mode   string `form:"mode" validate:"omitempty,oneof=bot human"`
	Limit  int    `form:"limit" validate:"omitempty,min=1,max=100"`
	Offset int    `form:"offset" validate:"omitempty,min=0"`
}

// ListResponse wraps the dashboard rows with the unfiltered total.
type ListResponse struct {
	Conversations []repository.ConversationSummary `json:"conversations"`
	Total         int                              `json:"total"`
}

// CustomerResponse is the customer identity shown on the detail view.
type CustomerResponse struct {
	ID        uuid.UUID `json:"id"`
	WaNumber  string    `json:"wa_number"`
	Name      *string   `json:"name,omitempty"`
	Email     *string   `json:"email,omitempty"`
	City      *string   `json:"city,omitempty"`
	FolderURL *string   `json:"folder_url,omitempty"`
}

// ConversationResponse is the operator detail view.
type ConversationResponse struct {
	ID             uuid.UUID             `json:"id"`
	CustomerID     uuid.UUID             `json:"customer_id"`
	Customer       *CustomerResponse     `json:"customer,omitempty"`
	ServiceType    domain.ServiceType    `json:"service_type,omitempty"`
	Status         domain.Status         `json:"status"`
	Mode           domain.Mode           `json:"mode"`
	Stage          domain.Stage          `json:"stage"`
	AssignedAgent  *string               `json:"assigned_agent,omitempty"`
	TakeoverReason *string               `json:"takeover_reason,omitempty"`
	CollectedData  domain.CollectedData  `json:"collected_data"`
	Messages       []repository.Message  `json:"messages"`
	Documents      []repository.Document `json:"documents"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// FromConversation builds the detail response.
func FromConversation(conv repository.Conversation, messages []repository.Message, documents []repository.Document) ConversationResponse {
	if messages == nil {
		messages = []repository.Message{}
	}
	if documents == nil {
		documents = []repository.Document{}
	}
	return ConversationResponse{
		ID:             conv.ID,
		CustomerID:     conv.CustomerID,
		ServiceType:    conv.ServiceType,
		Status:         conv.Status,
		Mode:           conv.Mode,
		Stage:          conv.Stage,
		AssignedAgent:  conv.AssignedAgent,
		TakeoverReason: conv.TakeoverReason,
		CollectedData:  conv.Data,
		Messages:       messages,
		Documents:      documents,
		CreatedAt:      conv.CreatedAt,
		UpdatedAt:      conv.UpdatedAt,
	}
}

// FromDetail builds the detail response including the customer identity.
func FromDetail(detail service.ConversationDetail) ConversationResponse {
	resp := FromConversation(detail.Conversation, detail.Messages, detail.Documents)
	resp.Customer = &CustomerResponse{
		ID:        detail.Customer.ID,
		WaNumber:  detail.Customer.WaNumber,
		Name:      detail.Customer.Name,
		Email:     detail.Customer.Email,
		City:      detail.Customer.City,
		FolderURL: detail.Customer.FolderURL,
	}
	return resp
}
