// Package handler exposes the conversation operator API over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"skm_agent_backend/internal/conversation/domain"
	"skm_agent_backend/internal/conversation/repository"
	"skm_agent_backend/internal/conversation/service"
	"skm_agent_backend/internal/conversation/transport"
	"skm_agent_backend/platform/httpkit"
	"skm_agent_backend/platform/validator"
)

const (
	errInvalidRequest        = "invalid request body"
	errValidation            = "validation error"
	errInvalidConversationID = "invalid conversation ID"
)

// Handler handles conversation operator requests.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// NewHandler creates a new conversation handler.
func NewHandler(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) conversationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidConversationID, nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidRequest, err.Error())
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errValidation, err.Error())
		return false
	}
	return true
}

// HandleList returns the dashboard rows.
// GET /api/v1/conversations
func (h *Handler) HandleList(c *gin.Context) {
	var query transport.ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(&query); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errValidation, err.Error())
		return
	}

	summaries, total, err := h.svc.ListConversations(c.Request.Context(), repository.ListConversationsParams{
		Status: domain.Status(query.Status),
		Mode:   domain.Mode(query.Mode),
		Limit:  query.Limit,
		Offset: query.Offset,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ListResponse{Conversations: summaries, Total: total})
}

// HandleGet returns one conversation with its messages and documents.
// GET /api/v1/conversations/:id
func (h *Handler) HandleGet(c *gin.Context) {
	id, ok := h.conversationID(c)
	if !ok {
		return
	}

	detail, err := h.svc.GetConversation(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromDetail(detail))
}

// HandleTakeover assigns the conversation to the calling operator.
// POST /api/v1/conversations/:id/takeover
func (h *Handler) HandleTakeover(c *gin.Context) {
	id, ok := h.conversationID(c)
	if !ok {
		return
	}

	var req transport.TakeoverRequest
	if c.Request.ContentLength > 0 && !h.bindAndValidate(c, &req) {
		return
	}
	agent := req.Agent
	if agent == "" {
		agent = c.GetString("operator")
	}

	conv, err := h.svc.Takeover(c.Request.Context(), id, agent)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromConversation(conv, nil, nil))
}

// HandleHandback returns the conversation to the bot.
// POST /api/v1/conversations/:id/handback
func (h *Handler) HandleHandback(c *gin.Context) {
	id, ok := h.conversationID(c)
	if !ok {
		return
	}

	conv, err := h.svc.Handback(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromConversation(conv, nil, nil))
}

// HandleSend delivers an operator message to the customer.
// POST /api/v1/conversations/:id/send
func (h *Handler) HandleSend(c *gin.Context) {
	id, ok := h.conversationID(c)
	if !ok {
		return
	}

	var req transport.SendMessageRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	err := h.svc.OperatorSend(c.Request.Context(), id, c.GetString("operator"), req.Text)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"status": "sent"})
}
