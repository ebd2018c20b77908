package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skm_agent_backend/platform/httpkit"
	"skm_agent_backend/platform/validator"
)

// LoginRequest is the body of an operator login.
type LoginRequest struct {
	Operator string `json:"operator" validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required"`
}

// Handler handles authentication requests.
type Handler struct {
	svc *Service
	val *validator.Validator
}

// NewHandler creates a new auth handler.
func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// HandleLogin verifies credentials and returns an access token.
// POST /api/v1/auth/login
func (h *Handler) HandleLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := h.val.Struct(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return
	}

	result, err := h.svc.Login(req.Operator, req.Password)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}
