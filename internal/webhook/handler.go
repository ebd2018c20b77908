package webhook

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"skm_agent_backend/internal/conversation/service"
	"skm_agent_backend/platform/logger"
)

// Processor consumes inbound messages after the webhook has been acked.
type Processor interface {
	ProcessInbound(ctx context.Context, msg service.InboundMessage) error
}

// VerifyConfig exposes the webhook verify token.
type VerifyConfig interface {
	GetWhatsAppVerifyToken() string
}

// Handler handles WhatsApp webhook HTTP requests.
type Handler struct {
	processor Processor
	cfg       VerifyConfig
	log       *logger.Logger
}

// NewHandler creates a new webhook handler.
func NewHandler(processor Processor, cfg VerifyConfig, log *logger.Logger) *Handler {
	return &Handler{processor: processor, cfg: cfg, log: log}
}

// HandleVerify answers Meta's subscription handshake.
// GET /webhook
func (h *Handler) HandleVerify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token != "" && token == h.cfg.GetWhatsAppVerifyToken() {
		c.String(http.StatusOK, challenge)
		return
	}
	c.Status(http.StatusForbidden)
}

// HandleInbound accepts a message delivery. Meta requires a fast 200, so the
// batch is acked immediately and each message is processed on its own
// goroutine; processing errors are logged, never surfaced to Meta.
// POST /webhook
func (h *Handler) HandleInbound(c *gin.Context) {
	var payload Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		// Malformed deliveries still get a 200: returning an error would
		// only make Meta retry the same broken payload.
		h.log.Warn("webhook payload rejected", "error", err.Error())
		c.Status(http.StatusOK)
		return
	}
	c.Status(http.StatusOK)

	if payload.Object != "whatsapp_business_account" {
		return
	}

	// Detach from the request: the response is already written and the
	// connection may close before processing finishes.
	ctx := context.WithoutCancel(c.Request.Context())

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			value := change.Value
			for i := range value.Messages {
				msg := value.Messages[i]
				inbound := service.InboundMessage{
					WaNumber:         msg.From,
					ProfileName:      value.senderName(msg.From),
					ChannelMessageID: msg.ID,
					Type:             msg.Type,
					Text:             msg.TextContent(),
					MediaID:          msg.MediaID(),
					Filename:         msg.Filename(),
				}
				go func() {
					if err := h.processor.ProcessInbound(ctx, inbound); err != nil {
						h.log.Error("inbound message processing failed",
							"wa_number", inbound.WaNumber,
							"channel_message_id", inbound.ChannelMessageID,
							"error", err.Error(),
						)
					}
				}()
			}
		}
	}
}
