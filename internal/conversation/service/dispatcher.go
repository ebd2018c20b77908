package service

import (
	"context"
	"fmt"

	"skm_agent_backend/internal/ai"
	"skm_agent_backend/internal/conversation/domain"
	"skm_agent_backend/internal/conversation/repository"
	"skm_agent_backend/internal/events"
	"skm_agent_backend/platform/phone"
)

// ProcessInbound runs one conversational turn for an inbound message. Turns
// for the same conversation are serialized; a replayed delivery (same channel
// message ID) is dropped after the dedup check.
func (s *Service) ProcessInbound(ctx context.Context, msg InboundMessage) error {
	// Channel payloads carry bare digits but operators paste numbers with a
	// plus; normalizing keeps one customer row per number.
	msg.WaNumber = phone.NormalizeWhatsApp(msg.WaNumber)

	// The customer-level lock prevents two concurrent first messages from
	// opening two conversations for the same number.
	unlockCustomer := s.locks.Lock("customer:" + msg.WaNumber)
	customer, conv, err := s.locateConversation(ctx, msg)
	unlockCustomer()
	if err != nil {
		return fmt.Errorf("locate conversation: %w", err)
	}

	unlock := s.locks.Lock(conv.ID.String())
	defer unlock()

	// Re-read inside the lock: a concurrent turn may have advanced the
	// stage or flipped the mode since the lookup.
	conv, err = s.repo.GetConversation(ctx, conv.ID)
	if err != nil {
		return err
	}

	_, inserted, err := s.repo.SaveMessage(ctx, repository.SaveMessageParams{
		ConversationID:   conv.ID,
		Direction:        "inbound",
		SenderType:       "customer",
		MessageType:      msg.Type,
		Content:          msg.Text,
		ChannelMessageID: msg.ChannelMessageID,
		MediaID:          msg.MediaID,
	})
	if err != nil {
		return err
	}
	if !inserted {
		s.log.Info("duplicate message skipped",
			"channel_message_id", msg.ChannelMessageID, "conversation_id", conv.ID)
		return nil
	}

	displayContent := msg.Text
	if displayContent == "" && msg.MediaID != "" {
		displayContent = "[media]"
	}
	s.publishMessageReceived(ctx, conv, customer, "inbound", "customer", displayContent)

	// A human operator owns the conversation: store and surface the message,
	// never reply automatically.
	if conv.Mode == domain.ModeHuman {
		return nil
	}

	docType := ""
	if msg.MediaID != "" && (msg.Type == "image" || msg.Type == "document") {
		docType = s.handleIncomingMedia(ctx, &customer, &conv, msg)
	}

	agentInput := msg.Text
	if docType != "" {
		agentInput = fmt.Sprintf("[Customer sent a document: %s]", docType)
		if msg.Text != "" {
			agentInput += " " + msg.Text
		}
	}

	extracted, err := s.generator.ExtractData(ctx, ai.ExtractInput{
		Stage:       conv.Stage,
		ServiceType: conv.ServiceType,
		Data:        conv.Data,
		UserText:    agentInput,
	})
	if err != nil {
		s.log.CollaboratorError("gemini", "extract_data", err)
		extracted = domain.CollectedData{}
	}

	reply, err := s.generator.GenerateReply(ctx, ai.GenerateInput{
		CustomerNumber: customer.WaNumber,
		CustomerName:   customerDisplayName(customer),
		Stage:          conv.Stage,
		ServiceType:    conv.ServiceType,
		Data:           conv.Data,
		History:        historyTurns(conv.History),
		UserText:       agentInput,
	})
	if err != nil {
		// Generation failed: apologize and leave the conversation state
		// untouched so the customer can retry the same turn.
		s.log.CollaboratorError("gemini", "generate_reply", err)
		s.deliverReply(ctx, customer, conv, ai.ApologyReply)
		return nil
	}

	uploaded, err := s.repo.ListDocumentTypes(ctx, conv.ID)
	if err != nil {
		return err
	}

	result := domain.Advance(domain.TransitionInput{
		Stage:        conv.Stage,
		ServiceType:  conv.ServiceType,
		Data:         conv.Data,
		Extracted:    extracted,
		UserText:     agentInput,
		UploadedDocs: uploaded,
	})

	if result.FolderNameKnown {
		s.provisionFolder(ctx, &customer, result.Data)
	}
	if result.Data.FullName != "" {
		if err := s.repo.UpdateCustomerProfile(ctx, customer.ID,
			result.Data.FullName, result.Data.Email, result.Data.City); err != nil {
			s.log.DatabaseError("update customer profile", err)
		}
	}

	status := conv.Status
	if result.Completed {
		status = domain.StatusCompleted
	}

	history := appendHistory(conv.History, "user", agentInput)
	history = appendHistory(history, "assistant", reply.Text)

	if err := s.repo.UpdateConversationState(ctx, repository.UpdateStateParams{
		ID:          conv.ID,
		Stage:       result.Stage,
		ServiceType: result.ServiceType,
		Status:      status,
		Data:        result.Data,
		History:     history,
	}); err != nil {
		return err
	}

	if reply.HandoffRequested {
		s.escalate(ctx, customer, conv, domain.TakeoverReasonCustomerRequested)
	}

	s.deliverReply(ctx, customer, conv, reply.Text)
	return nil
}

// deliverReply sends a bot reply over the channel and records it. Delivery
// failures are logged; the turn's state is already persisted.
func (s *Service) deliverReply(ctx context.Context, customer repository.Customer, conv repository.Conversation, text string) {
	if err := s.sender.SendText(ctx, customer.WaNumber, text); err != nil {
		s.log.CollaboratorError("whatsapp", "send_text", err)
		return
	}

	if _, _, err := s.repo.SaveMessage(ctx, repository.SaveMessageParams{
		ConversationID: conv.ID,
		Direction:      "outbound",
		SenderType:     "bot",
		MessageType:    "text",
		Content:        text,
	}); err != nil {
		s.log.DatabaseError("save outbound message", err)
		return
	}
	s.publishMessageReceived(ctx, conv, customer, "outbound", "bot", text)
}

// escalate flips the conversation to human mode and alerts the dashboard.
func (s *Service) escalate(ctx context.Context, customer repository.Customer, conv repository.Conversation, reason string) {
	status := domain.StatusHumanTakeover
	if _, err := s.repo.SetConversationMode(ctx, repository.SetModeParams{
		ID:             conv.ID,
		Mode:           domain.ModeHuman,
		Status:         status,
		TakeoverReason: &reason,
	}); err != nil {
		s.log.DatabaseError("escalate conversation", err)
		return
	}

	s.bus.Publish(ctx, events.TakeoverNeeded{
		BaseEvent:      events.NewBaseEvent(),
		ConversationID: conv.ID,
		CustomerNumber: customer.WaNumber,
		CustomerName:   customerDisplayName(customer),
		Reason:         reason,
	})
	s.bus.Publish(ctx, events.ModeChanged{
		BaseEvent:      events.NewBaseEvent(),
		ConversationID: conv.ID,
		Mode:           string(domain.ModeHuman),
	})
}

// provisionFolder creates the customer's document folder exactly once,
// guarded by the stored folder reference.
func (s *Service) provisionFolder(ctx context.Context, customer *repository.Customer, data domain.CollectedData) {
	if customer.FolderKey != nil && *customer.FolderKey != "" {
		return
	}

	folder, err := s.vault.EnsureCustomerFolder(ctx, data.FullName, customer.WaNumber)
	if err != nil {
		s.log.CollaboratorError("storage", "ensure_customer_folder", err)
		return
	}
	if err := s.repo.SetCustomerFolder(ctx, customer.ID, folder.Key, folder.URL); err != nil {
		s.log.DatabaseError("set customer folder", err)
		return
	}
	customer.FolderKey = &folder.Key
	customer.FolderURL = &folder.URL
}
