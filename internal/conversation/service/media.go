package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"skm_agent_backend/internal/conversation/repository"
	"skm_agent_backend/internal/whatsapp"
)

// handleIncomingMedia downloads an attachment from the channel, stores it in
// the customer's folder and records the document row. The upload is assumed
// to be the document at the front of the pending list; on success that entry
// is popped from conv's in-memory data (persisted with the rest of the turn).
// Any failure leaves the pending list untouched and returns "" so the reply
// can ask the customer to resend.
func (s *Service) handleIncomingMedia(ctx context.Context, customer *repository.Customer, conv *repository.Conversation, msg InboundMessage) string {
	docType := conv.Data.NextPendingDocument()
	if docType == "" {
		docType = msg.Type + "_document"
	}

	if customer.FolderKey == nil || *customer.FolderKey == "" {
		name := customerDisplayName(*customer)
		folder, err := s.vault.EnsureCustomerFolder(ctx, name, customer.WaNumber)
		if err != nil {
			s.log.CollaboratorError("storage", "ensure_customer_folder", err)
			return ""
		}
		if err := s.repo.SetCustomerFolder(ctx, customer.ID, folder.Key, folder.URL); err != nil {
			s.log.DatabaseError("set customer folder", err)
			return ""
		}
		customer.FolderKey = &folder.Key
		customer.FolderURL = &folder.URL
	}

	media, err := s.media.DownloadMedia(ctx, msg.MediaID)
	if err != nil {
		s.log.CollaboratorError("whatsapp", "download_media", err)
		return ""
	}

	filename := msg.Filename
	if filename == "" {
		filename = fmt.Sprintf("%s_%d.%s", docType, time.Now().UnixMilli(), whatsapp.MimeToExtension(media.MimeType))
	}

	stored, err := s.vault.UploadDocument(ctx, *customer.FolderKey, filename, media.MimeType, bytes.NewReader(media.Data), int64(len(media.Data)))
	if err != nil {
		s.log.CollaboratorError("storage", "upload_document", err)
		return ""
	}

	if _, err := s.repo.SaveDocument(ctx, repository.SaveDocumentParams{
		CustomerID:       customer.ID,
		ConversationID:   conv.ID,
		DocumentType:     docType,
		OriginalFilename: filename,
		StorageKey:       stored.Key,
		StorageURL:       stored.URL,
		ChannelMediaID:   msg.MediaID,
		MimeType:         media.MimeType,
	}); err != nil {
		s.log.DatabaseError("save document", err)
		return ""
	}

	conv.Data.PopPendingDocument()

	s.log.Info("document stored",
		"conversation_id", conv.ID, "document_type", docType, "storage_key", stored.Key)
	return docType
}
