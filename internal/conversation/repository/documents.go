package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// SaveDocument records a stored customer upload.
func (r *Repo) SaveDocument(ctx context.Context, params SaveDocumentParams) (Document, error) {
	query := `
		INSERT INTO documents (customer_id, conversation_id, document_type,
			original_filename, storage_key, storage_url, channel_media_id, mime_type)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''))
		RETURNING id, customer_id, conversation_id, document_type,
			original_filename, storage_key, storage_url, channel_media_id, mime_type, uploaded_at`

	var d Document
	if err := r.pool.QueryRow(ctx, query,
		params.CustomerID, params.ConversationID, params.DocumentType,
		params.OriginalFilename, params.StorageKey, params.StorageURL,
		params.ChannelMediaID, params.MimeType,
	).Scan(
		&d.ID, &d.CustomerID, &d.ConversationID, &d.DocumentType,
		&d.OriginalFilename, &d.StorageKey, &d.StorageURL,
		&d.ChannelMediaID, &d.MimeType, &d.UploadedAt,
	); err != nil {
		return Document{}, fmt.Errorf("save document: %w", err)
	}
	return d, nil
}

// ListDocuments returns a conversation's uploads in upload order.
func (r *Repo) ListDocuments(ctx context.Context, conversationID uuid.UUID) ([]Document, error) {
	query := `
		SELECT id, customer_id, conversation_id, document_type,
			original_filename, storage_key, storage_url, channel_media_id, mime_type, uploaded_at
		FROM documents
		WHERE conversation_id = $1
		ORDER BY uploaded_at ASC`

	rows, err := r.pool.Query(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	documents := []Document{}
	for rows.Next() {
		var d Document
		if err := rows.Scan(
			&d.ID, &d.CustomerID, &d.ConversationID, &d.DocumentType,
			&d.OriginalFilename, &d.StorageKey, &d.StorageURL,
			&d.ChannelMediaID, &d.MimeType, &d.UploadedAt,
		); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		documents = append(documents, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return documents, nil
}

// ListDocumentTypes returns the document type tags uploaded so far, in upload
// order, for completion checks.
func (r *Repo) ListDocumentTypes(ctx context.Context, conversationID uuid.UUID) ([]string, error) {
	query := `
		SELECT document_type
		FROM documents
		WHERE conversation_id = $1
		ORDER BY uploaded_at ASC`

	rows, err := r.pool.Query(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list document types: %w", err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan document type: %w", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list document types: %w", err)
	}
	return types, nil
}
