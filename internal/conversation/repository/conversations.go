package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"skm_agent_backend/internal/conversation/domain"
	"skm_agent_backend/platform/apperr"
)

const conversationColumns = `id, customer_id, service_type, status, mode,
	assigned_agent, takeover_reason, stage, collected_data, history,
	created_at, updated_at`

func scanConversation(row pgx.Row) (Conversation, error) {
	var (
		conv       Conversation
		svc        *string
		rawData    []byte
		rawHistory []byte
	)
	if err := row.Scan(
		&conv.ID, &conv.CustomerID, &svc, &conv.Status, &conv.Mode,
		&conv.AssignedAgent, &conv.TakeoverReason, &conv.Stage,
		&rawData, &rawHistory, &conv.CreatedAt, &conv.UpdatedAt,
	); err != nil {
		return Conversation{}, err
	}
	if svc != nil {
		conv.ServiceType = domain.ServiceType(*svc)
	}
	if err := decodeConversation(&conv, rawData, rawHistory); err != nil {
		return Conversation{}, err
	}
	return conv, nil
}

// findActiveConversationQuery picks the authoritative conversation when a
// customer somehow has several open ones: the most recently created wins,
// regardless of which was touched last.
const findActiveConversationQuery = `
	SELECT ` + conversationColumns + `
	FROM conversations
	WHERE customer_id = $1 AND status IN ('active', 'human_takeover')
	ORDER BY created_at DESC
	LIMIT 1`

// FindActiveConversation returns the customer's newest non-terminal
// conversation.
func (r *Repo) FindActiveConversation(ctx context.Context, customerID uuid.UUID) (Conversation, error) {
	conv, err := scanConversation(r.pool.QueryRow(ctx, findActiveConversationQuery, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Conversation{}, apperr.NotFound(conversationNotFoundMessage)
		}
		return Conversation{}, fmt.Errorf("find active conversation: %w", err)
	}
	return conv, nil
}

// CreateConversation starts a fresh conversation at the greeting stage.
func (r *Repo) CreateConversation(ctx context.Context, customerID uuid.UUID) (Conversation, error) {
	query := `
		INSERT INTO conversations (customer_id)
		VALUES ($1)
		RETURNING ` + conversationColumns

	conv, err := scanConversation(r.pool.QueryRow(ctx, query, customerID))
	if err != nil {
		return Conversation{}, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

// GetConversation retrieves a conversation by ID.
func (r *Repo) GetConversation(ctx context.Context, id uuid.UUID) (Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations
		WHERE id = $1`

	conv, err := scanConversation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Conversation{}, apperr.NotFound(conversationNotFoundMessage)
		}
		return Conversation{}, fmt.Errorf("get conversation: %w", err)
	}
	return conv, nil
}

// UpdateConversationState persists the post-turn stage, collected data and
// transcript in one statement.
func (r *Repo) UpdateConversationState(ctx context.Context, params UpdateStateParams) error {
	rawData, err := encodeData(params.Data)
	if err != nil {
		return err
	}
	rawHistory, err := encodeHistory(params.History)
	if err != nil {
		return err
	}

	query := `
		UPDATE conversations
		SET stage = $2,
			service_type = COALESCE(NULLIF($3, ''), service_type),
			status = $4,
			collected_data = $5,
			history = $6,
			updated_at = now()
		WHERE id = $1`

	result, err := r.pool.Exec(ctx, query,
		params.ID, string(params.Stage), string(params.ServiceType),
		string(params.Status), rawData, rawHistory,
	)
	if err != nil {
		return fmt.Errorf("update conversation state: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(conversationNotFoundMessage)
	}
	return nil
}

// SetConversationMode flips bot/human handling and returns the updated row.
func (r *Repo) SetConversationMode(ctx context.Context, params SetModeParams) (Conversation, error) {
	query := `
		UPDATE conversations
		SET mode = $2,
			status = $3,
			assigned_agent = $4,
			takeover_reason = $5,
			updated_at = now()
		WHERE id = $1
		RETURNING ` + conversationColumns

	conv, err := scanConversation(r.pool.QueryRow(ctx, query,
		params.ID, string(params.Mode), string(params.Status),
		params.AssignedAgent, params.TakeoverReason,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Conversation{}, apperr.NotFound(conversationNotFoundMessage)
		}
		return Conversation{}, fmt.Errorf("set conversation mode: %w", err)
	}
	return conv, nil
}

// ListConversations returns dashboard rows enriched with the customer
// identity, the latest message preview and the upload count.
func (r *Repo) ListConversations(ctx context.Context, params ListConversationsParams) ([]ConversationSummary, int, error) {
	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	if params.Status != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("c.status = $%d", argPos))
		args = append(args, string(params.Status))
		argPos++
	}
	if params.Mode != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("c.mode = $%d", argPos))
		args = append(args, string(params.Mode))
		argPos++
	}
	where := strings.Join(whereClauses, " AND ")

	countQuery := `SELECT COUNT(*) FROM conversations c WHERE ` + where
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count conversations: %w", err)
	}

	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := fmt.Sprintf(`
		SELECT c.id, cu.wa_number, cu.name, COALESCE(c.service_type, ''),
			c.status, c.mode, c.stage, c.assigned_agent, c.takeover_reason,
			lm.content, lm.created_at,
			(SELECT COUNT(*) FROM documents d WHERE d.conversation_id = c.id),
			c.updated_at
		FROM conversations c
		JOIN customers cu ON cu.id = c.customer_id
		LEFT JOIN LATERAL (
			SELECT m.content, m.created_at
			FROM messages m
			WHERE m.conversation_id = c.id
			ORDER BY m.created_at DESC
			LIMIT 1
		) lm ON true
		WHERE %s
		ORDER BY c.updated_at DESC
		LIMIT $%d OFFSET $%d`, where, argPos, argPos+1)
	args = append(args, limit, params.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	summaries := []ConversationSummary{}
	for rows.Next() {
		var (
			s   ConversationSummary
			svc string
		)
		if err := rows.Scan(
			&s.ID, &s.CustomerNumber, &s.CustomerName, &svc,
			&s.Status, &s.Mode, &s.Stage, &s.AssignedAgent, &s.TakeoverReason,
			&s.LastMessage, &s.LastMessageAt, &s.DocumentCount, &s.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan conversation summary: %w", err)
		}
		s.ServiceType = domain.ServiceType(svc)
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list conversations: %w", err)
	}
	return summaries, total, nil
}

// MarkAbandoned closes active bot-mode conversations with no activity since
// the cutoff and returns their IDs.
func (r *Repo) MarkAbandoned(ctx context.Context, inactiveSince time.Time) ([]uuid.UUID, error) {
	query := `
		UPDATE conversations
		SET status = 'abandoned', updated_at = now()
		WHERE status = 'active' AND mode = 'bot' AND updated_at < $1
		RETURNING id`

	rows, err := r.pool.Query(ctx, query, inactiveSince)
	if err != nil {
		return nil, fmt.Errorf("mark abandoned: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan abandoned id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mark abandoned: %w", err)
	}
	return ids, nil
}
