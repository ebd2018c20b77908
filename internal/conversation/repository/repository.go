package repository

import (
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"skm_agent_backend/internal/conversation/domain"
)

const conversationNotFoundMessage = "conversation not found"

// Repo implements the conversation repository on Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new conversation repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

func encodeData(data domain.CollectedData) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode collected data: %w", err)
	}
	return raw, nil
}

func encodeHistory(history []HistoryEntry) ([]byte, error) {
	if history == nil {
		history = []HistoryEntry{}
	}
	raw, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("encode history: %w", err)
	}
	return raw, nil
}

func decodeConversation(conv *Conversation, rawData, rawHistory []byte) error {
	if err := json.Unmarshal(rawData, &conv.Data); err != nil {
		return fmt.Errorf("decode collected data: %w", err)
	}
	if err := json.Unmarshal(rawHistory, &conv.History); err != nil {
		return fmt.Errorf("decode history: %w", err)
	}
	return nil
}
