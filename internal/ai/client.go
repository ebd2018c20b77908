package ai

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"skm_agent_backend/internal/conversation/domain"
)

// GeminiClient implements Generator against the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
	cfg    Config
}

// NewGeminiClient creates the generation collaborator.
func NewGeminiClient(ctx context.Context, cfg Config) (*GeminiClient, error) {
	if !cfg.IsAIEnabled() {
		return nil, fmt.Errorf("Gemini is not configured")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GetGeminiAPIKey(),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  cfg.GetGeminiModel(),
		cfg:    cfg,
	}, nil
}

// Compile-time check that GeminiClient implements Generator.
var _ Generator = (*GeminiClient)(nil)

// GenerateReply produces the next customer-facing message.
func (g *GeminiClient) GenerateReply(ctx context.Context, in GenerateInput) (Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.GetGeminiTimeout())
	defer cancel()

	contents := make([]*genai.Content, 0, len(in.History)+1)
	for _, turn := range in.History {
		role := genai.Role(genai.RoleUser)
		if turn.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Content, role))
	}
	contents = append(contents, genai.NewContentFromText(in.UserText, genai.RoleUser))

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(buildSystemPrompt(in), genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.7),
		MaxOutputTokens:   600,
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return Reply{}, fmt.Errorf("generate reply: %w", err)
	}

	text, handoff := ParseHandoff(resp.Text())
	if text == "" {
		return Reply{}, fmt.Errorf("generate reply: empty response")
	}
	return Reply{Text: text, HandoffRequested: handoff}, nil
}

// ExtractData pulls structured fields out of the latest customer message.
// Extraction failures are soft: the caller gets an empty value and the turn
// continues without it.
func (g *GeminiClient) ExtractData(ctx context.Context, in ExtractInput) (domain.CollectedData, error) {
	if len(strings.TrimSpace(in.UserText)) < 2 {
		return domain.CollectedData{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.GetGeminiTimeout())
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromText(buildExtractionPrompt(in), genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		MaxOutputTokens:  300,
		ResponseMIMEType: "application/json",
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return domain.CollectedData{}, fmt.Errorf("extract data: %w", err)
	}
	return domain.DecodeExtraction([]byte(resp.Text())), nil
}
