// Package whatsapp provides a client for the WhatsApp Cloud API: outbound
// text messages and two-step media download.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"
)

const graphBaseURL = "https://graph.facebook.com"

// maxChunkLen is the outbound chunk size. The Cloud API caps text bodies at
// 4096 characters; 4000 leaves headroom.
const maxChunkLen = 4000

// Config defines the configuration interface for the client.
type Config interface {
	GetWhatsAppAPIVersion() string
	GetWhatsAppPhoneNumberID() string
	GetWhatsAppAccessToken() string
	GetWhatsAppVerifyToken() string
	IsWhatsAppEnabled() bool
}

// Sender defines the outbound surface the conversation flow depends on.
type Sender interface {
	SendText(ctx context.Context, to, text string) error
}

// MediaFetcher defines the inbound media surface.
type MediaFetcher interface {
	DownloadMedia(ctx context.Context, mediaID string) (Media, error)
}

// Media is a downloaded inbound attachment.
type Media struct {
	Data     []byte
	MimeType string
}

// Client is an HTTP client for the WhatsApp Cloud API.
type Client struct {
	apiVersion    string
	phoneNumberID string
	accessToken   string
	httpClient    *http.Client
}

// NewClient creates a new WhatsApp Cloud API client.
func NewClient(cfg Config) (*Client, error) {
	if !cfg.IsWhatsAppEnabled() {
		return nil, fmt.Errorf("WhatsApp is not configured")
	}

	return &Client{
		apiVersion:    cfg.GetWhatsAppAPIVersion(),
		phoneNumberID: cfg.GetWhatsAppPhoneNumberID(),
		accessToken:   cfg.GetWhatsAppAccessToken(),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Compile-time checks.
var (
	_ Sender       = (*Client)(nil)
	_ MediaFetcher = (*Client)(nil)
)

type textPayload struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	Body       string `json:"body"`
	PreviewURL bool   `json:"preview_url"`
}

// SendText delivers a text message, splitting long bodies into sequential
// chunks. Chunks are sent in order; a failed chunk aborts the rest.
func (c *Client) SendText(ctx context.Context, to, text string) error {
	for _, chunk := range chunkText(text, maxChunkLen) {
		payload := textPayload{
			MessagingProduct: "whatsapp",
			To:               to,
			Type:             "text",
			Text:             textBody{Body: chunk, PreviewURL: false},
		}
		if err := c.postMessage(ctx, payload); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) postMessage(ctx context.Context, payload any) error {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s/messages", graphBaseURL, c.apiVersion, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create message request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send message request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("whatsapp returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// chunkText splits text into chunks of at most size bytes without cutting a
// UTF-8 sequence in half. The split point backs up to the nearest rune start
// so every chunk stays valid text.
func chunkText(text string, size int) []string {
	if text == "" {
		return nil
	}
	var chunks []string
	for len(text) > size {
		cut := size
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == 0 {
			cut = size
		}
		chunks = append(chunks, text[:cut])
		text = text[cut:]
	}
	return append(chunks, text)
}
