package whatsapp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

var mimeToExt = map[string]string{
	"image/jpeg":      "jpg",
	"image/png":       "png",
	"image/webp":      "webp",
	"application/pdf": "pdf",
	"application/msword": "doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
	"audio/ogg":  "ogg",
	"audio/mpeg": "mp3",
}

// MimeToExtension maps a MIME type to a file extension, falling back to "bin".
func MimeToExtension(mimeType string) string {
	if ext, ok := mimeToExt[mimeType]; ok {
		return ext
	}
	return "bin"
}

type mediaMetadata struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
}

// DownloadMedia fetches an inbound attachment. The Cloud API requires two
// steps: resolve the media ID to a short-lived URL, then fetch the binary
// with the same bearer token.
func (c *Client) DownloadMedia(ctx context.Context, mediaID string) (Media, error) {
	metaURL := fmt.Sprintf("%s/%s/%s", graphBaseURL, c.apiVersion, mediaID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, metaURL, nil)
	if err != nil {
		return Media{}, fmt.Errorf("failed to create media metadata request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Media{}, fmt.Errorf("media metadata request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Media{}, fmt.Errorf("whatsapp returned %d: %s", resp.StatusCode, string(body))
	}

	var meta mediaMetadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return Media{}, fmt.Errorf("failed to decode media metadata: %w", err)
	}

	fileReq, err := http.NewRequestWithContext(ctx, http.MethodGet, meta.URL, nil)
	if err != nil {
		return Media{}, fmt.Errorf("failed to create media download request: %w", err)
	}
	fileReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	fileResp, err := c.httpClient.Do(fileReq)
	if err != nil {
		return Media{}, fmt.Errorf("media download request failed: %w", err)
	}
	defer fileResp.Body.Close()

	if fileResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(fileResp.Body)
		return Media{}, fmt.Errorf("whatsapp media host returned %d: %s", fileResp.StatusCode, string(body))
	}

	data, err := io.ReadAll(fileResp.Body)
	if err != nil {
		return Media{}, fmt.Errorf("failed to read media body: %w", err)
	}

	mimeType := meta.MimeType
	if mimeType == "" {
		mimeType = fileResp.Header.Get("Content-Type")
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	return Media{Data: data, MimeType: mimeType}, nil
}
