// Package transport delivers outbound replies through the chat platform's
// HTTP API. Message composition and rendering beyond plain text belong to
// the callers.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Replier is the outbound side consumed by the dispatcher and handlers.
type Replier interface {
	SendText(ctx context.Context, chatID, text string) error
}

// Client talks to the chat platform's bot API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient constructs a Client for the given API base URL and bot token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 20 * time.Second},
	}
}

// SendText posts a plain-text message to the chat.
func (c *Client) SendText(ctx context.Context, chatID, text string) error {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	data, _ := json.Marshal(payload)

	u := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("send message status=%d body=%s", res.StatusCode, string(body))
	}
	return nil
}
