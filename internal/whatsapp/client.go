// Package whatsapp sends outbound messages through a WaSender-style
// HTTP gateway.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
}

func NewClient(apiURL, apiKey string) *Client {
	return &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type sendMessageRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

// SendMessage delivers text to the recipient identified by phone
// number or JID.
func (c *Client) SendMessage(ctx context.Context, to, text string) error {
	payload, err := json.Marshal(sendMessageRequest{To: to, Text: text})
	if err != nil {
		return fmt.Errorf("marshal send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/api/send-message", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("send message: gateway returned %d: %s", resp.StatusCode, body)
	}
	return nil
}
