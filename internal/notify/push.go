package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// PushClient sends messages through an HTTP push gateway.
type PushClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewPushClient builds a client for the push gateway at baseURL. Pass a nil
// http.Client to use the default; deadlines are the caller's concern.
func NewPushClient(baseURL, apiKey string, client *http.Client) *PushClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &PushClient{baseURL: baseURL, apiKey: apiKey, client: client}
}

// Send posts the message to the gateway. A missing token fails fast with
// ErrNoDeliveryTarget before any network call.
func (c *PushClient) Send(ctx context.Context, msg Message) error {
	if msg.Token == "" {
		return ErrNoDeliveryTarget
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("notify: encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/send", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("notify: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("notify: gateway returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}
