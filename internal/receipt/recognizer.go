package receipt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrRecognitionFailed reports that the external text-recognition service
// could not produce text for an image. It must surface as-is to the caller;
// it is never collapsed into an empty bill.
var ErrRecognitionFailed = errors.New("receipt: text recognition failed")

// Recognizer turns image bytes into raw recognized text.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, contentType string) (string, error)
}

// RecognizerClient calls an external OCR service over HTTP.
type RecognizerClient struct {
	baseURL string
	client  *http.Client
}

// NewRecognizerClient builds a client for the OCR service at baseURL.
// Timeouts are the caller's concern: pass an http.Client configured with
// whatever deadline the calling layer wants, or nil for the default client.
func NewRecognizerClient(baseURL string, client *http.Client) *RecognizerClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &RecognizerClient{baseURL: baseURL, client: client}
}

// Recognize posts the image to the OCR service and returns the recognized
// text. Any transport or service error wraps ErrRecognitionFailed.
func (c *RecognizerClient) Recognize(ctx context.Context, image []byte, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/recognize", bytes.NewReader(image))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRecognitionFailed, err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRecognitionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: service returned %d: %s", ErrRecognitionFailed, resp.StatusCode, bytes.TrimSpace(body))
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrRecognitionFailed, err)
	}
	return out.Text, nil
}
