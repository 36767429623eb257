package receipt

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRecognizerClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/recognize" {
			t.Errorf("path = %s, want /v1/recognize", r.URL.Path)
		}
		if got := r.Header.Get("Content-Type"); got != "image/jpeg" {
			t.Errorf("content type = %s, want image/jpeg", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "image-bytes" {
			t.Errorf("body = %q", body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"Coffee 4.50"}`))
	}))
	defer server.Close()

	client := NewRecognizerClient(server.URL, nil)
	text, err := client.Recognize(context.Background(), []byte("image-bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if text != "Coffee 4.50" {
		t.Errorf("text = %q, want Coffee 4.50", text)
	}
}

func TestRecognizerClientServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewRecognizerClient(server.URL, nil)
	_, err := client.Recognize(context.Background(), []byte("image"), "")
	if !errors.Is(err, ErrRecognitionFailed) {
		t.Fatalf("Recognize() error = %v, want ErrRecognitionFailed", err)
	}
}
