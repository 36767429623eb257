package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPushClientSend(t *testing.T) {
	var received Message
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/send" {
			t.Errorf("path = %s, want /v1/send", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret-key" {
			t.Errorf("authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewPushClient(server.URL, "secret-key", nil)
	err := client.Send(context.Background(), Message{
		Token: "device-1",
		Title: "Payment Reminder",
		Body:  "you owe me",
		Data:  map[string]string{"amount": "15.00"},
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if received.Token != "device-1" || received.Data["amount"] != "15.00" {
		t.Errorf("gateway received %+v", received)
	}
}

func TestPushClientRequiresToken(t *testing.T) {
	client := NewPushClient("http://unreachable.invalid", "", nil)
	err := client.Send(context.Background(), Message{Title: "Payment Reminder"})
	if !errors.Is(err, ErrNoDeliveryTarget) {
		t.Fatalf("Send() error = %v, want ErrNoDeliveryTarget", err)
	}
}

func TestPushClientGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid token", http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewPushClient(server.URL, "", nil)
	if err := client.Send(context.Background(), Message{Token: "stale"}); err == nil {
		t.Fatal("Send() succeeded against failing gateway")
	}
}
