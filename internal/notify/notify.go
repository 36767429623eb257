// Package notify delivers prepared notification payloads through an
// external push-messaging service. The backend only resolves the delivery
// token and hands off; transport, retries-on-the-wire and device handling
// belong to the external service.
package notify

import (
	"context"
	"errors"
)

// ErrNoDeliveryTarget reports that the recipient has no registered device
// token. Surfaced as a distinct condition, never a silent no-op.
var ErrNoDeliveryTarget = errors.New("notify: recipient has no delivery token")

// Message is the prepared payload handed to the push service.
type Message struct {
	Token string            `json:"token"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Sender dispatches one message to one device token.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
