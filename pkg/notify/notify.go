// Package notify delivers license alerts over email, chat webhooks and
// pub/sub topics.
package notify

import (
	"context"
	"errors"
)

var ErrNotConfigured = errors.New("notification channel not configured")

// Message is one alert addressed to a single recipient. To is an email
// address for contact channels and a display name for chat channels.
type Message struct {
	To      string
	Subject string
	Body    string
}

//go:generate mockgen -destination=mocks/channel.go -package=mocks . Channel

// Channel sends a message. A nil error means the provider accepted it.
type Channel interface {
	Name() string
	Send(ctx context.Context, m Message) error
}
