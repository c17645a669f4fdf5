package notify

import (
	"context"
	"fmt"
	"sync"
)

// Publisher delivers messages to a per-recipient destination on a pub/sub
// system. EnsureSubscribed must be idempotent.
type Publisher interface {
	Name() string
	EnsureSubscribed(ctx context.Context, destination string) error
	Publish(ctx context.Context, destination string, m Message) error
}

// PubSubChannel subscribes the recipient on first use, then publishes.
type PubSubChannel struct {
	publisher Publisher
	ensured   sync.Map
}

func NewPubSubChannel(p Publisher) *PubSubChannel {
	return &PubSubChannel{publisher: p}
}

func (c *PubSubChannel) Name() string { return c.publisher.Name() }

func (c *PubSubChannel) Send(ctx context.Context, m Message) error {
	if _, ok := c.ensured.Load(m.To); !ok {
		if err := c.publisher.EnsureSubscribed(ctx, m.To); err != nil {
			return fmt.Errorf("%s subscribe %s: %w", c.publisher.Name(), m.To, err)
		}
		c.ensured.Store(m.To, struct{}{})
	}

	if err := c.publisher.Publish(ctx, m.To, m); err != nil {
		return fmt.Errorf("%s publish: %w", c.publisher.Name(), err)
	}
	return nil
}
