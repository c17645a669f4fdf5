package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	ensured   []string
	published []Message
	ensureErr error
}

func (f *fakePublisher) Name() string { return "fake" }

func (f *fakePublisher) EnsureSubscribed(_ context.Context, destination string) error {
	f.ensured = append(f.ensured, destination)
	return f.ensureErr
}

func (f *fakePublisher) Publish(_ context.Context, _ string, m Message) error {
	f.published = append(f.published, m)
	return nil
}

func TestPubSubChannelEnsuresOnce(t *testing.T) {
	pub := &fakePublisher{}
	ch := NewPubSubChannel(pub)
	ctx := context.Background()

	require.NoError(t, ch.Send(ctx, Message{To: "a@x.com", Body: "1"}))
	require.NoError(t, ch.Send(ctx, Message{To: "a@x.com", Body: "2"}))
	require.NoError(t, ch.Send(ctx, Message{To: "b@x.com", Body: "3"}))

	require.Equal(t, []string{"a@x.com", "b@x.com"}, pub.ensured)
	require.Len(t, pub.published, 3)
}

func TestPubSubChannelSubscribeFailure(t *testing.T) {
	pub := &fakePublisher{ensureErr: errors.New("throttled")}
	ch := NewPubSubChannel(pub)

	require.Error(t, ch.Send(context.Background(), Message{To: "a@x.com"}))
	require.Empty(t, pub.published)
}
