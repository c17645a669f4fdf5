package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWebhookChannelSend(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ch, err := NewWebhookChannel(srv.URL, time.Second)
	require.NoError(t, err)
	require.Equal(t, ChannelWebhook, ch.Name())

	require.NoError(t, ch.Send(context.Background(), Message{To: "Jane", Body: "Acme expires in 30 days"}))
	require.Equal(t, "Acme expires in 30 days", got["text"])
}

func TestWebhookChannelNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ch, err := NewWebhookChannel(srv.URL, time.Second)
	require.NoError(t, err)
	require.Error(t, ch.Send(context.Background(), Message{Body: "x"}))
}

func TestWebhookChannelNotConfigured(t *testing.T) {
	_, err := NewWebhookChannel("", 0)
	require.True(t, errors.Is(err, ErrNotConfigured))
}
