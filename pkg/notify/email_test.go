package notify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewEmailChannel(t *testing.T) {
	_, err := NewEmailChannel(SMTPConfig{})
	require.True(t, errors.Is(err, ErrNotConfigured))

	_, err = NewEmailChannel(SMTPConfig{Host: "smtp.example.com"})
	require.True(t, errors.Is(err, ErrNotConfigured))

	ch, err := NewEmailChannel(SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "alerts@example.com"})
	require.NoError(t, err)
	require.Equal(t, "alerts@example.com", ch.cfg.From)
	require.Equal(t, ChannelEmail, ch.Name())
}

func TestEmailChannelBuildMsg(t *testing.T) {
	ch, err := NewEmailChannel(SMTPConfig{Host: "smtp.example.com", From: "alerts@example.com"})
	require.NoError(t, err)

	msg, err := ch.buildMsg(Message{To: "a@x.com", Subject: "License 'Acme' expires in 30 days", Body: "renew"})
	require.NoError(t, err)
	require.Equal(t, []string{"License 'Acme' expires in 30 days"}, msg.GetGenHeader("Subject"))

	_, err = ch.buildMsg(Message{To: "not an address"})
	require.Error(t, err)
}
