package expiry

import (
	"testing"

	"license-tracker/services/license"

	"github.com/stretchr/testify/require"
)

func TestMessages(t *testing.T) {
	l := &license.License{
		Name:         "Acme",
		ExpiryDate:   "2026-11-17",
		PrimaryEmail: "a@x.com",
		PrimaryOwner: "Jane",
	}

	m := contactMessage(l, 30, "b@x.com")
	require.Equal(t, "b@x.com", m.To)
	require.Equal(t, "License 'Acme' expires in 30 days", m.Subject)
	require.Contains(t, m.Body, "Expiry Date: 2026-11-17")
	require.Contains(t, m.Body, "Owner: Jane")
	require.Contains(t, m.Body, "Contact: a@x.com")

	chat := chatMessage(l, 30)
	require.Equal(t, "Jane", chat.To)
	require.Contains(t, chat.Body, "expires in **30 days**")
	require.Contains(t, chat.Body, "@`Jane`")
	require.Contains(t, chat.Body, "Please renew ASAP.")

	l.PrimaryOwner = ""
	require.Equal(t, unknownOwner, chatMessage(l, 1).To)
}
