package server

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListenAddr(t *testing.T) {
	require.Equal(t, ":8080", listenAddr("8080"))
	require.Equal(t, ":8080", listenAddr(":8080"))
	require.Equal(t, "127.0.0.1:8080", listenAddr("127.0.0.1:8080"))
	require.Equal(t, ":0", listenAddr(""))
}
