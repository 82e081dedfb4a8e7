package ca

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoleAndDirectionStrings(t *testing.T) {
	require.Equal(t, "CLIENT", RoleClient.String())
	require.Equal(t, "SERVER", RoleServer.String())
	require.Equal(t, "SEND", DirSend.String())
	require.Equal(t, "RECV", DirRecv.String())
}

func TestLocalProtocolErrorMessage(t *testing.T) {
	err := NewLocalProtocolError("bad %s", "thing")
	require.ErrorContains(t, err, "bad thing")
	require.ErrorContains(t, err, "local protocol error")
}

func TestRemoteProtocolErrorMessage(t *testing.T) {
	err := NewRemoteProtocolError("bad %s", "thing")
	require.ErrorContains(t, err, "bad thing")
	require.ErrorContains(t, err, "remote protocol error")
}

func TestErrNeedDataIsDistinguishedSentinel(t *testing.T) {
	_, _, err := DecodeHeader(nil, true)
	require.True(t, err == ErrNeedData)
}
