package ca

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRsrvIsUpResponseRoundTrip(t *testing.T) {
	resp := RsrvIsUpResponse{ServerPort: 5064, BeaconID: 7, Address: 0x7F000001, Version: 13}
	got := encodeDecodeRoundTrip(t, resp, 13, RoleServer)
	require.Equal(t, resp, got)
}

func TestRepeaterRegisterRequestRoundTrip(t *testing.T) {
	req := RepeaterRegisterRequest{ClientPort: 5065}
	got := encodeDecodeRoundTrip(t, req, 13, RoleClient)
	require.Equal(t, req, got)
}

func TestRepeaterConfirmResponseRoundTrip(t *testing.T) {
	resp := RepeaterConfirmResponse{Address: 0x7F000001}
	got := encodeDecodeRoundTrip(t, resp, 13, RoleServer)
	require.Equal(t, resp, got)
}
