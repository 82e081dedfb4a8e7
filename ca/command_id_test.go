package ca

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandIDUDPLegality(t *testing.T) {
	legal := []CommandID{CMD_VERSION, CMD_SEARCH, CMD_NOT_FOUND, CMD_ECHO, CMD_RSRV_IS_UP, CMD_REPEATER_REGISTER, CMD_REPEATER_CONFIRM}
	for _, id := range legal {
		require.True(t, id.IsUDPLegal(), "%s should be UDP legal", id)
	}
	illegal := []CommandID{CMD_CREATE_CHAN, CMD_READ_NOTIFY, CMD_WRITE_NOTIFY, CMD_EVENT_ADD, CMD_ERROR}
	for _, id := range illegal {
		require.False(t, id.IsUDPLegal(), "%s should not be UDP legal", id)
	}
}

func TestCommandIDExtendedCapable(t *testing.T) {
	capable := []CommandID{CMD_WRITE, CMD_WRITE_NOTIFY, CMD_READ_NOTIFY, CMD_EVENT_ADD}
	for _, id := range capable {
		require.True(t, id.AllowsExtendedHeader(), "%s should allow extended header", id)
	}
	notCapable := []CommandID{CMD_VERSION, CMD_SEARCH, CMD_CREATE_CHAN, CMD_READ}
	for _, id := range notCapable {
		require.False(t, id.AllowsExtendedHeader(), "%s should not allow extended header", id)
	}
}

func TestCommandIDString(t *testing.T) {
	require.Equal(t, "CMD<SEARCH>", CMD_SEARCH.String())
	require.Equal(t, "CMD<unknown>", CommandID(9999).String())
}
