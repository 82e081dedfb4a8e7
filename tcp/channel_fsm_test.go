package tcp

import (
	"testing"

	"github.com/caproto/caproto-sub000/ca"
	"github.com/stretchr/testify/require"
)

func TestChannelStepClientHappyPath(t *testing.T) {
	st := initialChannelState(ca.RoleClient)
	require.Equal(t, ChanSendCreateChanRequest, st)

	st, err := channelStep(ca.RoleClient, st, ca.CMD_CREATE_CHAN, ca.DirSend)
	require.NoError(t, err)
	require.Equal(t, ChanAwaitCreateChanResponse, st)

	st, err = channelStep(ca.RoleClient, st, ca.CMD_CREATE_CHAN, ca.DirRecv)
	require.NoError(t, err)
	require.Equal(t, ChanConnected, st)

	st, err = channelStep(ca.RoleClient, st, ca.CMD_CLEAR_CHANNEL, ca.DirSend)
	require.NoError(t, err)
	require.Equal(t, ChanMustClose, st)

	st, err = channelStep(ca.RoleClient, st, ca.CMD_CLEAR_CHANNEL, ca.DirRecv)
	require.NoError(t, err)
	require.Equal(t, ChanClosed, st)
}

func TestChannelStepServerHappyPath(t *testing.T) {
	st := initialChannelState(ca.RoleServer)
	require.Equal(t, ChanAwaitCreateChanRequest, st)

	st, err := channelStep(ca.RoleServer, st, ca.CMD_CREATE_CHAN, ca.DirRecv)
	require.NoError(t, err)
	require.Equal(t, ChanSendCreateChanResponse, st)

	st, err = channelStep(ca.RoleServer, st, ca.CMD_CREATE_CHAN, ca.DirSend)
	require.NoError(t, err)
	require.Equal(t, ChanConnected, st)
}

func TestChannelStepCreateChanFailure(t *testing.T) {
	st, err := channelStep(ca.RoleClient, ChanAwaitCreateChanResponse, ca.CMD_CREATE_CH_FAIL, ca.DirRecv)
	require.NoError(t, err)
	require.Equal(t, ChanFailed, st)
}

func TestChannelStepAccessRightsAllowedWhileConnected(t *testing.T) {
	st, err := channelStep(ca.RoleClient, ChanConnected, ca.CMD_ACCESS_RIGHTS, ca.DirRecv)
	require.NoError(t, err)
	require.Equal(t, ChanConnected, st)
}

func TestChannelStepErrorAlwaysFails(t *testing.T) {
	st, err := channelStep(ca.RoleClient, ChanConnected, ca.CMD_ERROR, ca.DirRecv)
	require.NoError(t, err)
	require.Equal(t, ChanFailed, st)
}

func TestChannelStepIllegalSendIsLocalError(t *testing.T) {
	_, err := channelStep(ca.RoleClient, ChanSendCreateChanRequest, ca.CMD_CLEAR_CHANNEL, ca.DirSend)
	var lpe *ca.LocalProtocolError
	require.ErrorAs(t, err, &lpe)
}

func TestChannelStepIllegalRecvIsRemoteError(t *testing.T) {
	_, err := channelStep(ca.RoleClient, ChanSendCreateChanRequest, ca.CMD_CLEAR_CHANNEL, ca.DirRecv)
	var rpe *ca.RemoteProtocolError
	require.ErrorAs(t, err, &rpe)
}

func TestChannelStateStringCoversAllValues(t *testing.T) {
	states := []ChannelState{
		ChanSendCreateChanRequest, ChanAwaitCreateChanRequest, ChanAwaitCreateChanResponse,
		ChanSendCreateChanResponse, ChanConnected, ChanMustClose, ChanClosed, ChanFailed,
	}
	for _, st := range states {
		require.NotEqual(t, "UNKNOWN", st.String())
	}
}
