package tcp

import (
	"testing"

	"github.com/caproto/caproto-sub000/ca"
	"github.com/stretchr/testify/require"
)

func TestNewChannelInitialState(t *testing.T) {
	ch := NewChannel("IOC:scalar1", 5)
	require.Equal(t, ChanSendCreateChanRequest, ch.ClientState())
	require.Equal(t, ChanAwaitCreateChanRequest, ch.ServerState())
	require.False(t, ch.HasSID())
}

func TestChannelStepMirrorsBothMachines(t *testing.T) {
	ch := NewChannel("IOC:scalar1", 5)
	err := ch.step(ca.RoleClient, ca.CMD_CREATE_CHAN, ca.DirSend)
	require.NoError(t, err)
	require.Equal(t, ChanAwaitCreateChanResponse, ch.ClientState())
	// The server-side mirror does not advance on a client-authoritative send;
	// it only moves once its own role observes the matching event.
	require.Equal(t, ChanAwaitCreateChanRequest, ch.ServerState())
}

func TestApplyCreateChanResponseRecordsSID(t *testing.T) {
	ch := NewChannel("IOC:scalar1", 5)
	ch.ApplyCreateChanResponse(ca.CreateChanResponse{DataType: ca.DBR_FLOAT64, Count: 3, CID: 5, SID: 42})
	require.True(t, ch.HasSID())
	require.Equal(t, uint32(42), ch.SID)
	require.Equal(t, ca.DBR_FLOAT64, ch.NativeDataType)
	require.Equal(t, uint32(3), ch.NativeDataCount)
}

func TestApplyAccessRightsRecordsBitfield(t *testing.T) {
	ch := NewChannel("IOC:scalar1", 5)
	ch.ApplyAccessRights(ca.AccessRightsResponse{CID: 5, AccessRights: ca.AccessRead | ca.AccessWrite})
	require.Equal(t, ca.AccessRead|ca.AccessWrite, ch.AccessRights)
}

func TestBuilderHelpersFillIdentifiers(t *testing.T) {
	ch := NewChannel("IOC:scalar1", 5)
	ch.ApplyCreateChanResponse(ca.CreateChanResponse{DataType: ca.DBR_FLOAT64, Count: 1, CID: 5, SID: 42})

	req := ch.BuildCreateChanRequest(13)
	require.Equal(t, "IOC:scalar1", req.Name)
	require.Equal(t, uint32(5), req.CID)

	readReq := ch.BuildReadNotifyRequest(9)
	require.Equal(t, uint32(42), readReq.SID)
	require.Equal(t, ca.DBR_FLOAT64, readReq.DataType)

	clearReq := ch.BuildClearChannelRequest()
	require.Equal(t, uint32(5), clearReq.CID)
	require.Equal(t, uint32(42), clearReq.SID)
}
