package ca

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// encodeDecodeRoundTrip encodes cmd, then decodes the resulting bytes back
// using peerRole as the role of whoever "sent" it, and returns the decoded
// command.
func encodeDecodeRoundTrip(t *testing.T, cmd Command, version uint16, peerRole Role) Command {
	t.Helper()
	bufs, err := Encode(cmd, version)
	require.NoError(t, err)

	var flat []byte
	for _, b := range bufs {
		flat = append(flat, b...)
	}
	cmdID := CommandID(u16(flat[0:2]))
	h, n, err := DecodeHeader(flat, cmdID.AllowsExtendedHeader() && version >= ExtendedHeaderMinVersion)
	require.NoError(t, err)

	got, err := DecodeCommand(h, flat[n:], peerRole)
	require.NoError(t, err)
	return got
}

func TestVersionRequestRoundTrip(t *testing.T) {
	req := VersionRequest{Priority: 42, Version: 13}
	got := encodeDecodeRoundTrip(t, req, 13, RoleClient)
	require.Equal(t, req, got)
}

func TestVersionResponseRoundTrip(t *testing.T) {
	resp := VersionResponse{Version: 13}
	got := encodeDecodeRoundTrip(t, resp, 13, RoleServer)
	require.Equal(t, resp, got)
}

func TestSearchRequestRoundTrip(t *testing.T) {
	req := SearchRequest{CID: 7, Name: "IOC:scalar1", Version: 13, Reply: SearchReplyNo}
	got := encodeDecodeRoundTrip(t, req, 13, RoleClient)
	require.Equal(t, req, got)
}

func TestSearchRequestRejectsOverlongName(t *testing.T) {
	long := make([]byte, 41)
	for i := range long {
		long[i] = 'a'
	}
	_, err := Encode(SearchRequest{Name: string(long)}, 13)
	require.Error(t, err)
}

func TestCreateChanRoundTrip(t *testing.T) {
	req := CreateChanRequest{Name: "IOC:scalar1", CID: 3, Version: 13}
	got := encodeDecodeRoundTrip(t, req, 13, RoleClient)
	require.Equal(t, req, got)

	resp := CreateChanResponse{DataType: DBR_FLOAT64, Count: 1, CID: 3, SID: 99}
	got = encodeDecodeRoundTrip(t, resp, 13, RoleServer)
	require.Equal(t, resp, got)
}

func TestClearChannelRoundTrip(t *testing.T) {
	req := ClearChannelRequest{CID: 3, SID: 99}
	got := encodeDecodeRoundTrip(t, req, 13, RoleClient)
	require.Equal(t, req, got)

	resp := ClearChannelResponse{CID: 3, SID: 99}
	got = encodeDecodeRoundTrip(t, resp, 13, RoleServer)
	require.Equal(t, resp, got)
}

func TestReadNotifyRoundTrip(t *testing.T) {
	req := ReadNotifyRequest{DataType: DBR_FLOAT64, Count: 1, SID: 99, IOID: 5}
	got := encodeDecodeRoundTrip(t, req, 13, RoleClient)
	require.Equal(t, req, got)

	view, err := DecodeElementsView(DBR_FLOAT64, 1, mustEncodeElements(t, DBR_FLOAT64, []float64{3.14}))
	require.NoError(t, err)
	resp := ReadNotifyResponse{DataType: DBR_FLOAT64, Count: 1, Status: 0, IOID: 5, Data: view}
	got = encodeDecodeRoundTrip(t, resp, 13, RoleServer)
	gotResp, ok := got.(ReadNotifyResponse)
	require.True(t, ok)
	require.Equal(t, resp.IOID, gotResp.IOID)
	require.Equal(t, resp.Data.Float64(0), gotResp.Data.Float64(0))
}

func TestWriteNotifyExtendedHeaderRoundTrip(t *testing.T) {
	const count = 200000
	vals := make([]float64, count)
	for i := range vals {
		vals[i] = float64(i)
	}
	raw := mustEncodeElements(t, DBR_FLOAT64, vals)
	view, err := DecodeElementsView(DBR_FLOAT64, count, raw)
	require.NoError(t, err)

	req := WriteNotifyRequest{DataType: DBR_FLOAT64, Count: count, SID: 99, IOID: 7, Data: view}
	bufs, err := Encode(req, 13)
	require.NoError(t, err)

	var flat []byte
	for _, b := range bufs {
		flat = append(flat, b...)
	}
	h, n, err := DecodeHeader(flat, true)
	require.NoError(t, err)
	require.Equal(t, ExtendedHeaderSize, n)
	require.True(t, h.NeedsExtended())

	got, err := DecodeCommand(h, flat[n:], RoleClient)
	require.NoError(t, err)
	gotReq, ok := got.(WriteNotifyRequest)
	require.True(t, ok)
	require.Equal(t, uint32(count), gotReq.Count)
	require.Equal(t, float64(count-1), gotReq.Data.Float64(count-1))
}

func TestWriteNotifyExtendedHeaderRejectedBelowVersion13(t *testing.T) {
	const count = 200000
	vals := make([]float64, count)
	raw := mustEncodeElements(t, DBR_FLOAT64, vals)
	view, err := DecodeElementsView(DBR_FLOAT64, count, raw)
	require.NoError(t, err)

	req := WriteNotifyRequest{DataType: DBR_FLOAT64, Count: count, SID: 99, IOID: 7, Data: view}
	_, err = Encode(req, 12)
	require.Error(t, err)
}

func TestErrorResponseRoundTrip(t *testing.T) {
	orig := Header{Command: uint16(CMD_READ_NOTIFY), Parameter1: 99, Parameter2: 5}
	resp := ErrorResponse{OriginalHeader: orig, CID: 3, Status: 1, Message: "no such channel"}
	got := encodeDecodeRoundTrip(t, resp, 13, RoleServer)
	gotResp, ok := got.(ErrorResponse)
	require.True(t, ok)
	require.Equal(t, resp.CID, gotResp.CID)
	require.Equal(t, resp.Status, gotResp.Status)
	require.Equal(t, resp.Message, gotResp.Message)
	require.Equal(t, orig.Command, gotResp.OriginalHeader.Command)
	require.Equal(t, orig.Parameter1, gotResp.OriginalHeader.Parameter1)
}

func TestEventAddRequestRoundTrip(t *testing.T) {
	req := EventAddRequest{DataType: DBR_FLOAT64, Count: 1, SID: 99, SubscriptionID: 1, Mask: DBEValue | DBEAlarm}
	got := encodeDecodeRoundTrip(t, req, 13, RoleClient)
	require.Equal(t, req, got)
}

func TestEventCancelRequestRoundTrip(t *testing.T) {
	req := EventCancelRequest{DataType: DBR_FLOAT64, SID: 99, SubscriptionID: 1}
	got := encodeDecodeRoundTrip(t, req, 13, RoleClient)
	require.Equal(t, req, got)
}

func TestEchoCommandRoundTrip(t *testing.T) {
	got := encodeDecodeRoundTrip(t, EchoCommand{}, 13, RoleClient)
	require.Equal(t, EchoCommand{}, got)
}

func TestHostNameRequestRoundTrip(t *testing.T) {
	req := HostNameRequest{Name: "workstation7"}
	got := encodeDecodeRoundTrip(t, req, 13, RoleClient)
	require.Equal(t, req, got)
}

func TestClientNameRequestRoundTrip(t *testing.T) {
	req := ClientNameRequest{Name: "operator"}
	got := encodeDecodeRoundTrip(t, req, 13, RoleClient)
	require.Equal(t, req, got)
}

func TestCreateChFailResponseRoundTrip(t *testing.T) {
	resp := CreateChFailResponse{CID: 3}
	got := encodeDecodeRoundTrip(t, resp, 13, RoleServer)
	require.Equal(t, resp, got)
}

func TestAccessRightsResponseRoundTrip(t *testing.T) {
	resp := AccessRightsResponse{CID: 3, AccessRights: AccessRead | AccessWrite}
	got := encodeDecodeRoundTrip(t, resp, 13, RoleServer)
	require.Equal(t, resp, got)
}

func TestServerDisconnResponseRoundTrip(t *testing.T) {
	resp := ServerDisconnResponse{CID: 3}
	got := encodeDecodeRoundTrip(t, resp, 13, RoleServer)
	require.Equal(t, resp, got)
}

func TestUnknownCommandIDRejected(t *testing.T) {
	h := Header{Command: 0xBEEF}
	_, err := DecodeCommand(h, nil, RoleClient)
	require.Error(t, err)
}

func mustEncodeElements(t *testing.T, native FieldType, vals []float64) []byte {
	t.Helper()
	b, err := EncodeElements(native, len(vals), vals, nil)
	require.NoError(t, err)
	return b
}
