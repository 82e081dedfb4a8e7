package tcp

import "github.com/caproto/caproto-sub000/ca"

// Channel tracks one named data endpoint within a circuit: its identifiers,
// negotiated type/count, access rights, and the paired CLIENT/SERVER state
// machines that govern it. See companion spec §3 "Channel".
type Channel struct {
	Name string
	CID  uint32
	SID  uint32

	NativeDataType  ca.FieldType
	NativeDataCount uint32
	AccessRights    uint32

	hasSID bool

	clientState ChannelState
	serverState ChannelState
}

// NewChannel builds a Channel in its initial, not-yet-created state. sid is
// assigned later, via ApplyCreateChanResponse.
func NewChannel(name string, cid uint32) *Channel {
	return &Channel{
		Name:        name,
		CID:         cid,
		clientState: initialChannelState(ca.RoleClient),
		serverState: initialChannelState(ca.RoleServer),
	}
}

// ClientState reports the channel's CLIENT-side state machine state.
func (sf *Channel) ClientState() ChannelState { return sf.clientState }

// ServerState reports the channel's SERVER-side state machine state.
func (sf *Channel) ServerState() ChannelState { return sf.serverState }

// HasSID reports whether the server has assigned this channel's sid yet.
// Per the invariant in companion spec §3, operations addressing sid before
// this is true are local protocol errors.
func (sf *Channel) HasSID() bool { return sf.hasSID }

// step advances both of the channel's role machines for a command observed
// in direction dir. Only the machine matching ourRole is authoritative for
// raising an error back to the caller; the other is kept in sync so a test
// harness driving both sides of a circuit can compare them, per the
// "equivalent terminal states" property in companion spec §8.
func (sf *Channel) step(ourRole ca.Role, cmd ca.CommandID, dir ca.Direction) error {
	var stepErr error
	next, err := channelStep(ca.RoleClient, sf.clientState, cmd, dir)
	if ourRole == ca.RoleClient {
		stepErr = err
	}
	if err == nil || ourRole != ca.RoleClient {
		sf.clientState = next
	}

	next, err = channelStep(ca.RoleServer, sf.serverState, cmd, dir)
	if ourRole == ca.RoleServer {
		stepErr = err
	}
	if err == nil || ourRole != ca.RoleServer {
		sf.serverState = next
	}
	return stepErr
}

// ApplyCreateChanResponse records the server-assigned sid and negotiated
// type/count once a CreateChanResponse is observed.
func (sf *Channel) ApplyCreateChanResponse(r ca.CreateChanResponse) {
	sf.SID = r.SID
	sf.hasSID = true
	sf.NativeDataType = r.DataType
	sf.NativeDataCount = r.Count
}

// ApplyAccessRights records a refreshed access-rights bitfield.
func (sf *Channel) ApplyAccessRights(r ca.AccessRightsResponse) {
	sf.AccessRights = r.AccessRights
}

// Convenience helpers. These never mutate the channel's state machines;
// state only advances once the returned command is handed to
// VirtualCircuit.Send, per companion spec §4.6.

// BuildCreateChanRequest fills cid and the requested protocol version.
func (sf *Channel) BuildCreateChanRequest(version uint16) ca.CreateChanRequest {
	return ca.CreateChanRequest{Name: sf.Name, CID: sf.CID, Version: version}
}

// BuildReadNotifyRequest fills sid and the channel's current native type.
func (sf *Channel) BuildReadNotifyRequest(ioid uint32) ca.ReadNotifyRequest {
	return ca.ReadNotifyRequest{DataType: sf.NativeDataType, Count: sf.NativeDataCount, SID: sf.SID, IOID: ioid}
}

// BuildWriteNotifyRequest fills sid and the channel's current native type.
func (sf *Channel) BuildWriteNotifyRequest(ioid uint32, data ca.ElementsView) ca.WriteNotifyRequest {
	return ca.WriteNotifyRequest{DataType: sf.NativeDataType, Count: uint32(data.Count), SID: sf.SID, IOID: ioid, Data: data}
}

// BuildEventAddRequest fills sid and the channel's current native type.
func (sf *Channel) BuildEventAddRequest(subscriptionID uint32, mask uint16) ca.EventAddRequest {
	return ca.EventAddRequest{DataType: sf.NativeDataType, Count: sf.NativeDataCount, SID: sf.SID, SubscriptionID: subscriptionID, Mask: mask}
}

// BuildEventCancelRequest fills sid and the channel's current native type.
func (sf *Channel) BuildEventCancelRequest(subscriptionID uint32) ca.EventCancelRequest {
	return ca.EventCancelRequest{DataType: sf.NativeDataType, SID: sf.SID, SubscriptionID: subscriptionID}
}

// BuildClearChannelRequest fills cid and sid.
func (sf *Channel) BuildClearChannelRequest() ca.ClearChannelRequest {
	return ca.ClearChannelRequest{CID: sf.CID, SID: sf.SID}
}
