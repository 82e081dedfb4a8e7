package tcp

import "github.com/caproto/caproto-sub000/ca"

// ChannelState names one state of a channel's CLIENT or SERVER state
// machine. Both machines share this enum; only a subset of values is
// reachable on either side. See companion spec §4.3.
type ChannelState int

// Defined channel states.
const (
	ChanSendCreateChanRequest ChannelState = iota
	ChanAwaitCreateChanRequest
	ChanAwaitCreateChanResponse
	ChanSendCreateChanResponse
	ChanConnected
	ChanMustClose
	ChanClosed
	ChanFailed
)

func (sf ChannelState) String() string {
	switch sf {
	case ChanSendCreateChanRequest:
		return "SEND_CREATE_CHAN_REQUEST"
	case ChanAwaitCreateChanRequest:
		return "AWAIT_CREATE_CHAN_REQUEST"
	case ChanAwaitCreateChanResponse:
		return "AWAIT_CREATE_CHAN_RESPONSE"
	case ChanSendCreateChanResponse:
		return "SEND_CREATE_CHAN_RESPONSE"
	case ChanConnected:
		return "CONNECTED"
	case ChanMustClose:
		return "MUST_CLOSE"
	case ChanClosed:
		return "CLOSED"
	case ChanFailed:
		return "FAILED"
	}
	return "UNKNOWN"
}

type channelKey struct {
	state ca.Role
	st    ChannelState
	cmd   ca.CommandID
	dir   ca.Direction
}

// channelTransitions is keyed by (our_role, current_state, command_id,
// direction) and gives the next state. Entries absent from this table are
// rejected by channelStep as a protocol error. AccessRightsResponse's
// "any CONNECTED state" exception is handled in channelStep directly
// rather than enumerated here, since it applies identically regardless of
// which CONNECTED-adjacent state the channel is in.
var channelTransitions = map[channelKey]ChannelState{
	// CLIENT role.
	{ca.RoleClient, ChanSendCreateChanRequest, ca.CMD_CREATE_CHAN, ca.DirSend}:    ChanAwaitCreateChanResponse,
	{ca.RoleClient, ChanAwaitCreateChanResponse, ca.CMD_CREATE_CHAN, ca.DirRecv}:  ChanConnected,
	{ca.RoleClient, ChanAwaitCreateChanResponse, ca.CMD_CREATE_CH_FAIL, ca.DirRecv}: ChanFailed,
	{ca.RoleClient, ChanConnected, ca.CMD_CLEAR_CHANNEL, ca.DirSend}:              ChanMustClose,
	{ca.RoleClient, ChanConnected, ca.CMD_SERVER_DISCONN, ca.DirRecv}:             ChanMustClose,
	{ca.RoleClient, ChanMustClose, ca.CMD_CLEAR_CHANNEL, ca.DirRecv}:              ChanClosed,
	{ca.RoleClient, ChanMustClose, ca.CMD_CLEAR_CHANNEL, ca.DirSend}:              ChanClosed,

	// SERVER role.
	{ca.RoleServer, ChanAwaitCreateChanRequest, ca.CMD_CREATE_CHAN, ca.DirRecv}:   ChanSendCreateChanResponse,
	{ca.RoleServer, ChanSendCreateChanResponse, ca.CMD_CREATE_CHAN, ca.DirSend}:   ChanConnected,
	{ca.RoleServer, ChanSendCreateChanResponse, ca.CMD_CREATE_CH_FAIL, ca.DirSend}: ChanFailed,
	{ca.RoleServer, ChanConnected, ca.CMD_CLEAR_CHANNEL, ca.DirRecv}:              ChanMustClose,
	{ca.RoleServer, ChanConnected, ca.CMD_SERVER_DISCONN, ca.DirSend}:             ChanMustClose,
	{ca.RoleServer, ChanMustClose, ca.CMD_CLEAR_CHANNEL, ca.DirSend}:              ChanClosed,
	{ca.RoleServer, ChanMustClose, ca.CMD_CLEAR_CHANNEL, ca.DirRecv}:              ChanClosed,
}

// channelStep advances a channel's per-role state machine on (cmd, dir).
// ourRole is the role owning THIS state machine instance (not necessarily
// the circuit's our_role: a circuit tracks one CLIENT and one SERVER
// channel machine per spec §4.3, mirroring the peer's).
func channelStep(ourRole ca.Role, current ChannelState, cmd ca.CommandID, dir ca.Direction) (ChannelState, error) {
	if cmd == ca.CMD_ACCESS_RIGHTS && current == ChanConnected {
		return ChanConnected, nil
	}
	if cmd == ca.CMD_ERROR {
		return ChanFailed, nil
	}
	next, ok := channelTransitions[channelKey{ourRole, current, cmd, dir}]
	if !ok {
		if dir == ca.DirSend {
			return current, ca.NewLocalProtocolError("channel in state %s cannot send %s", current, cmd)
		}
		return current, ca.NewRemoteProtocolError("channel in state %s received unexpected %s", current, cmd)
	}
	return next, nil
}

// initialChannelState is the starting state for a channel's state machine
// for the given role, before any CreateChan traffic.
func initialChannelState(role ca.Role) ChannelState {
	if role == ca.RoleServer {
		return ChanAwaitCreateChanRequest
	}
	return ChanSendCreateChanRequest
}
