package tcp

import "github.com/caproto/caproto-sub000/ca"

// CircuitState names one state of a circuit's CLIENT or SERVER state
// machine. See companion spec §4.4.
type CircuitState int

// Defined circuit states.
const (
	CircSendVersionRequest CircuitState = iota
	CircAwaitVersionRequest
	CircAwaitVersionResponse
	CircSendVersionResponse
	CircConnected
	CircDisconnected
)

func (sf CircuitState) String() string {
	switch sf {
	case CircSendVersionRequest:
		return "SEND_VERSION_REQUEST"
	case CircAwaitVersionRequest:
		return "AWAIT_VERSION_REQUEST"
	case CircAwaitVersionResponse:
		return "AWAIT_VERSION_RESPONSE"
	case CircSendVersionResponse:
		return "SEND_VERSION_RESPONSE"
	case CircConnected:
		return "CONNECTED"
	case CircDisconnected:
		return "DISCONNECTED"
	}
	return "UNKNOWN"
}

type circuitKey struct {
	role ca.Role
	st   CircuitState
	cmd  ca.CommandID
	dir  ca.Direction
}

// circuitTransitions mirrors channelTransitions's shape for the circuit
// machine. The VersionResponse-too-low special case (§4.4) is handled in
// circuitStep, not this table, since it depends on the negotiated version
// value rather than just the command id.
var circuitTransitions = map[circuitKey]CircuitState{
	{ca.RoleClient, CircSendVersionRequest, ca.CMD_VERSION, ca.DirSend}:   CircAwaitVersionResponse,
	{ca.RoleClient, CircAwaitVersionResponse, ca.CMD_VERSION, ca.DirRecv}: CircConnected,

	{ca.RoleServer, CircAwaitVersionRequest, ca.CMD_VERSION, ca.DirRecv}: CircSendVersionResponse,
	{ca.RoleServer, CircSendVersionResponse, ca.CMD_VERSION, ca.DirSend}: CircConnected,
}

// circuitStep advances a circuit's per-role state machine. peerVersion is
// the version carried by a received VersionRequest/VersionResponse (callers
// pass 0 on send); it is consulted only for the VersionResponse-too-low rule.
func circuitStep(role ca.Role, current CircuitState, cmd ca.CommandID, dir ca.Direction, peerVersion uint16) (CircuitState, error) {
	if cmd == ca.CMD_ECHO && current == CircConnected {
		return CircConnected, nil
	}
	if current == CircAwaitVersionResponse && cmd == ca.CMD_VERSION && dir == ca.DirRecv && peerVersion < ca.MinProtocolVersion {
		return CircDisconnected, ca.NewRemoteProtocolError("peer negotiated protocol version %d below floor %d", peerVersion, ca.MinProtocolVersion)
	}
	next, ok := circuitTransitions[circuitKey{role, current, cmd, dir}]
	if !ok {
		if dir == ca.DirSend {
			return current, ca.NewLocalProtocolError("circuit in state %s cannot send %s", current, cmd)
		}
		return current, ca.NewRemoteProtocolError("circuit in state %s received unexpected %s", current, cmd)
	}
	return next, nil
}

// initialCircuitState is the starting state for a circuit's state machine
// for the given role, immediately after the transport connects.
func initialCircuitState(role ca.Role) CircuitState {
	if role == ca.RoleServer {
		return CircAwaitVersionRequest
	}
	return CircSendVersionRequest
}
