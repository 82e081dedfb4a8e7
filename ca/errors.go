package ca

import "fmt"

// Role identifies which side of a circuit or channel a state machine is
// tracking.
type Role int

// Defined roles.
const (
	RoleClient Role = iota
	RoleServer
)

// String returns the human readable role name.
func (sf Role) String() string {
	if sf == RoleServer {
		return "SERVER"
	}
	return "CLIENT"
}

// Direction describes whether a command is being sent or received by the
// state machine that is about to process it.
type Direction int

// Defined directions.
const (
	DirSend Direction = iota
	DirRecv
)

// String returns the human readable direction name.
func (sf Direction) String() string {
	if sf == DirRecv {
		return "RECV"
	}
	return "SEND"
}

// LocalProtocolError is raised synchronously by Send when the caller
// attempts a transition the local state machine rejects. State is left
// unchanged when this error is returned.
type LocalProtocolError struct {
	Msg string
}

func (sf *LocalProtocolError) Error() string {
	return "caproto: local protocol error: " + sf.Msg
}

// NewLocalProtocolError builds a LocalProtocolError with a formatted message.
func NewLocalProtocolError(format string, v ...interface{}) *LocalProtocolError {
	return &LocalProtocolError{Msg: fmt.Sprintf(format, v...)}
}

// RemoteProtocolError is raised by NextCommand when the peer violates the
// protocol. A rejected transition leaves the state machine in the state it
// was in; the one exception is a VersionResponse below the protocol floor,
// which moves the circuit to DISCONNECTED before this error is returned.
type RemoteProtocolError struct {
	Msg string
}

func (sf *RemoteProtocolError) Error() string {
	return "caproto: remote protocol error: " + sf.Msg
}

// NewRemoteProtocolError builds a RemoteProtocolError with a formatted message.
func NewRemoteProtocolError(format string, v ...interface{}) *RemoteProtocolError {
	return &RemoteProtocolError{Msg: fmt.Sprintf(format, v...)}
}

// ErrNeedData is a distinguished sentinel, not an error in the usual sense:
// it means the receive buffer does not yet hold a complete command. No
// state advances when it is returned.
var ErrNeedData = fmt.Errorf("caproto: need more data")

// Sentinel errors for malformed static data, not tied to any particular
// command instance.
var (
	ErrTypeNotMatch   = NewLocalProtocolError("data type does not match command")
	ErrBadEnum        = NewLocalProtocolError("unknown enum value for DBR field")
	ErrParam          = NewLocalProtocolError("invalid parameter")
	ErrUnknownCommand = &RemoteProtocolError{Msg: "unknown command id"}
)
