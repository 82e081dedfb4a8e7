package ca

func init() {
	register(CMD_ERROR, decodeError)
	register(CMD_ECHO, decodeEcho)
	register(CMD_RSRV_IS_UP, decodeRsrvIsUp)
	register(CMD_REPEATER_REGISTER, decodeRepeaterRegister)
	register(CMD_REPEATER_CONFIRM, decodeRepeaterConfirm)
}

// ErrorResponse reports a server-side failure processing some earlier
// command. OriginalHeader replays the offending command's own header (not this
// response's), per §4.4; CID is the channel involved, if any, and Message
// is a NUL-terminated human readable string.
type ErrorResponse struct {
	OriginalHeader Header
	CID            uint32
	Status         uint32
	Message        string
}

func (sf ErrorResponse) ID() CommandID { return CMD_ERROR }

func (sf ErrorResponse) encode(_ uint16) (Header, Buffers, error) {
	msg := []byte(sf.Message)
	msg = append(msg, 0)
	replayed := make([]byte, HeaderSize)
	sf.OriginalHeader.Encode(replayed)
	b := append(replayed, msg...)
	h := Header{
		Command:     uint16(CMD_ERROR),
		PayloadSize: uint32(len(b)),
		Parameter1:  sf.CID,
		Parameter2:  sf.Status,
	}
	return h, Buffers{b}, nil
}

func decodeError(h Header, payload []byte, _ Role) (Command, error) {
	if len(payload) < HeaderSize {
		return nil, NewRemoteProtocolError("ERROR payload too short to carry a replayed header")
	}
	orig := Header{
		Command:     u16(payload[0:2]),
		PayloadSize: uint32(u16(payload[2:4])),
		DataType:    u16(payload[4:6]),
		DataCount:   uint32(u16(payload[6:8])),
		Parameter1:  u32(payload[8:12]),
		Parameter2:  u32(payload[12:16]),
	}
	return ErrorResponse{
		OriginalHeader: orig,
		CID:            h.Parameter1,
		Status:         h.Parameter2,
		Message:        decodeName(payload[HeaderSize:]),
	}, nil
}

// EchoCommand is a liveness probe. The same wire shape serves as both the
// request a peer sends and the response it expects back; callers
// distinguish direction from which side of a Send/Recv they're on, not
// from any field of this type.
type EchoCommand struct{}

func (sf EchoCommand) ID() CommandID { return CMD_ECHO }

func (sf EchoCommand) encode(_ uint16) (Header, Buffers, error) {
	return Header{Command: uint16(CMD_ECHO)}, nil, nil
}

func decodeEcho(_ Header, _ []byte, _ Role) (Command, error) {
	return EchoCommand{}, nil
}

// RsrvIsUpResponse is the periodic UDP beacon a server multicasts so
// clients can detect it coming up (or, via a changing beacon id, restarting)
// without waiting out a search timeout. See companion spec §5.
type RsrvIsUpResponse struct {
	ServerPort uint16
	BeaconID   uint32
	Address    uint32
	Version    uint16
}

func (sf RsrvIsUpResponse) ID() CommandID { return CMD_RSRV_IS_UP }

func (sf RsrvIsUpResponse) encode(_ uint16) (Header, Buffers, error) {
	h := Header{
		Command:    uint16(CMD_RSRV_IS_UP),
		DataType:   sf.ServerPort,
		DataCount:  uint32(sf.Version),
		Parameter1: sf.BeaconID,
		Parameter2: sf.Address,
	}
	return h, nil, nil
}

func decodeRsrvIsUp(h Header, _ []byte, _ Role) (Command, error) {
	return RsrvIsUpResponse{
		ServerPort: h.DataType,
		BeaconID:   h.Parameter1,
		Address:    h.Parameter2,
		Version:    uint16(h.DataCount),
	}, nil
}

// RepeaterRegisterRequest is sent by a client on loopback to the CA Repeater
// port to register for forwarded beacons. ClientPort is purely informational;
// the repeater identifies the registrant by source address.
type RepeaterRegisterRequest struct {
	ClientPort uint16
}

func (sf RepeaterRegisterRequest) ID() CommandID { return CMD_REPEATER_REGISTER }

func (sf RepeaterRegisterRequest) encode(_ uint16) (Header, Buffers, error) {
	return Header{Command: uint16(CMD_REPEATER_REGISTER), Parameter1: uint32(sf.ClientPort)}, nil, nil
}

func decodeRepeaterRegister(h Header, _ []byte, _ Role) (Command, error) {
	return RepeaterRegisterRequest{ClientPort: uint16(h.Parameter1)}, nil
}

// RepeaterConfirmResponse answers a RepeaterRegisterRequest, echoing the
// repeater's view of the registrant's address back to it.
type RepeaterConfirmResponse struct {
	Address uint32
}

func (sf RepeaterConfirmResponse) ID() CommandID { return CMD_REPEATER_CONFIRM }

func (sf RepeaterConfirmResponse) encode(_ uint16) (Header, Buffers, error) {
	return Header{Command: uint16(CMD_REPEATER_CONFIRM), Parameter2: sf.Address}, nil, nil
}

func decodeRepeaterConfirm(h Header, _ []byte, _ Role) (Command, error) {
	return RepeaterConfirmResponse{Address: h.Parameter2}, nil
}
