package ca

func init() {
	register(CMD_HOST_NAME, decodeHostName)
	register(CMD_CLIENT_NAME, decodeClientName)
	register(CMD_CREATE_CHAN, decodeCreateChan)
	register(CMD_CREATE_CH_FAIL, decodeCreateChFail)
	register(CMD_CLEAR_CHANNEL, decodeClearChannel)
	register(CMD_ACCESS_RIGHTS, decodeAccessRights)
	register(CMD_SERVER_DISCONN, decodeServerDisconn)
}

// AccessRights bitfield.
const (
	AccessRead  uint32 = 1
	AccessWrite uint32 = 2
)

// HostNameRequest announces the client's hostname, for server-side logging
// and access-control decisions. REQUEST-only.
type HostNameRequest struct {
	Name string
}

func (sf HostNameRequest) ID() CommandID { return CMD_HOST_NAME }

func (sf HostNameRequest) encode(_ uint16) (Header, Buffers, error) {
	b := encodeName(sf.Name)
	h := Header{Command: uint16(CMD_HOST_NAME), PayloadSize: uint32(len(b)), DataType: 0, DataCount: 1}
	return h, Buffers{b}, nil
}

func decodeHostName(_ Header, payload []byte, _ Role) (Command, error) {
	return HostNameRequest{Name: decodeName(payload)}, nil
}

// ClientNameRequest announces the client's user name. REQUEST-only.
type ClientNameRequest struct {
	Name string
}

func (sf ClientNameRequest) ID() CommandID { return CMD_CLIENT_NAME }

func (sf ClientNameRequest) encode(_ uint16) (Header, Buffers, error) {
	b := encodeName(sf.Name)
	h := Header{Command: uint16(CMD_CLIENT_NAME), PayloadSize: uint32(len(b)), DataType: 0, DataCount: 1}
	return h, Buffers{b}, nil
}

func decodeClientName(_ Header, payload []byte, _ Role) (Command, error) {
	return ClientNameRequest{Name: decodeName(payload)}, nil
}

// CreateChanRequest asks the server to open a channel. Allocates CID on
// the client side. See companion spec §8 scenario 3.
type CreateChanRequest struct {
	Name    string
	CID     uint32
	Version uint16
}

func (sf CreateChanRequest) ID() CommandID { return CMD_CREATE_CHAN }

func (sf CreateChanRequest) encode(_ uint16) (Header, Buffers, error) {
	if len(sf.Name) == 0 {
		return Header{}, nil, NewLocalProtocolError("CreateChanRequest requires a non-empty name")
	}
	b := encodeName(sf.Name)
	h := Header{
		Command:     uint16(CMD_CREATE_CHAN),
		PayloadSize: uint32(len(b)),
		DataCount:   uint32(sf.Version),
		Parameter1:  sf.CID,
	}
	return h, Buffers{b}, nil
}

func decodeCreateChan(h Header, payload []byte, peerRole Role) (Command, error) {
	if peerRole == RoleClient {
		return CreateChanRequest{Name: decodeName(payload), CID: h.Parameter1, Version: uint16(h.DataCount)}, nil
	}
	return CreateChanResponse{
		DataType: FieldType(h.DataType),
		Count:    h.DataCount,
		CID:      h.Parameter1,
		SID:      h.Parameter2,
	}, nil
}

// CreateChanResponse confirms channel creation, allocating SID on the
// server side and reporting the channel's native type/count.
type CreateChanResponse struct {
	DataType FieldType
	Count    uint32
	CID      uint32
	SID      uint32
}

func (sf CreateChanResponse) ID() CommandID { return CMD_CREATE_CHAN }

func (sf CreateChanResponse) encode(_ uint16) (Header, Buffers, error) {
	h := Header{
		Command:    uint16(CMD_CREATE_CHAN),
		DataType:   uint16(sf.DataType),
		DataCount:  sf.Count,
		Parameter1: sf.CID,
		Parameter2: sf.SID,
	}
	return h, nil, nil
}

// CreateChFailResponse tells the client that channel creation failed (the
// name does not exist on this server). Moves the client channel FSM to
// FAILED.
type CreateChFailResponse struct {
	CID uint32
}

func (sf CreateChFailResponse) ID() CommandID { return CMD_CREATE_CH_FAIL }

func (sf CreateChFailResponse) encode(_ uint16) (Header, Buffers, error) {
	return Header{Command: uint16(CMD_CREATE_CH_FAIL), Parameter1: sf.CID}, nil, nil
}

func decodeCreateChFail(h Header, _ []byte, _ Role) (Command, error) {
	return CreateChFailResponse{CID: h.Parameter1}, nil
}

// ClearChannelRequest asks the server to destroy a channel. ClearChannelResponse
// mirrors the same fields back once torn down.
type ClearChannelRequest struct {
	CID uint32
	SID uint32
}

func (sf ClearChannelRequest) ID() CommandID { return CMD_CLEAR_CHANNEL }

func (sf ClearChannelRequest) encode(_ uint16) (Header, Buffers, error) {
	return Header{Command: uint16(CMD_CLEAR_CHANNEL), Parameter1: sf.CID, Parameter2: sf.SID}, nil, nil
}

// ClearChannelResponse confirms a ClearChannelRequest.
type ClearChannelResponse struct {
	CID uint32
	SID uint32
}

func (sf ClearChannelResponse) ID() CommandID { return CMD_CLEAR_CHANNEL }

func (sf ClearChannelResponse) encode(_ uint16) (Header, Buffers, error) {
	return Header{Command: uint16(CMD_CLEAR_CHANNEL), Parameter1: sf.CID, Parameter2: sf.SID}, nil, nil
}

func decodeClearChannel(h Header, _ []byte, peerRole Role) (Command, error) {
	if peerRole == RoleClient {
		return ClearChannelRequest{CID: h.Parameter1, SID: h.Parameter2}, nil
	}
	return ClearChannelResponse{CID: h.Parameter1, SID: h.Parameter2}, nil
}

// AccessRightsResponse refreshes a channel's access rights. Permitted in
// any CONNECTED channel state as a metadata-only update; see §4.3.
type AccessRightsResponse struct {
	CID          uint32
	AccessRights uint32
}

func (sf AccessRightsResponse) ID() CommandID { return CMD_ACCESS_RIGHTS }

func (sf AccessRightsResponse) encode(_ uint16) (Header, Buffers, error) {
	return Header{Command: uint16(CMD_ACCESS_RIGHTS), Parameter1: sf.CID, Parameter2: sf.AccessRights}, nil, nil
}

func decodeAccessRights(h Header, _ []byte, _ Role) (Command, error) {
	return AccessRightsResponse{CID: h.Parameter1, AccessRights: h.Parameter2}, nil
}

// ServerDisconnResponse tells the client that the server is unilaterally
// closing one channel (e.g. the underlying record was removed).
type ServerDisconnResponse struct {
	CID uint32
}

func (sf ServerDisconnResponse) ID() CommandID { return CMD_SERVER_DISCONN }

func (sf ServerDisconnResponse) encode(_ uint16) (Header, Buffers, error) {
	return Header{Command: uint16(CMD_SERVER_DISCONN), Parameter1: sf.CID}, nil, nil
}

func decodeServerDisconn(h Header, _ []byte, _ Role) (Command, error) {
	return ServerDisconnResponse{CID: h.Parameter1}, nil
}
