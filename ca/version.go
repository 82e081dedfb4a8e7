package ca

func init() {
	register(CMD_VERSION, decodeVersion)
}

// VersionRequest negotiates protocol version and announces the circuit's
// priority. Sent by the client as the first command on a new circuit, and
// by a client registering with the CA Repeater. See companion spec §6.
type VersionRequest struct {
	Priority uint16
	Version  uint16
}

func (sf VersionRequest) ID() CommandID { return CMD_VERSION }

func (sf VersionRequest) encode(_ uint16) (Header, Buffers, error) {
	return Header{Command: uint16(CMD_VERSION), DataType: sf.Priority, DataCount: uint32(sf.Version)}, nil, nil
}

// VersionResponse answers a VersionRequest with the server's negotiated
// protocol version.
type VersionResponse struct {
	Version uint16
}

func (sf VersionResponse) ID() CommandID { return CMD_VERSION }

func (sf VersionResponse) encode(_ uint16) (Header, Buffers, error) {
	return Header{Command: uint16(CMD_VERSION), DataCount: uint32(sf.Version)}, nil, nil
}

func decodeVersion(h Header, _ []byte, peerRole Role) (Command, error) {
	if peerRole == RoleClient {
		return VersionRequest{Priority: h.DataType, Version: uint16(h.DataCount)}, nil
	}
	return VersionResponse{Version: uint16(h.DataCount)}, nil
}
