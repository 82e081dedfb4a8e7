package ca

func init() {
	register(CMD_SEARCH, decodeSearch)
	register(CMD_NOT_FOUND, decodeNotFound)
}

// Reply flags used in SearchRequest.Reply.
const (
	SearchReplyNo  uint16 = 5  // DONTREPLY/NO_REPLY: server answers only on success
	SearchReplyYes uint16 = 10 // DOREPLY: server answers either way
)

// SearchRequest asks whether a channel of the given Name exists anywhere
// on the network. Broadcast on UDP; Name is NUL-padded to an 8-byte
// boundary. See companion spec §8 scenario 2.
type SearchRequest struct {
	CID     uint32
	Name    string
	Version uint16
	Reply   uint16
}

func (sf SearchRequest) ID() CommandID { return CMD_SEARCH }

func (sf SearchRequest) encode(_ uint16) (Header, Buffers, error) {
	if len(sf.Name) > 40 {
		return Header{}, nil, NewLocalProtocolError("search name %q exceeds 40 characters", sf.Name)
	}
	nameBuf := encodeName(sf.Name)
	h := Header{
		Command:     uint16(CMD_SEARCH),
		PayloadSize: uint32(len(nameBuf)),
		DataType:    sf.Reply,
		DataCount:   uint32(sf.Version),
		Parameter1:  sf.CID,
		Parameter2:  sf.CID,
	}
	return h, Buffers{nameBuf}, nil
}

// SearchResponse answers a matching SearchRequest. Address==0xFFFFFFFF
// means "use the address this datagram arrived from".
type SearchResponse struct {
	Port    uint16
	Address uint32
	CID     uint32
	Version uint16
}

func (sf SearchResponse) ID() CommandID { return CMD_SEARCH }

func (sf SearchResponse) encode(_ uint16) (Header, Buffers, error) {
	versionBuf := make([]byte, 8)
	versionBuf[0] = byte(sf.Version >> 8)
	versionBuf[1] = byte(sf.Version)
	h := Header{
		Command:     uint16(CMD_SEARCH),
		PayloadSize: uint32(len(versionBuf)),
		DataType:    sf.Port,
		DataCount:   0,
		Parameter1:  sf.CID,
		Parameter2:  sf.Address,
	}
	return h, Buffers{versionBuf}, nil
}

func decodeSearch(h Header, payload []byte, peerRole Role) (Command, error) {
	if peerRole == RoleClient {
		return SearchRequest{
			CID:     h.Parameter1,
			Name:    decodeName(payload),
			Version: uint16(h.DataCount),
			Reply:   h.DataType,
		}, nil
	}
	var version uint16
	if len(payload) >= 2 {
		version = u16(payload[0:2])
	}
	return SearchResponse{
		Port:    h.DataType,
		Address: h.Parameter2,
		CID:     h.Parameter1,
		Version: version,
	}, nil
}

// NotFoundResponse answers a SearchRequest whose name is unknown. Only
// sent when the requester asked for a reply either way (SearchReplyYes).
type NotFoundResponse struct {
	CID     uint32
	Version uint16
}

func (sf NotFoundResponse) ID() CommandID { return CMD_NOT_FOUND }

func (sf NotFoundResponse) encode(_ uint16) (Header, Buffers, error) {
	h := Header{
		Command:    uint16(CMD_NOT_FOUND),
		DataCount:  uint32(sf.Version),
		Parameter1: sf.CID,
		Parameter2: sf.CID,
	}
	return h, nil, nil
}

func decodeNotFound(h Header, _ []byte, _ Role) (Command, error) {
	return NotFoundResponse{CID: h.Parameter1, Version: uint16(h.DataCount)}, nil
}
