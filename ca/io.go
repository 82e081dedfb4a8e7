package ca

func init() {
	register(CMD_READ, decodeRead)
	register(CMD_READ_NOTIFY, decodeReadNotify)
	register(CMD_WRITE, decodeWrite)
	register(CMD_WRITE_NOTIFY, decodeWriteNotify)
}

// ReadRequest is the deprecated (pre-v13) read command. See companion
// spec §9 open question: it must be decodable but is never initiated by
// this implementation.
type ReadRequest struct {
	DataType FieldType
	Count    uint32
	SID      uint32
	IOID     uint32
}

func (sf ReadRequest) ID() CommandID { return CMD_READ }

func (sf ReadRequest) encode(_ uint16) (Header, Buffers, error) {
	h := Header{Command: uint16(CMD_READ), DataType: uint16(sf.DataType), DataCount: sf.Count, Parameter1: sf.SID, Parameter2: sf.IOID}
	return h, nil, nil
}

// ReadResponse is the deprecated (pre-v13) read reply, carrying no status
// or correlation beyond the fields echoed from the request.
type ReadResponse struct {
	DataType FieldType
	Count    uint32
	Data     ElementsView
}

func (sf ReadResponse) ID() CommandID { return CMD_READ }

func (sf ReadResponse) encode(_ uint16) (Header, Buffers, error) {
	h := Header{Command: uint16(CMD_READ), DataType: uint16(sf.DataType), DataCount: sf.Count}
	return h, Buffers{sf.Data.Bytes()}, nil
}

func decodeRead(h Header, payload []byte, peerRole Role) (Command, error) {
	ft := FieldType(h.DataType)
	if peerRole == RoleClient {
		return ReadRequest{DataType: ft, Count: h.DataCount, SID: h.Parameter1, IOID: h.Parameter2}, nil
	}
	view, err := DecodeElementsView(nativeOrZero(ft), int(h.DataCount), payload)
	if err != nil {
		return nil, err
	}
	return ReadResponse{DataType: ft, Count: h.DataCount, Data: view}, nil
}

// ReadNotifyRequest asks the server to read a channel's current value and
// reply with a correlated ReadNotifyResponse. See companion spec §8
// scenario 4.
type ReadNotifyRequest struct {
	DataType FieldType
	Count    uint32
	SID      uint32
	IOID     uint32
}

func (sf ReadNotifyRequest) ID() CommandID { return CMD_READ_NOTIFY }

func (sf ReadNotifyRequest) encode(_ uint16) (Header, Buffers, error) {
	h := Header{Command: uint16(CMD_READ_NOTIFY), DataType: uint16(sf.DataType), DataCount: sf.Count, Parameter1: sf.SID, Parameter2: sf.IOID}
	return h, nil, nil
}

// ReadNotifyResponse answers a ReadNotifyRequest, identified by IOID.
type ReadNotifyResponse struct {
	DataType FieldType
	Count    uint32
	Status   uint32
	IOID     uint32
	Data     ElementsView
}

func (sf ReadNotifyResponse) ID() CommandID { return CMD_READ_NOTIFY }

func (sf ReadNotifyResponse) encode(_ uint16) (Header, Buffers, error) {
	h := Header{
		Command:     uint16(CMD_READ_NOTIFY),
		DataType:    uint16(sf.DataType),
		DataCount:   sf.Count,
		PayloadSize: uint32(len(sf.Data.Bytes())),
		Parameter1:  sf.Status,
		Parameter2:  sf.IOID,
	}
	return h, Buffers{sf.Data.Bytes()}, nil
}

func decodeReadNotify(h Header, payload []byte, peerRole Role) (Command, error) {
	ft := FieldType(h.DataType)
	if peerRole == RoleClient {
		return ReadNotifyRequest{DataType: ft, Count: h.DataCount, SID: h.Parameter1, IOID: h.Parameter2}, nil
	}
	view, err := DecodeElementsView(nativeOrZero(ft), int(h.DataCount), payload)
	if err != nil {
		return nil, err
	}
	return ReadNotifyResponse{DataType: ft, Count: h.DataCount, Status: h.Parameter1, IOID: h.Parameter2, Data: view}, nil
}

// WriteRequest sets a channel's value without requesting acknowledgement.
type WriteRequest struct {
	DataType FieldType
	Count    uint32
	SID      uint32
	Data     ElementsView
}

func (sf WriteRequest) ID() CommandID { return CMD_WRITE }

func (sf WriteRequest) encode(_ uint16) (Header, Buffers, error) {
	h := Header{
		Command:     uint16(CMD_WRITE),
		DataType:    uint16(sf.DataType),
		DataCount:   sf.Count,
		PayloadSize: uint32(len(sf.Data.Bytes())),
		Parameter1:  sf.SID,
	}
	return h, Buffers{sf.Data.Bytes()}, nil
}

func decodeWrite(h Header, payload []byte, _ Role) (Command, error) {
	ft := FieldType(h.DataType)
	view, err := DecodeElementsView(nativeOrZero(ft), int(h.DataCount), payload)
	if err != nil {
		return nil, err
	}
	return WriteRequest{DataType: ft, Count: h.DataCount, SID: h.Parameter1, Data: view}, nil
}

// WriteNotifyRequest sets a channel's value and asks for a correlated
// acknowledgement. See companion spec §8 scenario 6 (extended header).
type WriteNotifyRequest struct {
	DataType FieldType
	Count    uint32
	SID      uint32
	IOID     uint32
	Data     ElementsView
}

func (sf WriteNotifyRequest) ID() CommandID { return CMD_WRITE_NOTIFY }

func (sf WriteNotifyRequest) encode(_ uint16) (Header, Buffers, error) {
	h := Header{
		Command:     uint16(CMD_WRITE_NOTIFY),
		DataType:    uint16(sf.DataType),
		DataCount:   sf.Count,
		PayloadSize: uint32(len(sf.Data.Bytes())),
		Parameter1:  sf.SID,
		Parameter2:  sf.IOID,
	}
	return h, Buffers{sf.Data.Bytes()}, nil
}

// WriteNotifyResponse answers a WriteNotifyRequest, identified by IOID.
type WriteNotifyResponse struct {
	DataType FieldType
	Count    uint32
	Status   uint32
	IOID     uint32
}

func (sf WriteNotifyResponse) ID() CommandID { return CMD_WRITE_NOTIFY }

func (sf WriteNotifyResponse) encode(_ uint16) (Header, Buffers, error) {
	h := Header{
		Command:    uint16(CMD_WRITE_NOTIFY),
		DataType:   uint16(sf.DataType),
		DataCount:  sf.Count,
		Parameter1: sf.Status,
		Parameter2: sf.IOID,
	}
	return h, nil, nil
}

func decodeWriteNotify(h Header, payload []byte, peerRole Role) (Command, error) {
	ft := FieldType(h.DataType)
	if peerRole == RoleClient {
		view, err := DecodeElementsView(nativeOrZero(ft), int(h.DataCount), payload)
		if err != nil {
			return nil, err
		}
		return WriteNotifyRequest{DataType: ft, Count: h.DataCount, SID: h.Parameter1, IOID: h.Parameter2, Data: view}, nil
	}
	return WriteNotifyResponse{DataType: ft, Count: h.DataCount, Status: h.Parameter1, IOID: h.Parameter2}, nil
}

// nativeOrZero strips augmentation for array decoding; unrecognized types
// default to the zero native type rather than erroring the whole decode,
// since a malformed data_type is reported by the caller once it tries to
// use the returned view.
func nativeOrZero(ft FieldType) FieldType {
	if native, err := ft.NativeType(); err == nil {
		return native
	}
	return DBR_STRING
}
