package ca

import "encoding/binary"

// Command is implemented by every typed CA protocol message. Concrete
// types live in version.go, search.go, channel.go, io.go, event.go and
// misc.go.
type Command interface {
	// ID returns the wire command_id for this variant.
	ID() CommandID
}

// Buffers is the result of encoding a Command: 1-3 byte slices to be
// written, in order, to the transport. The caller MUST NOT reorder them
// but MAY coalesce them into a single write.
type Buffers [][]byte

// encoder is implemented by concrete command types able to serialize
// themselves. version must be the circuit's negotiated protocol version,
// used to decide whether the extended header form is legal.
type encoder interface {
	Command
	encode(version uint16) (Header, Buffers, error)
}

// Encode serializes cmd against the given negotiated protocol version.
func Encode(cmd Command, version uint16) (Buffers, error) {
	enc, ok := cmd.(encoder)
	if !ok {
		return nil, NewLocalProtocolError("%T cannot be encoded", cmd)
	}
	h, bufs, err := enc.encode(version)
	if err != nil {
		return nil, err
	}
	if h.NeedsExtended() {
		if !cmd.ID().AllowsExtendedHeader() {
			return nil, NewLocalProtocolError("%s payload too large for a 16-bit header", cmd.ID())
		}
		if version < ExtendedHeaderMinVersion {
			return nil, NewLocalProtocolError("extended header requires protocol version >= %d, have %d", ExtendedHeaderMinVersion, version)
		}
	}
	hb := make([]byte, ExtendedHeaderSize)
	n := h.Encode(hb)
	out := make(Buffers, 0, len(bufs)+1)
	out = append(out, hb[:n])
	out = append(out, bufs...)
	return out, nil
}

// decodeFunc builds a Command from an already-parsed header and a payload
// slice (metadata + data, not the header bytes). peerRole is the role of
// whichever side sent this command on the wire.
type decodeFunc func(h Header, payload []byte, peerRole Role) (Command, error)

var decoders = map[CommandID]decodeFunc{}

func register(id CommandID, fn decodeFunc) {
	decoders[id] = fn
}

// DecodeCommand parses a command body given its already-decoded header and
// the peer's role (the role of whoever sent this command; for a circuit
// with OurRole==CLIENT, peerRole is RoleServer, and vice versa).
func DecodeCommand(h Header, payload []byte, peerRole Role) (Command, error) {
	fn, ok := decoders[CommandID(h.Command)]
	if !ok {
		return nil, NewRemoteProtocolError("unknown command id %d", h.Command)
	}
	return fn(h, payload, peerRole)
}

// nameFieldSize returns the padded size of a NUL-terminated name field of
// length n, rounded up to a multiple of 8 as required by §4.1.
func nameFieldSize(n int) int {
	if n == 0 {
		return 8
	}
	return PaddedSize(n+1, 8)
}

func encodeName(name string) []byte {
	b := make([]byte, nameFieldSize(len(name)))
	copy(b, name)
	return b
}

func decodeName(b []byte) string {
	i := 0
	for i < len(b) && b[i] != 0 {
		i++
	}
	return string(b[:i])
}

func u16(b []byte) uint16 { return binary.BigEndian.Uint16(b) }
func u32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }
