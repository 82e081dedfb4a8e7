// Package ca implements the EPICS Channel Access wire protocol: the fixed
// header, the DBR payload family, and the typed command objects built on
// top of them. The package performs no I/O; it only encodes and decodes
// byte buffers.
package ca

import "encoding/binary"

// HeaderSize is the length in bytes of the standard (non-extended) header.
const HeaderSize = 16

// ExtendedHeaderSize is the length in bytes of the header used when
// payload_size or data_count does not fit in 16 bits.
const ExtendedHeaderSize = 24

// extendedSentinel is the payload_size/data_count value that marks a header
// as carrying an extended 8-byte trailer.
const extendedSentinel = 0xFFFF

// MinProtocolVersion is the lowest protocol version this implementation
// will negotiate down to.
const MinProtocolVersion = 11

// ExtendedHeaderMinVersion is the minimum negotiated protocol version under
// which the extended header form is legal.
const ExtendedHeaderMinVersion = 13

// Header is the fixed-format record that precedes every command's payload
// on the wire. All fields are big-endian. See companion spec §3.
type Header struct {
	Command     uint16
	PayloadSize uint32
	DataType    uint16
	DataCount   uint32
	Parameter1  uint32
	Parameter2  uint32
}

// NeedsExtended reports whether this header must be serialized using the
// 24-byte extended form because PayloadSize or DataCount exceeds 0xFFFE
// (0xFFFF itself is reserved as the extended-header sentinel).
func (sf Header) NeedsExtended() bool {
	return sf.PayloadSize > 0xFFFE || sf.DataCount > 0xFFFE
}

// Encode writes the header to b in the standard or extended form,
// returning the number of bytes written. b must have capacity for
// HeaderSize or ExtendedHeaderSize bytes as appropriate.
func (sf Header) Encode(b []byte) int {
	binary.BigEndian.PutUint16(b[0:2], sf.Command)
	if sf.NeedsExtended() {
		b[2] = 0xFF
		b[3] = 0xFF
		binary.BigEndian.PutUint16(b[4:6], sf.DataType)
		binary.BigEndian.PutUint16(b[6:8], 0)
		binary.BigEndian.PutUint32(b[8:12], sf.Parameter1)
		binary.BigEndian.PutUint32(b[12:16], sf.Parameter2)
		binary.BigEndian.PutUint32(b[16:20], sf.PayloadSize)
		binary.BigEndian.PutUint32(b[20:24], sf.DataCount)
		return ExtendedHeaderSize
	}
	binary.BigEndian.PutUint16(b[2:4], uint16(sf.PayloadSize))
	binary.BigEndian.PutUint16(b[4:6], sf.DataType)
	binary.BigEndian.PutUint16(b[6:8], uint16(sf.DataCount))
	binary.BigEndian.PutUint32(b[8:12], sf.Parameter1)
	binary.BigEndian.PutUint32(b[12:16], sf.Parameter2)
	return HeaderSize
}

// DecodeHeader parses a header from the front of b. extendedAllowed must
// be true for the command and negotiated protocol version, or an extended
// sentinel is rejected as RemoteProtocolError. It returns the header, the
// number of bytes consumed, and an error.
//
// If fewer than HeaderSize bytes are available, (_, 0, ErrNeedData) is
// returned; the caller must not advance its buffer.
func DecodeHeader(b []byte, extendedAllowed bool) (Header, int, error) {
	if len(b) < HeaderSize {
		return Header{}, 0, ErrNeedData
	}
	h := Header{
		Command:    binary.BigEndian.Uint16(b[0:2]),
		PayloadSize: uint32(binary.BigEndian.Uint16(b[2:4])),
		DataType:   binary.BigEndian.Uint16(b[4:6]),
		DataCount:  uint32(binary.BigEndian.Uint16(b[6:8])),
		Parameter1: binary.BigEndian.Uint32(b[8:12]),
		Parameter2: binary.BigEndian.Uint32(b[12:16]),
	}
	if uint16(h.PayloadSize) != extendedSentinel || h.DataCount != 0 {
		return h, HeaderSize, nil
	}
	// Sentinel observed: this only denotes an extended header when the
	// command/version combination actually permits it.
	if !extendedAllowed {
		return Header{}, 0, NewRemoteProtocolError("extended header not permitted for command %d", h.Command)
	}
	if len(b) < ExtendedHeaderSize {
		return Header{}, 0, ErrNeedData
	}
	h.PayloadSize = binary.BigEndian.Uint32(b[16:20])
	h.DataCount = binary.BigEndian.Uint32(b[20:24])
	return h, ExtendedHeaderSize, nil
}

// PaddedSize rounds n up to the next multiple of align.
func PaddedSize(n, align int) int {
	if align <= 0 {
		return n
	}
	r := n % align
	if r == 0 {
		return n
	}
	return n + (align - r)
}
