package ca

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTripStandard(t *testing.T) {
	cases := []Header{
		{Command: uint16(CMD_SEARCH), PayloadSize: 16, DataType: 10, DataCount: 13, Parameter1: 7, Parameter2: 7},
		{Command: uint16(CMD_VERSION), DataType: 0, DataCount: 13},
		{Command: uint16(CMD_CREATE_CHAN), PayloadSize: 8, DataCount: 13, Parameter1: 42},
	}
	for _, h := range cases {
		b := make([]byte, ExtendedHeaderSize)
		n := h.Encode(b)
		require.Equal(t, HeaderSize, n)

		got, consumed, err := DecodeHeader(b, true)
		require.NoError(t, err)
		require.Equal(t, HeaderSize, consumed)
		require.Equal(t, h, got)
	}
}

func TestHeaderRoundTripExtended(t *testing.T) {
	h := Header{
		Command:     uint16(CMD_WRITE_NOTIFY),
		PayloadSize: 200000 * 8,
		DataType:    uint16(DBR_FLOAT64),
		DataCount:   200000,
		Parameter1:  99,
		Parameter2:  1234,
	}
	require.True(t, h.NeedsExtended())

	b := make([]byte, ExtendedHeaderSize)
	n := h.Encode(b)
	require.Equal(t, ExtendedHeaderSize, n)

	got, consumed, err := DecodeHeader(b, true)
	require.NoError(t, err)
	require.Equal(t, ExtendedHeaderSize, consumed)
	require.Equal(t, h, got)
}

func TestDecodeHeaderRejectsExtendedWhenNotAllowed(t *testing.T) {
	h := Header{
		Command:     uint16(CMD_WRITE_NOTIFY),
		PayloadSize: 200000 * 8,
		DataCount:   200000,
	}
	b := make([]byte, ExtendedHeaderSize)
	h.Encode(b)

	_, _, err := DecodeHeader(b, false)
	var rpe *RemoteProtocolError
	require.ErrorAs(t, err, &rpe)
}

func TestDecodeHeaderNeedsData(t *testing.T) {
	_, _, err := DecodeHeader(make([]byte, 4), true)
	require.Equal(t, ErrNeedData, err)

	h := Header{
		Command:     uint16(CMD_WRITE_NOTIFY),
		PayloadSize: 200000 * 8,
		DataCount:   200000,
	}
	b := make([]byte, ExtendedHeaderSize)
	h.Encode(b)
	_, _, err = DecodeHeader(b[:HeaderSize], true)
	require.Equal(t, ErrNeedData, err)
}

func TestPaddedSize(t *testing.T) {
	cases := []struct{ n, align, want int }{
		{0, 8, 0},
		{1, 8, 8},
		{8, 8, 8},
		{9, 8, 16},
		{5, 0, 5},
	}
	for _, c := range cases {
		require.Equal(t, c.want, PaddedSize(c.n, c.align))
	}
}
