package mqtt311

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacketTypeString(t *testing.T) {
	assert.Equal(t, "CONNECT", PacketCONNECT.String())
	assert.Equal(t, "PUBLISH", PacketPUBLISH.String())
	assert.Equal(t, "DISCONNECT", PacketDISCONNECT.String())
	assert.Equal(t, "UNKNOWN", PacketType(0).String())
	assert.Equal(t, "UNKNOWN", PacketType(15).String())
}

func TestPacketTypeValid(t *testing.T) {
	assert.False(t, PacketType(0).Valid())
	assert.True(t, PacketCONNECT.Valid())
	assert.True(t, PacketDISCONNECT.Valid())
	assert.False(t, PacketType(15).Valid())
}

func TestFixedHeaderEncodeDecode(t *testing.T) {
	tests := []struct {
		name   string
		header FixedHeader
	}{
		{
			name:   "connect",
			header: FixedHeader{PacketType: PacketCONNECT, RemainingLength: 12},
		},
		{
			name:   "publish with flags",
			header: FixedHeader{PacketType: PacketPUBLISH, Flags: 0x0B, RemainingLength: 300},
		},
		{
			name:   "subscribe",
			header: FixedHeader{PacketType: PacketSUBSCRIBE, Flags: 0x02, RemainingLength: 8},
		},
		{
			name:   "max remaining length",
			header: FixedHeader{PacketType: PacketPUBLISH, RemainingLength: maxVarint},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			n, err := tt.header.Encode(&buf)
			require.NoError(t, err)
			assert.Equal(t, tt.header.Size(), n)

			var decoded FixedHeader
			n2, err := decoded.Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, n, n2)
			assert.Equal(t, tt.header, decoded)
		})
	}
}

func TestFixedHeaderEncodeInvalidType(t *testing.T) {
	h := FixedHeader{PacketType: PacketType(15)}
	var buf bytes.Buffer
	_, err := h.Encode(&buf)
	assert.ErrorIs(t, err, ErrInvalidPacketType)
}

func TestFixedHeaderDecodeInvalidType(t *testing.T) {
	var h FixedHeader
	_, err := h.Decode(bytes.NewReader([]byte{0x00, 0x00}))
	assert.ErrorIs(t, err, ErrInvalidPacketType)
}

func TestFixedHeaderSetFirstByte(t *testing.T) {
	var h FixedHeader
	h.SetFirstByte(0x3B)
	assert.Equal(t, PacketPUBLISH, h.PacketType)
	assert.Equal(t, byte(0x0B), h.Flags)
	assert.True(t, h.DUP())
	assert.Equal(t, byte(1), h.QoS())
	assert.True(t, h.Retain())
}
