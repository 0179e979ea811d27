package mqtt311

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubackPacketType(t *testing.T) {
	p := &SubackPacket{}
	assert.Equal(t, PacketSUBACK, p.Type())
}

func TestSubackPacketEncodeDecode(t *testing.T) {
	tests := []struct {
		name   string
		packet SubackPacket
	}{
		{name: "granted qos0", packet: SubackPacket{PacketID: 1, ReturnCode: SubackGrantedQoS0}},
		{name: "granted qos1", packet: SubackPacket{PacketID: 2, ReturnCode: SubackGrantedQoS1}},
		{name: "failure", packet: SubackPacket{PacketID: 3, ReturnCode: SubackFailure}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			_, err := tt.packet.Encode(&buf)
			require.NoError(t, err)

			var header FixedHeader
			_, err = header.Decode(&buf)
			require.NoError(t, err)

			var decoded SubackPacket
			_, err = decoded.Decode(&buf, header)
			require.NoError(t, err)
			assert.Equal(t, tt.packet, decoded)
		})
	}
}

func TestSubackPacketWireFormat(t *testing.T) {
	p := &SubackPacket{PacketID: 5, ReturnCode: SubackGrantedQoS1}

	var buf bytes.Buffer
	_, err := p.Encode(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x90, 0x03, 0x00, 0x05, 0x01}, buf.Bytes())
}

func TestSubackPacketDecodeWrongLength(t *testing.T) {
	header := FixedHeader{PacketType: PacketSUBACK, RemainingLength: 4}
	var decoded SubackPacket
	_, err := decoded.Decode(bytes.NewReader(make([]byte, 4)), header)
	assert.ErrorIs(t, err, ErrSubackMalformed)
}

func TestSubackPacketGranted(t *testing.T) {
	assert.True(t, (&SubackPacket{ReturnCode: SubackGrantedQoS0}).Granted())
	assert.True(t, (&SubackPacket{ReturnCode: SubackGrantedQoS2}).Granted())
	assert.False(t, (&SubackPacket{ReturnCode: SubackFailure}).Granted())
	assert.False(t, (&SubackPacket{ReturnCode: 0x03}).Granted())
}
