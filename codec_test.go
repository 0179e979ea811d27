package mqtt311

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWritePacket(t *testing.T) {
	tests := []struct {
		name   string
		packet Packet
	}{
		{
			name:   "connect",
			packet: &ConnectPacket{ClientID: "c", CleanSession: true, KeepAlive: 60},
		},
		{
			name:   "connack",
			packet: &ConnackPacket{SessionPresent: true},
		},
		{
			name:   "publish qos1",
			packet: &PublishPacket{Topic: "t", Payload: []byte("p"), QoS: 1, PacketID: 3},
		},
		{
			name:   "puback",
			packet: &PubackPacket{PacketID: 3},
		},
		{
			name:   "subscribe",
			packet: &SubscribePacket{PacketID: 4, TopicFilter: "t/#", QoS: 1},
		},
		{
			name:   "suback",
			packet: &SubackPacket{PacketID: 4, ReturnCode: SubackGrantedQoS1},
		},
		{
			name:   "pingreq",
			packet: &PingreqPacket{},
		},
		{
			name:   "disconnect",
			packet: &DisconnectPacket{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			n, err := WritePacket(&buf, tt.packet, 0)
			require.NoError(t, err)
			assert.Equal(t, buf.Len(), n)

			decoded, n2, err := ReadPacket(&buf, 0)
			require.NoError(t, err)
			assert.Equal(t, n, n2)
			assert.Equal(t, tt.packet, decoded)
		})
	}
}

func TestReadPacketTooLarge(t *testing.T) {
	var buf bytes.Buffer
	pkt := &PublishPacket{Topic: "t", Payload: bytes.Repeat([]byte{0x01}, 100)}
	_, err := WritePacket(&buf, pkt, 0)
	require.NoError(t, err)

	_, _, err = ReadPacket(&buf, 10)
	assert.ErrorIs(t, err, ErrPacketTooLarge)
}

func TestWritePacketTooLarge(t *testing.T) {
	var buf bytes.Buffer
	pkt := &PublishPacket{Topic: "t", Payload: bytes.Repeat([]byte{0x01}, 100)}
	_, err := WritePacket(&buf, pkt, 10)
	assert.ErrorIs(t, err, ErrPacketTooLarge)
	assert.Zero(t, buf.Len())
}

func TestWritePacketValidates(t *testing.T) {
	var buf bytes.Buffer
	_, err := WritePacket(&buf, &PublishPacket{Topic: "t", QoS: 2, PacketID: 1}, 0)
	assert.ErrorIs(t, err, ErrUnsupportedQoS)
	assert.Zero(t, buf.Len())
}

func TestReadPacketUnexpectedControl(t *testing.T) {
	// A PUBREL belongs to the QoS 2 flow this client never runs. It
	// must come back as a raw packet with its body fully consumed.
	wire := []byte{0x62, 0x02, 0x00, 0x09}
	r := bytes.NewReader(wire)

	pkt, _, err := ReadPacket(r, 0)
	require.NoError(t, err)

	raw, ok := pkt.(*RawPacket)
	require.True(t, ok, "expected raw packet, got %T", pkt)
	assert.Equal(t, PacketPUBREL, raw.Type())
	assert.Equal(t, []byte{0x00, 0x09}, raw.Body)
	assert.Zero(t, r.Len(), "body must be fully consumed")
}

func TestReadPacketZeroType(t *testing.T) {
	_, _, err := ReadPacket(bytes.NewReader([]byte{0x00, 0x00}), 0)
	assert.ErrorIs(t, err, ErrInvalidPacketType)
}
