package mqtt311

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribePacketType(t *testing.T) {
	p := &SubscribePacket{}
	assert.Equal(t, PacketSUBSCRIBE, p.Type())
}

func TestSubscribePacketEncodeDecode(t *testing.T) {
	p := &SubscribePacket{
		PacketID:    7,
		TopicFilter: "sensors/+/temp",
		QoS:         1,
	}

	var buf bytes.Buffer
	_, err := p.Encode(&buf)
	require.NoError(t, err)

	var header FixedHeader
	_, err = header.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, byte(0x02), header.Flags)

	var decoded SubscribePacket
	_, err = decoded.Decode(&buf, header)
	require.NoError(t, err)
	assert.Equal(t, *p, decoded)
}

func TestSubscribePacketWireFormat(t *testing.T) {
	p := &SubscribePacket{PacketID: 10, TopicFilter: "a/#", QoS: 1}

	var buf bytes.Buffer
	_, err := p.Encode(&buf)
	require.NoError(t, err)

	expected := []byte{
		0x82, 8, // SUBSCRIBE, remaining length
		0x00, 0x0A, // packet id
		0x00, 0x03, 'a', '/', '#', // topic filter
		0x01, // requested qos
	}
	assert.Equal(t, expected, buf.Bytes())
}

func TestSubscribePacketDecodeBadFlags(t *testing.T) {
	header := FixedHeader{PacketType: PacketSUBSCRIBE, Flags: 0x00, RemainingLength: 6}
	var decoded SubscribePacket
	_, err := decoded.Decode(bytes.NewReader(make([]byte, 6)), header)
	assert.ErrorIs(t, err, ErrInvalidPacketFlags)
}

func TestSubscribePacketValidate(t *testing.T) {
	tests := []struct {
		name    string
		packet  SubscribePacket
		wantErr error
	}{
		{
			name:   "valid",
			packet: SubscribePacket{PacketID: 1, TopicFilter: "t", QoS: 1},
		},
		{
			name:    "missing packet id",
			packet:  SubscribePacket{TopicFilter: "t"},
			wantErr: ErrPacketIDRequired,
		},
		{
			name:    "empty filter",
			packet:  SubscribePacket{PacketID: 1},
			wantErr: ErrTopicFilterEmpty,
		},
		{
			name:    "qos2 unsupported",
			packet:  SubscribePacket{PacketID: 1, TopicFilter: "t", QoS: 2},
			wantErr: ErrUnsupportedQoS,
		},
		{
			name:    "qos out of range",
			packet:  SubscribePacket{PacketID: 1, TopicFilter: "t", QoS: 3},
			wantErr: ErrInvalidQoS,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.packet.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
