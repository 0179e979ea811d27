package mqtt311

import (
	"bytes"
	"errors"
	"io"
)

// ErrTopicFilterEmpty is returned when a SUBSCRIBE packet carries an
// empty topic filter.
var ErrTopicFilterEmpty = errors.New("topic filter cannot be empty")

// subscribeFlags is the fixed header flags value mandated for SUBSCRIBE.
const subscribeFlags = 0x02

// SubscribePacket represents an MQTT SUBSCRIBE packet carrying a single
// topic filter.
type SubscribePacket struct {
	// PacketID is the packet identifier.
	PacketID uint16

	// TopicFilter is the topic filter to subscribe to.
	TopicFilter string

	// QoS is the maximum QoS level requested for the subscription.
	QoS byte
}

// Type returns the packet type.
func (p *SubscribePacket) Type() PacketType {
	return PacketSUBSCRIBE
}

// Encode writes the packet to the writer.
func (p *SubscribePacket) Encode(w io.Writer) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}

	var buf bytes.Buffer

	// Packet Identifier
	buf.Write([]byte{byte(p.PacketID >> 8), byte(p.PacketID)})

	// Topic Filter
	if _, err := encodeString(&buf, p.TopicFilter); err != nil {
		return 0, err
	}

	// Requested QoS
	buf.WriteByte(p.QoS)

	// Write fixed header
	header := FixedHeader{
		PacketType:      PacketSUBSCRIBE,
		Flags:           subscribeFlags,
		RemainingLength: uint32(buf.Len()),
	}

	total, err := header.Encode(w)
	if err != nil {
		return total, err
	}

	n, err := w.Write(buf.Bytes())
	return total + n, err
}

// Decode reads the packet from the reader.
func (p *SubscribePacket) Decode(r io.Reader, header FixedHeader) (int, error) {
	if header.PacketType != PacketSUBSCRIBE {
		return 0, ErrInvalidPacketType
	}
	if header.Flags != subscribeFlags {
		return 0, ErrInvalidPacketFlags
	}

	var totalRead int

	// Packet Identifier
	var idBuf [2]byte
	n, err := io.ReadFull(r, idBuf[:])
	totalRead += n
	if err != nil {
		return totalRead, err
	}
	p.PacketID = uint16(idBuf[0])<<8 | uint16(idBuf[1])

	// Topic Filter
	p.TopicFilter, n, err = decodeString(r)
	totalRead += n
	if err != nil {
		return totalRead, err
	}

	// Requested QoS
	var qosBuf [1]byte
	n, err = io.ReadFull(r, qosBuf[:])
	totalRead += n
	if err != nil {
		return totalRead, err
	}
	p.QoS = qosBuf[0]

	return totalRead, nil
}

// Validate validates the packet contents.
func (p *SubscribePacket) Validate() error {
	if p.PacketID == 0 {
		return ErrPacketIDRequired
	}

	if p.TopicFilter == "" {
		return ErrTopicFilterEmpty
	}

	if p.QoS > 2 {
		return ErrInvalidQoS
	}

	// Requesting an exactly-once subscription is refused before any
	// byte is written.
	if p.QoS == 2 {
		return ErrUnsupportedQoS
	}

	return nil
}
