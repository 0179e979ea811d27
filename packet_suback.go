package mqtt311

import (
	"errors"
	"io"
)

// ErrSubackMalformed is returned when a SUBACK packet has the wrong length.
var ErrSubackMalformed = errors.New("malformed SUBACK packet")

// SUBACK return codes. Values 0-2 grant the subscription at that QoS;
// 0x80 signals failure.
const (
	SubackGrantedQoS0 = 0x00
	SubackGrantedQoS1 = 0x01
	SubackGrantedQoS2 = 0x02
	SubackFailure     = 0x80
)

// subackRemainingLength is fixed at 3 for a single-filter SUBSCRIBE.
const subackRemainingLength = 3

// SubackPacket represents an MQTT SUBACK packet acknowledging a
// single-filter SUBSCRIBE.
type SubackPacket struct {
	// PacketID is the packet identifier of the SUBSCRIBE being acknowledged.
	PacketID uint16

	// ReturnCode is the subscription result.
	ReturnCode byte
}

// Type returns the packet type.
func (p *SubackPacket) Type() PacketType {
	return PacketSUBACK
}

// Encode writes the packet to the writer.
func (p *SubackPacket) Encode(w io.Writer) (int, error) {
	header := FixedHeader{
		PacketType:      PacketSUBACK,
		Flags:           0x00,
		RemainingLength: subackRemainingLength,
	}

	total, err := header.Encode(w)
	if err != nil {
		return total, err
	}

	n, err := w.Write([]byte{byte(p.PacketID >> 8), byte(p.PacketID), p.ReturnCode})
	return total + n, err
}

// Decode reads the packet from the reader.
func (p *SubackPacket) Decode(r io.Reader, header FixedHeader) (int, error) {
	if header.PacketType != PacketSUBACK {
		return 0, ErrInvalidPacketType
	}
	if header.RemainingLength != subackRemainingLength {
		return 0, ErrSubackMalformed
	}

	var buf [3]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil {
		return n, err
	}

	p.PacketID = uint16(buf[0])<<8 | uint16(buf[1])
	p.ReturnCode = buf[2]

	return n, nil
}

// Validate validates the packet contents.
func (p *SubackPacket) Validate() error {
	if p.PacketID == 0 {
		return ErrPacketIDRequired
	}
	return nil
}

// Granted reports whether the subscription was accepted.
func (p *SubackPacket) Granted() bool {
	return p.ReturnCode == SubackGrantedQoS0 ||
		p.ReturnCode == SubackGrantedQoS1 ||
		p.ReturnCode == SubackGrantedQoS2
}
