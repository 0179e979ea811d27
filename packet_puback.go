package mqtt311

import (
	"errors"
	"io"
)

// ErrPubackMalformed is returned when a PUBACK packet has the wrong length.
var ErrPubackMalformed = errors.New("malformed PUBACK packet")

// pubackRemainingLength is fixed at 2 for MQTT v3.1.1.
const pubackRemainingLength = 2

// PubackPacket represents an MQTT PUBACK packet, the acknowledgment
// for a QoS 1 PUBLISH.
type PubackPacket struct {
	// PacketID is the packet identifier of the PUBLISH being acknowledged.
	PacketID uint16
}

// Type returns the packet type.
func (p *PubackPacket) Type() PacketType {
	return PacketPUBACK
}

// Encode writes the packet to the writer.
func (p *PubackPacket) Encode(w io.Writer) (int, error) {
	header := FixedHeader{
		PacketType:      PacketPUBACK,
		Flags:           0x00,
		RemainingLength: pubackRemainingLength,
	}

	total, err := header.Encode(w)
	if err != nil {
		return total, err
	}

	n, err := w.Write([]byte{byte(p.PacketID >> 8), byte(p.PacketID)})
	return total + n, err
}

// Decode reads the packet from the reader.
func (p *PubackPacket) Decode(r io.Reader, header FixedHeader) (int, error) {
	if header.PacketType != PacketPUBACK {
		return 0, ErrInvalidPacketType
	}
	if header.RemainingLength != pubackRemainingLength {
		return 0, ErrPubackMalformed
	}

	var buf [2]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil {
		return n, err
	}

	p.PacketID = uint16(buf[0])<<8 | uint16(buf[1])

	return n, nil
}

// Validate validates the packet contents.
func (p *PubackPacket) Validate() error {
	if p.PacketID == 0 {
		return ErrPacketIDRequired
	}
	return nil
}
