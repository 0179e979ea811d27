package mqtt311

import (
	"errors"
	"io"
)

// CONNACK packet errors.
var (
	ErrInvalidConnackFlags = errors.New("invalid CONNACK flags")
	ErrConnackMalformed    = errors.New("malformed CONNACK packet")
)

// CONNACK return codes.
const (
	ConnectAccepted                    = 0x00
	ConnectRefusedProtocolVersion      = 0x01
	ConnectRefusedIdentifierRejected   = 0x02
	ConnectRefusedServerUnavailable    = 0x03
	ConnectRefusedBadUsernameOrPasswrd = 0x04
	ConnectRefusedNotAuthorized        = 0x05
)

// connackRemainingLength is fixed at 2 for MQTT v3.1.1.
const connackRemainingLength = 2

// ConnackPacket represents an MQTT CONNACK packet.
type ConnackPacket struct {
	// SessionPresent indicates if the broker resumed a session from a
	// previous connection.
	SessionPresent bool

	// ReturnCode is the connection result.
	ReturnCode byte
}

// Type returns the packet type.
func (p *ConnackPacket) Type() PacketType {
	return PacketCONNACK
}

// Encode writes the packet to the writer.
func (p *ConnackPacket) Encode(w io.Writer) (int, error) {
	header := FixedHeader{
		PacketType:      PacketCONNACK,
		Flags:           0x00,
		RemainingLength: connackRemainingLength,
	}

	total, err := header.Encode(w)
	if err != nil {
		return total, err
	}

	var flags byte
	if p.SessionPresent {
		flags = 0x01
	}

	n, err := w.Write([]byte{flags, p.ReturnCode})
	return total + n, err
}

// Decode reads the packet from the reader.
func (p *ConnackPacket) Decode(r io.Reader, header FixedHeader) (int, error) {
	if header.PacketType != PacketCONNACK {
		return 0, ErrInvalidPacketType
	}
	if header.Flags != 0x00 {
		return 0, ErrInvalidPacketFlags
	}
	if header.RemainingLength != connackRemainingLength {
		return 0, ErrConnackMalformed
	}

	var buf [2]byte
	n, err := io.ReadFull(r, buf[:])
	if err != nil {
		return n, err
	}

	// Reserved bits of the acknowledge flags must be 0
	if buf[0]&0xFE != 0 {
		return n, ErrInvalidConnackFlags
	}

	p.SessionPresent = buf[0]&0x01 != 0
	p.ReturnCode = buf[1]

	return n, nil
}

// Validate validates the packet contents.
func (p *ConnackPacket) Validate() error {
	// Session present must be 0 when the connection is refused.
	if p.ReturnCode != ConnectAccepted && p.SessionPresent {
		return ErrInvalidConnackFlags
	}
	return nil
}
