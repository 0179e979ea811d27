package mqtt311

import (
	"errors"
	"io"
)

var (
	ErrPacketTooLarge    = errors.New("mqtt311: packet exceeds maximum size")
	ErrUnknownPacketType = errors.New("mqtt311: unknown packet type")
)

// ReadPacket reads a complete MQTT packet from the reader.
// If maxSize is greater than 0, packets larger than maxSize will return ErrPacketTooLarge.
func ReadPacket(r io.Reader, maxSize uint32) (Packet, int, error) {
	var header FixedHeader
	n, err := header.Decode(r)
	if err != nil {
		return nil, n, err
	}

	pkt, n2, err := readPacketBody(r, header, maxSize)
	return pkt, n + n2, err
}

// readPacketBody reads and decodes the remainder of a packet whose fixed
// header has already been consumed.
func readPacketBody(r io.Reader, header FixedHeader, maxSize uint32) (Packet, int, error) {
	if maxSize > 0 && header.RemainingLength > maxSize {
		return nil, 0, ErrPacketTooLarge
	}

	remaining := make([]byte, header.RemainingLength)
	var n int
	if header.RemainingLength > 0 {
		rn, err := io.ReadFull(r, remaining)
		n += rn
		if err != nil {
			return nil, n, err
		}
	}

	var packet Packet
	switch header.PacketType {
	case PacketCONNECT:
		packet = &ConnectPacket{}
	case PacketCONNACK:
		packet = &ConnackPacket{}
	case PacketPUBLISH:
		packet = &PublishPacket{}
	case PacketPUBACK:
		packet = &PubackPacket{}
	case PacketSUBSCRIBE:
		packet = &SubscribePacket{}
	case PacketSUBACK:
		packet = &SubackPacket{}
	case PacketPINGREQ:
		packet = &PingreqPacket{}
	case PacketPINGRESP:
		packet = &PingrespPacket{}
	case PacketDISCONNECT:
		packet = &DisconnectPacket{}
	case PacketPUBREC, PacketPUBREL, PacketPUBCOMP, PacketUNSUBSCRIBE, PacketUNSUBACK:
		// Valid control packets this client never expects. The body has
		// already been consumed, so framing stays synchronized and the
		// caller may ignore them.
		return &RawPacket{Header: header, Body: remaining}, n, nil
	default:
		return nil, n, ErrUnknownPacketType
	}

	reader := newBytesReader(remaining)
	if _, err := packet.Decode(reader, header); err != nil {
		return nil, n, err
	}

	return packet, n, nil
}

// WritePacket writes a complete MQTT packet to the writer.
// If maxSize is greater than 0, packets larger than maxSize will return ErrPacketTooLarge.
func WritePacket(w io.Writer, packet Packet, maxSize uint32) (int, error) {
	if err := packet.Validate(); err != nil {
		return 0, err
	}

	// If max size check is needed, encode to buffer first
	if maxSize > 0 {
		var buf bytesBuffer
		n, err := packet.Encode(&buf)
		if err != nil {
			return 0, err
		}
		if uint32(n) > maxSize {
			return 0, ErrPacketTooLarge
		}
		return w.Write(buf.Bytes())
	}

	return packet.Encode(w)
}

// RawPacket carries an inbound control packet the client does not
// specialize. The body is fully read but left undecoded.
type RawPacket struct {
	Header FixedHeader
	Body   []byte
}

// Type returns the packet type.
func (p *RawPacket) Type() PacketType { return p.Header.PacketType }

// Encode writes the packet to the writer.
func (p *RawPacket) Encode(w io.Writer) (int, error) {
	header := p.Header
	header.RemainingLength = uint32(len(p.Body))
	total, err := header.Encode(w)
	if err != nil {
		return total, err
	}
	n, err := w.Write(p.Body)
	return total + n, err
}

// Decode reads the packet from the reader.
func (p *RawPacket) Decode(r io.Reader, header FixedHeader) (int, error) {
	p.Header = header
	p.Body = make([]byte, header.RemainingLength)
	return io.ReadFull(r, p.Body)
}

// Validate validates the packet contents.
func (p *RawPacket) Validate() error {
	if !p.Header.PacketType.Valid() {
		return ErrInvalidPacketType
	}
	return nil
}

// bytesReader wraps a byte slice for io.Reader interface.
type bytesReader struct {
	data []byte
	pos  int
}

func newBytesReader(data []byte) *bytesReader {
	return &bytesReader{data: data}
}

func (r *bytesReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}

// bytesBuffer is a simple buffer for encoding.
type bytesBuffer struct {
	data []byte
}

func (b *bytesBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

func (b *bytesBuffer) Bytes() []byte {
	return b.data
}
