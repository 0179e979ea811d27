package mqtt311

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"time"
)

// Client is an MQTT v3.1.1 client.
//
// The client owns no goroutines. The caller drives inbound traffic by
// calling WaitMessage or CheckMessage from a single goroutine; every
// other method must be called from that same goroutine.
type Client struct {
	server  string
	options *clientOptions

	conn Conn

	handler MessageHandler
	status  StatusHandler

	pids    packetIDSequence
	tracker *AckTracker

	connected bool
	closed    bool

	lastActivity time.Time
	lastCommand  time.Time
}

// NewClient creates a client for the given broker address. The address
// is a URI: tcp://host:port, tls://host:port or quic://host:port. The
// port defaults to 1883 for plain TCP and 8883 otherwise.
func NewClient(server string, opts ...Option) *Client {
	c := &Client{
		server:  server,
		options: applyOptions(opts),
	}

	c.tracker = NewAckTracker(c.options.messageTimeout, func(packetID uint16, status DeliveryStatus) {
		if c.status != nil {
			c.status(packetID, status)
		}
	})

	return c
}

// SetMessageHandler sets the callback invoked for each inbound PUBLISH.
// A handler must be set before subscribing.
func (c *Client) SetMessageHandler(handler MessageHandler) {
	c.handler = handler
}

// SetStatusHandler sets the callback invoked when a tracked QoS 1
// operation resolves.
func (c *Client) SetStatusHandler(handler StatusHandler) {
	c.status = handler
}

// IsConnected reports whether the client holds an established
// connection.
func (c *Client) IsConnected() bool {
	return c.connected
}

// ClientID returns the configured client identifier.
func (c *Client) ClientID() string {
	return c.options.clientID
}

// LastActivity returns the time of the last successful read from the
// broker. Useful for keep-alive decisions by the owner loop.
func (c *Client) LastActivity() time.Time {
	return c.lastActivity
}

// LastCommand returns the time the last inbound control packet was
// fully processed.
func (c *Client) LastCommand() time.Time {
	return c.lastCommand
}

// PendingAcks returns the number of QoS 1 operations awaiting
// acknowledgment.
func (c *Client) PendingAcks() int {
	return c.tracker.Count()
}

// Connect dials the broker and performs the CONNECT/CONNACK handshake.
// It returns the broker's session-present flag. A refused connection
// returns a ConnectError wrapping the matching sentinel.
func (c *Client) Connect(ctx context.Context, cleanSession bool) (bool, error) {
	if c.closed {
		return false, ErrClientClosed
	}
	if c.connected {
		return false, errors.New("client is already connected")
	}

	dialCtx, cancel := context.WithTimeout(ctx, c.options.connectTimeout)
	defer cancel()

	conn, err := c.dial(dialCtx)
	if err != nil {
		return false, err
	}
	c.conn = conn

	connect := &ConnectPacket{
		ClientID:     c.options.clientID,
		CleanSession: cleanSession,
		KeepAlive:    c.options.keepAlive,
		Username:     c.options.username,
		Password:     c.options.password,
	}
	if c.options.willTopic != "" {
		connect.WillFlag = true
		connect.WillTopic = c.options.willTopic
		connect.WillPayload = c.options.willPayload
		connect.WillRetain = c.options.willRetain
		connect.WillQoS = c.options.willQoS
	}

	if err := c.writePacket(connect); err != nil {
		conn.Close()
		c.conn = nil
		return false, fmt.Errorf("failed to send CONNECT: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(c.options.connectTimeout))
	pkt, _, err := ReadPacket(conn, c.options.maxPacketSize)
	conn.SetReadDeadline(time.Time{})
	if err != nil {
		conn.Close()
		c.conn = nil
		return false, fmt.Errorf("failed to read CONNACK: %w", c.readError(err))
	}

	connack, ok := pkt.(*ConnackPacket)
	if !ok {
		conn.Close()
		c.conn = nil
		return false, ErrFramingMismatch
	}

	if connack.ReturnCode != ConnectAccepted {
		conn.Close()
		c.conn = nil
		return false, &ConnectError{Code: connack.ReturnCode}
	}

	if cleanSession {
		c.tracker.Clear()
	}

	c.connected = true
	now := time.Now()
	c.lastActivity = now
	c.lastCommand = now

	c.options.logger.Info("connected", LogFields{
		LogFieldClientID: c.options.clientID,
		LogFieldServer:   c.server,
		"session_present": connack.SessionPresent,
	})

	return connack.SessionPresent, nil
}

// dial establishes the transport connection based on the server URI
// scheme, the configured dialer and the proxy settings.
func (c *Client) dial(ctx context.Context) (Conn, error) {
	if c.options.dialer != nil {
		return c.options.dialer.Dial(ctx, c.server)
	}

	u, err := url.Parse(c.server)
	if err != nil {
		return nil, fmt.Errorf("invalid server address: %w", err)
	}

	scheme := u.Scheme
	if scheme == "" {
		scheme = "tcp"
	}

	host := u.Host
	if host == "" {
		host = u.Path
	}
	if u.Port() == "" {
		switch scheme {
		case "tcp", "mqtt":
			host = net.JoinHostPort(u.Hostname(), "1883")
		case "ssl", "tls", "mqtts", "quic":
			host = net.JoinHostPort(u.Hostname(), "8883")
		}
	}

	var proxyDialer *ProxyDialer
	if c.options.proxy != "" {
		proxyDialer, err = NewProxyDialer(c.options.proxy, "", "")
		if err != nil {
			return nil, fmt.Errorf("proxy configuration error: %w", err)
		}
	}

	switch scheme {
	case "tcp", "mqtt":
		if proxyDialer != nil {
			return proxyDialer.Dial(ctx, host)
		}
		d := &TCPDialer{Timeout: c.options.connectTimeout}
		return d.Dial(ctx, host)

	case "ssl", "tls", "mqtts":
		tlsConfig := c.options.tlsConfig
		if tlsConfig == nil {
			tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		if proxyDialer != nil {
			// Dial through proxy, then wrap with TLS
			conn, err := proxyDialer.Dial(ctx, host)
			if err != nil {
				return nil, err
			}
			tlsConn := tls.Client(conn, tlsConfig)
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, fmt.Errorf("TLS handshake failed: %w", err)
			}
			return tlsConn, nil
		}
		d := &TLSDialer{Config: tlsConfig, Timeout: c.options.connectTimeout}
		return d.Dial(ctx, host)

	case "quic":
		// QUIC over proxy is not supported
		d := NewQUICDialer(c.options.tlsConfig)
		return d.Dial(ctx, host)

	default:
		return nil, fmt.Errorf("unsupported scheme: %s", scheme)
	}
}

// Disconnect sends DISCONNECT and closes the connection. The broker
// discards the will message on a clean disconnect.
func (c *Client) Disconnect() error {
	if !c.connected {
		return ErrNotConnected
	}

	err := c.writePacket(&DisconnectPacket{})

	c.connected = false
	if cerr := c.conn.Close(); err == nil {
		err = cerr
	}
	c.conn = nil

	c.options.logger.Info("disconnected", LogFields{
		LogFieldClientID: c.options.clientID,
	})

	return err
}

// Close tears down the connection without sending DISCONNECT, leaving
// the broker to publish the will message. The client cannot be reused
// afterward.
func (c *Client) Close() error {
	c.closed = true
	c.connected = false

	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

// Ping sends a PINGREQ. The broker's PINGRESP is consumed by a later
// WaitMessage or CheckMessage call.
func (c *Client) Ping() error {
	if !c.connected {
		return ErrNotConnected
	}
	return c.writePacket(&PingreqPacket{})
}

// Publish sends a message to the broker. For QoS 1 it returns the
// packet identifier now awaiting acknowledgment; for QoS 0 it returns
// zero. QoS 2 is refused before any byte reaches the wire.
func (c *Client) Publish(msg *Message) (uint16, error) {
	if !c.connected {
		return 0, ErrNotConnected
	}
	if msg.QoS > 2 {
		return 0, ErrInvalidQoS
	}
	if msg.QoS == 2 {
		return 0, ErrUnsupportedQoS
	}

	if c.options.publishLimiter != nil {
		if err := c.options.publishLimiter.Wait(context.Background()); err != nil {
			return 0, err
		}
	}

	pkt := &PublishPacket{}
	pkt.FromMessage(msg)

	var packetID uint16
	if msg.QoS == 1 {
		packetID = c.pids.Next()
		pkt.PacketID = packetID
	}

	if err := c.writePacket(pkt); err != nil {
		return 0, err
	}

	// Track only after the packet is on the wire
	if msg.QoS == 1 {
		c.tracker.Register(packetID, time.Now())
	}

	c.options.logger.Debug("published", LogFields{
		LogFieldTopic:    msg.Topic,
		LogFieldQoS:      msg.QoS,
		LogFieldPacketID: packetID,
	})

	return packetID, nil
}

// Subscribe requests a subscription to a single topic filter at the
// given maximum QoS. The returned packet identifier resolves through
// the status handler once the SUBACK arrives. QoS 2 is refused before
// any byte reaches the wire.
func (c *Client) Subscribe(topicFilter string, qos byte) (uint16, error) {
	if !c.connected {
		return 0, ErrNotConnected
	}
	if c.handler == nil {
		return 0, ErrMessageHandlerRequired
	}
	if qos > 2 {
		return 0, ErrInvalidQoS
	}
	if qos == 2 {
		return 0, ErrUnsupportedQoS
	}

	packetID := c.pids.Next()
	pkt := &SubscribePacket{
		PacketID:    packetID,
		TopicFilter: topicFilter,
		QoS:         qos,
	}

	if err := c.writePacket(pkt); err != nil {
		return 0, err
	}

	c.tracker.Register(packetID, time.Now())

	c.options.logger.Debug("subscribe sent", LogFields{
		LogFieldTopic:    topicFilter,
		LogFieldQoS:      qos,
		LogFieldPacketID: packetID,
	})

	return packetID, nil
}

// WaitMessage blocks up to the socket timeout for one inbound packet
// and dispatches it. A quiet socket sweeps the pending-ack table and
// returns nil.
func (c *Client) WaitMessage() error {
	return c.receive(c.options.socketTimeout)
}

// CheckMessage polls for one inbound packet without blocking. It
// behaves like WaitMessage with a near-zero timeout.
func (c *Client) CheckMessage() error {
	return c.receive(time.Millisecond)
}

// receive reads and dispatches at most one inbound packet. Only the
// wait for the first byte honors the given timeout; once a packet has
// started, the remainder is read under the socket timeout.
func (c *Client) receive(timeout time.Duration) error {
	if !c.connected {
		return ErrNotConnected
	}

	c.conn.SetReadDeadline(time.Now().Add(timeout))
	var first [1]byte
	if _, err := c.conn.Read(first[:]); err != nil {
		c.conn.SetReadDeadline(time.Time{})
		var nerr net.Error
		if errors.As(err, &nerr) && nerr.Timeout() {
			// Quiet socket. Expire overdue acks before returning.
			c.tracker.Sweep(time.Now())
			return nil
		}
		return c.readError(err)
	}
	c.lastActivity = time.Now()

	var header FixedHeader
	header.SetFirstByte(first[0])
	if !header.PacketType.Valid() {
		return ErrInvalidPacketType
	}

	// Mid-packet reads use the socket timeout
	c.conn.SetReadDeadline(time.Now().Add(c.options.socketTimeout))
	remaining, _, err := decodeVarint(c.conn)
	if err != nil {
		return c.readError(err)
	}
	header.RemainingLength = remaining

	pkt, _, err := readPacketBody(c.conn, header, c.options.maxPacketSize)
	c.conn.SetReadDeadline(time.Time{})
	if err != nil {
		return c.readError(err)
	}

	return c.dispatch(pkt)
}

// dispatch routes one inbound packet. The pending-ack sweep runs after
// acknowledgment handling and before message delivery; a PINGRESP
// short-circuits without sweeping.
func (c *Client) dispatch(pkt Packet) error {
	now := time.Now()

	switch p := pkt.(type) {
	case *PingrespPacket:
		c.options.logger.Debug("ping response", nil)
		c.lastCommand = now
		return nil

	case *PubackPacket:
		if c.tracker.Resolve(p.PacketID) {
			c.lastCommand = now
		} else {
			// Usually an ack that arrived after its timeout fired
			c.options.logger.Warn("late or unknown PUBACK", LogFields{
				LogFieldPacketID: p.PacketID,
			})
			if c.status != nil {
				c.status(p.PacketID, StatusUnknown)
			}
		}
		c.tracker.Sweep(now)
		return nil

	case *SubackPacket:
		if p.ReturnCode == SubackFailure {
			c.tracker.Drop(p.PacketID)
			return ErrSubscribeRejected
		}
		if !p.Granted() {
			return ErrFramingMismatch
		}
		if !c.tracker.Resolve(p.PacketID) {
			return ErrUnexpectedAck
		}
		c.lastCommand = now
		c.tracker.Sweep(now)
		return nil

	case *PublishPacket:
		c.tracker.Sweep(now)
		c.lastCommand = now
		return c.handleInbound(p)

	default:
		// Flow control packets for QoS 2 and other traffic this
		// client never initiates
		c.options.logger.Debug("ignoring unexpected packet", LogFields{
			LogFieldPacketType: pkt.Type().String(),
		})
		c.tracker.Sweep(now)
		return nil
	}
}

// handleInbound delivers one inbound PUBLISH. The message callback
// runs before any QoS handling so the payload is never lost, even
// when the delivery level is unsupported.
func (c *Client) handleInbound(p *PublishPacket) error {
	if c.handler != nil {
		c.handler(p.ToMessage())
	}

	switch p.QoS {
	case 0:
		return nil
	case 1:
		return c.writePacket(&PubackPacket{PacketID: p.PacketID})
	default:
		return ErrUnsupportedQoS
	}
}

// writePacket sends one packet under the socket timeout.
func (c *Client) writePacket(pkt Packet) error {
	if c.conn == nil {
		return ErrNotConnected
	}

	c.conn.SetWriteDeadline(time.Now().Add(c.options.socketTimeout))
	_, err := WritePacket(c.conn, pkt, 0)
	c.conn.SetWriteDeadline(time.Time{})
	if err != nil {
		return c.readError(err)
	}

	return nil
}

// readError normalizes transport-level failures. A peer hangup in any
// form becomes ErrTransportClosed and drops the connected flag.
func (c *Client) readError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		c.connected = false
		return ErrTransportClosed
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && !opErr.Timeout() {
		c.connected = false
		return ErrTransportClosed
	}

	return err
}
