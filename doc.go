// Package mqtt311 provides a lightweight MQTT v3.1.1 client.
//
// This package implements the client side of the MQTT Version 3.1.1
// OASIS Standard: https://docs.oasis-open.org/mqtt/mqtt/v3.1.1/mqtt-v3.1.1.html
//
// # Features
//
//   - QoS 0 and QoS 1 publish and subscribe
//   - Acknowledgment tracking with per-message delivery timeouts
//   - Will messages, keep-alive and session resumption
//   - Transport: TCP, TLS, QUIC, HTTP CONNECT and SOCKS5 proxies
//
// # Packet Types
//
// The package provides structs for the control packets a v3.1.1 client
// exchanges:
//
//   - ConnectPacket, ConnackPacket: Connection establishment
//   - PublishPacket, PubackPacket: Message delivery
//   - SubscribePacket, SubackPacket: Topic subscription
//   - PingreqPacket, PingrespPacket: Keep-alive
//   - DisconnectPacket: Connection termination
//
// Use ReadPacket and WritePacket to read/write packets from/to
// connections:
//
//	pkt, n, err := mqtt311.ReadPacket(conn, maxPacketSize)
//	n, err := mqtt311.WritePacket(conn, packet, maxPacketSize)
//
// # Client
//
// The Client runs no goroutines of its own. The caller connects,
// registers callbacks and then drives the connection by polling:
//
//	client := mqtt311.NewClient("tcp://localhost:1883",
//	    mqtt311.WithClientID("my-client"),
//	    mqtt311.WithKeepAlive(60),
//	)
//	client.SetMessageHandler(func(msg *mqtt311.Message) {
//	    fmt.Println(msg.Topic, string(msg.Payload))
//	})
//	client.SetStatusHandler(func(packetID uint16, status mqtt311.DeliveryStatus) {
//	    // StatusDelivered, StatusTimeout or StatusUnknown
//	})
//
//	sessionPresent, err := client.Connect(ctx, true)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Disconnect()
//
//	packetID, err := client.Publish(&mqtt311.Message{
//	    Topic:   "sensors/temp",
//	    Payload: []byte("21.5"),
//	    QoS:     1,
//	})
//
//	for {
//	    if err := client.WaitMessage(); err != nil {
//	        break
//	    }
//	}
//
// TLS connections:
//
//	client := mqtt311.NewClient("tls://localhost:8883",
//	    mqtt311.WithTLS(&tls.Config{}),
//	)
//
// # QoS
//
// QoS 2 (exactly once) is not supported. Publishing or subscribing at
// QoS 2 fails with ErrUnsupportedQoS before anything is written to the
// wire; an inbound QoS 2 message is delivered to the message handler
// and then reported as an error.
//
// # Logging
//
// Implement the Logger interface for structured logging:
//
//	logger := mqtt311.NewStdLogger(os.Stdout, mqtt311.LogLevelInfo)
//	client := mqtt311.NewClient(addr, mqtt311.WithLogger(logger))
package mqtt311
