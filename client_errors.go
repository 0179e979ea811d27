package mqtt311

import (
	"errors"
	"fmt"
)

// Client errors.
var (
	// ErrNotConnected is returned when an operation requires an
	// established connection.
	ErrNotConnected = errors.New("client is not connected")

	// ErrClientClosed is returned when the client has been closed.
	ErrClientClosed = errors.New("client is closed")

	// ErrTransportClosed is returned when the broker closes the
	// connection mid-packet or between packets.
	ErrTransportClosed = errors.New("transport closed by peer")

	// ErrFramingMismatch is returned when an inbound packet's remaining
	// length disagrees with its mandated value.
	ErrFramingMismatch = errors.New("packet length does not match expected framing")

	// ErrUnsupportedQoS is returned for any operation involving QoS 2.
	ErrUnsupportedQoS = errors.New("QoS 2 is not supported")

	// ErrUnexpectedAck is returned when an acknowledgment arrives for a
	// packet identifier that was never registered.
	ErrUnexpectedAck = errors.New("acknowledgment for unknown packet identifier")

	// ErrSubscribeRejected is returned when the broker refuses a
	// subscription.
	ErrSubscribeRejected = errors.New("subscription rejected by broker")

	// ErrMessageHandlerRequired is returned when a subscribe is
	// attempted without a message handler set.
	ErrMessageHandlerRequired = errors.New("message handler must be set before subscribing")
)

// CONNACK refusal errors, one per return code the broker may send.
var (
	// ErrUnacceptableProtocolVersion corresponds to return code 0x01.
	ErrUnacceptableProtocolVersion = errors.New("connection refused: unacceptable protocol version")

	// ErrIdentifierRejected corresponds to return code 0x02.
	ErrIdentifierRejected = errors.New("connection refused: identifier rejected")

	// ErrServerUnavailable corresponds to return code 0x03.
	ErrServerUnavailable = errors.New("connection refused: server unavailable")

	// ErrBadCredentials corresponds to return code 0x04.
	ErrBadCredentials = errors.New("connection refused: bad username or password")

	// ErrNotAuthorized corresponds to return code 0x05.
	ErrNotAuthorized = errors.New("connection refused: not authorized")

	// ErrConnectionRefused is the generic refusal for return codes the
	// client does not recognize.
	ErrConnectionRefused = errors.New("connection refused")
)

// ConnectError is returned when the broker refuses a connection. It
// carries the raw CONNACK return code and unwraps to the matching
// sentinel so callers can use errors.Is.
type ConnectError struct {
	// Code is the CONNACK return code sent by the broker.
	Code byte
}

// Error returns the error message.
func (e *ConnectError) Error() string {
	return fmt.Sprintf("%s (return code %d)", e.Unwrap().Error(), e.Code)
}

// Unwrap returns the sentinel error for the return code.
func (e *ConnectError) Unwrap() error {
	switch e.Code {
	case ConnectRefusedProtocolVersion:
		return ErrUnacceptableProtocolVersion
	case ConnectRefusedIdentifierRejected:
		return ErrIdentifierRejected
	case ConnectRefusedServerUnavailable:
		return ErrServerUnavailable
	case ConnectRefusedBadUsernameOrPasswrd:
		return ErrBadCredentials
	case ConnectRefusedNotAuthorized:
		return ErrNotAuthorized
	default:
		return ErrConnectionRefused
	}
}
