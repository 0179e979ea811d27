package mqtt311

import (
	"crypto/tls"
	"time"

	"golang.org/x/time/rate"
)

// clientOptions holds configuration for a Client.
type clientOptions struct {
	// Connection settings
	clientID  string
	username  string
	password  []byte
	keepAlive uint16

	// TLS configuration
	tlsConfig *tls.Config

	// Timeouts
	connectTimeout time.Duration
	socketTimeout  time.Duration
	messageTimeout time.Duration

	// Will message
	willTopic   string
	willPayload []byte
	willRetain  bool
	willQoS     byte

	// Limits
	maxPacketSize uint32

	// Outbound publish throttle. Nil means unlimited.
	publishLimiter *rate.Limiter

	// Transport
	dialer Dialer
	proxy  string

	logger Logger
}

// defaultOptions returns options with sensible defaults.
func defaultOptions() *clientOptions {
	return &clientOptions{
		keepAlive:      60,
		connectTimeout: 10 * time.Second,
		socketTimeout:  5 * time.Second,
		messageTimeout: 5 * time.Second,
		logger:         NewNoOpLogger(),
	}
}

// Option configures a Client.
type Option func(*clientOptions)

// WithClientID sets the client identifier.
func WithClientID(id string) Option {
	return func(o *clientOptions) {
		o.clientID = id
	}
}

// WithCredentials sets the username and password for authentication.
func WithCredentials(username, password string) Option {
	return func(o *clientOptions) {
		o.username = username
		o.password = []byte(password)
	}
}

// WithKeepAlive sets the keep-alive interval in seconds.
// Zero disables the keep-alive mechanism.
func WithKeepAlive(seconds uint16) Option {
	return func(o *clientOptions) {
		o.keepAlive = seconds
	}
}

// WithTLS sets the TLS configuration for secure connections.
func WithTLS(config *tls.Config) Option {
	return func(o *clientOptions) {
		o.tlsConfig = config
	}
}

// WithConnectTimeout sets the timeout for the initial connection.
func WithConnectTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.connectTimeout = d
	}
}

// WithSocketTimeout sets the timeout for blocking reads and writes on
// the transport.
func WithSocketTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.socketTimeout = d
	}
}

// WithMessageTimeout sets how long a QoS 1 operation may remain
// unacknowledged before it is reported as timed out.
func WithMessageTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.messageTimeout = d
	}
}

// WithWill sets the Will message that the broker publishes if the
// client disconnects unexpectedly.
func WithWill(topic string, payload []byte, retain bool, qos byte) Option {
	return func(o *clientOptions) {
		o.willTopic = topic
		o.willPayload = payload
		o.willRetain = retain
		o.willQoS = qos
	}
}

// WithMaxPacketSize sets the maximum inbound packet size the client
// will accept. Zero means no limit beyond the protocol maximum.
func WithMaxPacketSize(size uint32) Option {
	return func(o *clientOptions) {
		if size > maxVarint {
			size = maxVarint
		}
		o.maxPacketSize = size
	}
}

// WithDialer sets a custom transport dialer, overriding the
// scheme-based default.
func WithDialer(d Dialer) Option {
	return func(o *clientOptions) {
		o.dialer = d
	}
}

// WithProxy routes the connection through an HTTP CONNECT or SOCKS5
// proxy. The URL may embed credentials.
func WithProxy(proxyURL string) Option {
	return func(o *clientOptions) {
		o.proxy = proxyURL
	}
}

// WithPublishRateLimit throttles outbound publishes to the given
// number of messages per second, with the given burst.
func WithPublishRateLimit(perSecond float64, burst int) Option {
	return func(o *clientOptions) {
		o.publishLimiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(o *clientOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// applyOptions applies the given options to a fresh default set.
func applyOptions(opts []Option) *clientOptions {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}
