package mqtt311

import (
	"crypto/tls"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()

	assert.Equal(t, uint16(60), o.keepAlive)
	assert.Equal(t, 10*time.Second, o.connectTimeout)
	assert.Equal(t, 5*time.Second, o.socketTimeout)
	assert.Equal(t, 5*time.Second, o.messageTimeout)
	assert.Empty(t, o.clientID)
	assert.Nil(t, o.publishLimiter)
	assert.NotNil(t, o.logger)
}

func TestApplyOptions(t *testing.T) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS13}

	o := applyOptions([]Option{
		WithClientID("device-1"),
		WithCredentials("user", "pass"),
		WithKeepAlive(30),
		WithTLS(tlsConfig),
		WithConnectTimeout(3 * time.Second),
		WithSocketTimeout(2 * time.Second),
		WithMessageTimeout(7 * time.Second),
		WithWill("dev/status", []byte("gone"), true, 1),
		WithMaxPacketSize(1024),
		WithProxy("socks5://127.0.0.1:1080"),
		WithPublishRateLimit(10, 5),
	})

	assert.Equal(t, "device-1", o.clientID)
	assert.Equal(t, "user", o.username)
	assert.Equal(t, []byte("pass"), o.password)
	assert.Equal(t, uint16(30), o.keepAlive)
	assert.Same(t, tlsConfig, o.tlsConfig)
	assert.Equal(t, 3*time.Second, o.connectTimeout)
	assert.Equal(t, 2*time.Second, o.socketTimeout)
	assert.Equal(t, 7*time.Second, o.messageTimeout)
	assert.Equal(t, "dev/status", o.willTopic)
	assert.Equal(t, []byte("gone"), o.willPayload)
	assert.True(t, o.willRetain)
	assert.Equal(t, byte(1), o.willQoS)
	assert.Equal(t, uint32(1024), o.maxPacketSize)
	assert.Equal(t, "socks5://127.0.0.1:1080", o.proxy)
	require.NotNil(t, o.publishLimiter)
	assert.Equal(t, 5, o.publishLimiter.Burst())
}

func TestWithMaxPacketSizeClamped(t *testing.T) {
	o := applyOptions([]Option{WithMaxPacketSize(maxVarint + 100)})
	assert.Equal(t, uint32(maxVarint), o.maxPacketSize)
}

func TestWithLoggerNilKeepsDefault(t *testing.T) {
	o := applyOptions([]Option{WithLogger(nil)})
	assert.NotNil(t, o.logger)
}
