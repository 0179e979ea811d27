package mqtt311

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeString(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{name: "empty", value: ""},
		{name: "simple", value: "hello"},
		{name: "topic", value: "sensors/room1/temp"},
		{name: "utf8", value: "温度/センサー"},
		{name: "max length", value: strings.Repeat("a", maxUint16)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			n, err := encodeString(&buf, tt.value)
			require.NoError(t, err)
			assert.Equal(t, 2+len(tt.value), n)

			decoded, n2, err := decodeString(&buf)
			require.NoError(t, err)
			assert.Equal(t, n, n2)
			assert.Equal(t, tt.value, decoded)
		})
	}
}

func TestEncodeStringTooLong(t *testing.T) {
	var buf bytes.Buffer
	_, err := encodeString(&buf, strings.Repeat("a", maxUint16+1))
	assert.ErrorIs(t, err, ErrStringTooLong)
	assert.Zero(t, buf.Len())
}

func TestEncodeDecodeBinary(t *testing.T) {
	tests := []struct {
		name  string
		value []byte
	}{
		{name: "nil", value: nil},
		{name: "payload", value: []byte{0x00, 0x01, 0xFF}},
		{name: "max length", value: bytes.Repeat([]byte{0xAB}, maxUint16)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			n, err := encodeBinary(&buf, tt.value)
			require.NoError(t, err)
			assert.Equal(t, 2+len(tt.value), n)

			decoded, n2, err := decodeBinary(&buf)
			require.NoError(t, err)
			assert.Equal(t, n, n2)
			assert.Equal(t, tt.value, decoded)
		})
	}
}

func TestEncodeBinaryTooLong(t *testing.T) {
	var buf bytes.Buffer
	_, err := encodeBinary(&buf, bytes.Repeat([]byte{0x01}, maxUint16+1))
	assert.ErrorIs(t, err, ErrBinaryTooLong)
}

func TestEncodeDecodeVarint(t *testing.T) {
	tests := []struct {
		value uint32
		bytes []byte
	}{
		{value: 0, bytes: []byte{0x00}},
		{value: 127, bytes: []byte{0x7F}},
		{value: 128, bytes: []byte{0x80, 0x01}},
		{value: 16383, bytes: []byte{0xFF, 0x7F}},
		{value: 16384, bytes: []byte{0x80, 0x80, 0x01}},
		{value: 2097151, bytes: []byte{0xFF, 0xFF, 0x7F}},
		{value: 2097152, bytes: []byte{0x80, 0x80, 0x80, 0x01}},
		{value: maxVarint, bytes: []byte{0xFF, 0xFF, 0xFF, 0x7F}},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		n, err := encodeVarint(&buf, tt.value)
		require.NoError(t, err)
		assert.Equal(t, tt.bytes, buf.Bytes(), "value %d", tt.value)
		assert.Equal(t, len(tt.bytes), n)

		decoded, n2, err := decodeVarint(&buf)
		require.NoError(t, err)
		assert.Equal(t, tt.value, decoded)
		assert.Equal(t, n, n2)
	}
}

func TestEncodeVarintTooLarge(t *testing.T) {
	var buf bytes.Buffer
	_, err := encodeVarint(&buf, maxVarint+1)
	assert.ErrorIs(t, err, ErrVarintTooLarge)
}

func TestDecodeVarintMalformed(t *testing.T) {
	// Continuation bit set on all four bytes
	r := bytes.NewReader([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0x7F})
	_, _, err := decodeVarint(r)
	assert.ErrorIs(t, err, ErrVarintMalformed)
}

func TestDecodeVarintTruncated(t *testing.T) {
	r := bytes.NewReader([]byte{0x80})
	_, _, err := decodeVarint(r)
	assert.Error(t, err)
}

func TestVarintSize(t *testing.T) {
	assert.Equal(t, 1, varintSize(0))
	assert.Equal(t, 1, varintSize(127))
	assert.Equal(t, 2, varintSize(128))
	assert.Equal(t, 2, varintSize(16383))
	assert.Equal(t, 3, varintSize(16384))
	assert.Equal(t, 3, varintSize(2097151))
	assert.Equal(t, 4, varintSize(2097152))
	assert.Equal(t, 4, varintSize(maxVarint))
}
