package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrCodecRoundTrip(t *testing.T) {
	c := newStrCodec(8)
	buf := make([]byte, 8)
	require.NoError(t, c.Write(buf, Value{Field: c.Type(), S: "hi"}))
	got, err := c.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hi", got.S)
}

func TestStrCodecPadding(t *testing.T) {
	c := newStrCodec(8)
	buf := make([]byte, 8)
	require.NoError(t, c.Write(buf, Value{Field: c.Type(), S: "ab"}))
	for i := 2; i < 8; i++ {
		assert.Equalf(t, byte(0), buf[i], "expected zero padding at byte %d", i)
	}
}

func TestStrCodecTruncatesOnWrite(t *testing.T) {
	c := newStrCodec(4)
	buf := make([]byte, 4)
	require.NoError(t, c.Write(buf, Value{Field: c.Type(), S: "abcdef"}))
	got, err := c.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "abcd", got.S)
}

func TestStrCodecWrongBufferSize(t *testing.T) {
	c := newStrCodec(8)
	_, err := c.Read(make([]byte, 4))
	assert.Error(t, err, "expected error reading wrong-sized buffer")

	err = c.Write(make([]byte, 4), Value{Field: c.Type(), S: "x"})
	assert.Error(t, err, "expected error writing wrong-sized buffer")
}

func TestStrCodecRejectsInvalidUTF8(t *testing.T) {
	c := newStrCodec(4)
	buf := []byte{0xff, 0xfe, 0x00, 0x00}
	_, err := c.Read(buf)
	assert.Error(t, err, "expected error decoding invalid UTF-8")
}
