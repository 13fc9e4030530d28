package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUintCodecRoundTrip(t *testing.T) {
	for _, width := range UnsignedWidths {
		c := newUintCodec(width)
		max := maxUnsigned(width)
		for _, u := range []uint64{0, 1, max / 2, max} {
			buf := make([]byte, width)
			require.NoError(t, c.Write(buf, Value{Field: c.Type(), U: u}))
			got, err := c.Read(buf)
			require.NoError(t, err)
			assert.Equal(t, u, got.U)
		}
	}
}

func TestUintCodecOverflow(t *testing.T) {
	c := newUintCodec(3)
	buf := make([]byte, 3)
	err := c.Write(buf, Value{Field: c.Type(), U: maxUnsigned(3) + 1})
	assert.Error(t, err, "expected overflow error for u3 write")
}

func TestUintCodecWrongBufferSize(t *testing.T) {
	c := newUintCodec(4)
	_, err := c.Read(make([]byte, 3))
	assert.Error(t, err, "expected error reading wrong-sized buffer")

	err = c.Write(make([]byte, 5), Value{Field: c.Type(), U: 1})
	assert.Error(t, err, "expected error writing wrong-sized buffer")
}

func TestIntCodecRoundTrip(t *testing.T) {
	for _, width := range SignedWidths {
		c := newIntCodec(width)
		lo, hi := minMaxSigned(width)
		for _, i := range []int64{lo, -1, 0, 1, hi} {
			buf := make([]byte, width)
			require.NoError(t, c.Write(buf, Value{Field: c.Type(), I: i}))
			got, err := c.Read(buf)
			require.NoError(t, err)
			assert.Equal(t, i, got.I)
		}
	}
}

func TestIntCodecOutOfRange(t *testing.T) {
	c := newIntCodec(3)
	_, hi := minMaxSigned(3)
	buf := make([]byte, 3)
	err := c.Write(buf, Value{Field: c.Type(), I: hi + 1})
	assert.Error(t, err, "expected range error for i3 write above max")
}
