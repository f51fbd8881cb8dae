package metalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hypertable-io/rangestore/internal/errkind"
)

func TestDynamicBufferRoundTrip(t *testing.T) {
	buf := NewDynamicBuffer(16)
	buf.PutUint16(0x1234)
	buf.PutUint32(0xdeadbeef)
	buf.PutUint64(0x0102030405060708)
	buf.PutString("hello")

	c := NewCursor(buf.Bytes())

	v16, err := c.GetUint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), v16)

	v32, err := c.GetUint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xdeadbeef), v32)

	v64, err := c.GetUint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0102030405060708), v64)

	s, err := c.GetString()
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	assert.Zero(t, c.Remain())
}

func TestCursorShortBuffer(t *testing.T) {
	c := NewCursor([]byte{0x01})
	_, err := c.GetUint32()
	require.Error(t, err)
	assert.ErrorIs(t, err, errkind.ErrShortBuffer)
}

func TestCursorStringTruncated(t *testing.T) {
	buf := NewDynamicBuffer(4)
	buf.PutUint16(10) // claims 10 bytes follow, but none do
	c := NewCursor(buf.Bytes())
	_, err := c.GetString()
	require.Error(t, err)
}
