package metalog

import (
	"encoding/binary"

	"github.com/hypertable-io/rangestore/internal/errkind"
)

// DynamicBuffer is the growable scratch buffer component A specifies:
// little-endian fixed-width integers and length-prefixed strings appended
// to a []byte that grows as needed, matching the teacher's append-and-grow
// DynamicBuffer idiom (no shrink, no reuse across entries).
type DynamicBuffer struct {
	buf []byte
}

// NewDynamicBuffer returns an empty buffer with capacity pre-reserved.
func NewDynamicBuffer(capacityHint int) *DynamicBuffer {
	return &DynamicBuffer{buf: make([]byte, 0, capacityHint)}
}

// Bytes returns the accumulated buffer contents.
func (b *DynamicBuffer) Bytes() []byte { return b.buf }

// Len returns the number of bytes written so far.
func (b *DynamicBuffer) Len() int { return len(b.buf) }

// PutUint16 appends a little-endian uint16.
func (b *DynamicBuffer) PutUint16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

// PutUint32 appends a little-endian uint32.
func (b *DynamicBuffer) PutUint32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

// PutUint64 appends a little-endian uint64.
func (b *DynamicBuffer) PutUint64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	b.buf = append(b.buf, tmp[:]...)
}

// PutString appends a u16 length prefix followed by the raw bytes of s (no
// NUL terminator on the wire, per spec.md §4.A).
func (b *DynamicBuffer) PutString(s string) {
	b.PutUint16(uint16(len(s)))
	b.buf = append(b.buf, s...)
}

// PutBytes appends raw bytes with no length prefix, for callers that have
// already written their own framing (used by the record writer to append a
// fully-encoded payload after its length prefix).
func (b *DynamicBuffer) PutBytes(p []byte) {
	b.buf = append(b.buf, p...)
}

// Cursor decodes primitives from a fixed byte slice, advancing in place.
// Every decode method fails with errkind.ErrShortBuffer (unwrapped; callers
// that need the §4.B "decoding X" phase wording wrap it themselves) when the
// requested width exceeds the remaining bytes, leaving the cursor's
// position unspecified past that point — matching spec.md §4.A.
type Cursor struct {
	Buf []byte
}

// NewCursor wraps buf for decoding. The returned Cursor aliases buf; decoded
// strings are copies and do not keep buf alive.
func NewCursor(buf []byte) *Cursor { return &Cursor{Buf: buf} }

// Remain reports how many bytes are left to decode.
func (c *Cursor) Remain() int { return len(c.Buf) }

func (c *Cursor) need(n int) error {
	if len(c.Buf) < n {
		return errkind.ErrShortBuffer
	}
	return nil
}

// GetUint16 decodes a little-endian uint16 and advances the cursor.
func (c *Cursor) GetUint16() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(c.Buf[:2])
	c.Buf = c.Buf[2:]
	return v, nil
}

// GetUint32 decodes a little-endian uint32 and advances the cursor.
func (c *Cursor) GetUint32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(c.Buf[:4])
	c.Buf = c.Buf[4:]
	return v, nil
}

// GetUint64 decodes a little-endian uint64 and advances the cursor.
func (c *Cursor) GetUint64() (uint64, error) {
	if err := c.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(c.Buf[:8])
	c.Buf = c.Buf[8:]
	return v, nil
}

// GetString decodes a u16-length-prefixed string and advances the cursor.
// The returned string is a copy of the bytes, not a view into the buffer.
func (c *Cursor) GetString() (string, error) {
	n, err := c.GetUint16()
	if err != nil {
		return "", err
	}
	if err := c.need(int(n)); err != nil {
		return "", err
	}
	s := string(c.Buf[:n])
	c.Buf = c.Buf[n:]
	return s, nil
}
