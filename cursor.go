package tiff

import (
	"encoding/binary"
	"unsafe"
)

// cursor is a read head over a byte span. Multi-byte scalars are decoded with
// the byte order of the file, which amounts to a native read followed by a
// byte swap when the file order differs from the host order.
//
// Reading past the end of buf is a programming error and panics: callers size
// the span to cover all their reads.
type cursor struct {
	buf   []byte
	pos   int
	order binary.ByteOrder
}

func newCursor(buf []byte, order binary.ByteOrder) *cursor {
	return &cursor{buf: buf, order: order}
}

func (c *cursor) u8() uint8 {
	v := c.buf[c.pos]
	c.pos++
	return v
}

func (c *cursor) u16() uint16 {
	v := c.order.Uint16(c.buf[c.pos : c.pos+2])
	c.pos += 2
	return v
}

func (c *cursor) u32() uint32 {
	v := c.order.Uint32(c.buf[c.pos : c.pos+4])
	c.pos += 4
	return v
}

func (c *cursor) u64() uint64 {
	v := c.order.Uint64(c.buf[c.pos : c.pos+8])
	c.pos += 8
	return v
}

func (c *cursor) bytes(n int) []byte {
	v := c.buf[c.pos : c.pos+n]
	c.pos += n
	return v
}

// reset moves the read head back to the start of the span.
func (c *cursor) reset() {
	c.pos = 0
}

// word is the closed set of element types a cursor can decode.
type word interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// sizeOf returns the width in bytes of the element type W.
func sizeOf[W word]() int {
	var w W
	return int(unsafe.Sizeof(w))
}

// readArray fills dst with consecutive scalars of dst's element width.
func readArray[W word](c *cursor, dst []W) {
	switch sizeOf[W]() {
	case 1:
		for i := range dst {
			dst[i] = W(c.u8())
		}
	case 2:
		for i := range dst {
			dst[i] = W(c.u16())
		}
	case 4:
		for i := range dst {
			dst[i] = W(c.u32())
		}
	case 8:
		for i := range dst {
			dst[i] = W(c.u64())
		}
	}
}

// hostSwaps reports whether reading with order requires byte reversal on this host.
func hostSwaps(order binary.ByteOrder) bool {
	hostBig := binary.NativeEndian.Uint16([]byte{0x00, 0x01}) == 0x0001
	return hostBig != (order == binary.ByteOrder(binary.BigEndian))
}
