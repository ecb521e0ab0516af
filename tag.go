package tiff

import (
	"encoding/binary"
	"fmt"
)

// TagEntry is one 12-byte IFD entry.
type TagEntry struct {
	Tag   Tag
	Type  DataType
	Count uint32

	// Data is the inline slot decoded as a 32-bit value in the file byte order.
	// It holds the value itself when Count values of Type fit in 4 bytes,
	// otherwise the file offset of the values.
	Data uint32
	// Raw is the inline slot as stored in the file.
	Raw [4]byte
}

// Len returns the length in bytes of the entry values.
func (e TagEntry) Len() uint64 {
	return uint64(e.Count) * uint64(e.Type.Size())
}

// Inline reports whether the values are stored in the entry itself.
func (e TagEntry) Inline() bool {
	return e.Len() <= 4
}

// Offset returns the file offset of out-of-line values.
func (e TagEntry) Offset() int64 {
	return int64(e.Data)
}

// scalar returns the inline value of width size bytes. Values shorter than the
// slot are left-justified in it, which puts them in the high bits of Data when
// the file is big-endian.
func (e TagEntry) scalar(order binary.ByteOrder, size int) uint32 {
	v := e.Data
	if order == binary.ByteOrder(binary.BigEndian) {
		v >>= uint(4-size) * 8
	}
	if size < 4 {
		v &= 1<<(uint(size)*8) - 1
	}
	return v
}

// String implements Stringer.
func (e TagEntry) String() string {
	where := "inline"
	if !e.Inline() {
		where = fmt.Sprintf("@%d", e.Data)
	}
	return fmt.Sprintf("%s (0x%04X) %s[%d] %s: 0x%08X", e.Tag, uint16(e.Tag), e.Type, e.Count, where, e.Data)
}
