package tiff

import (
	"encoding/binary"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderValidity(t *testing.T) {
	tests := []struct {
		name    string
		order   binary.ByteOrder
		marker  string
		version uint16
		valid   bool
	}{
		{name: "little-endian", order: binary.LittleEndian, marker: "II", version: 42, valid: true},
		{name: "big-endian", order: binary.BigEndian, marker: "MM", version: 42, valid: true},
		{name: "mixed marker", order: binary.LittleEndian, marker: "IM", version: 42},
		{name: "lowercase marker", order: binary.LittleEndian, marker: "ii", version: 42},
		{name: "garbage marker", order: binary.BigEndian, marker: "\x89P", version: 42},
		{name: "version 43", order: binary.LittleEndian, marker: "II", version: 43},
		{name: "BigTIFF", order: binary.BigEndian, marker: "MM", version: 43},
		{name: "version 0", order: binary.BigEndian, marker: "MM", version: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := rgb8(tt.order, 2, 2, 2)
			f.marker = tt.marker
			f.version = tt.version

			r, err := decodeBytes(f.bytes())
			require.NotNil(t, r)
			assert.Equal(t, tt.valid, r.Valid())
			if tt.valid {
				assert.NoError(t, err)
				assert.Equal(t, tt.order, r.ByteOrder())
				return
			}
			assert.IsType(t, FormatError(""), errors.Cause(err))
			assert.Equal(t, 0, r.PageCount())
		})
	}
}

func TestHeaderFields(t *testing.T) {
	f := rgb8(binary.BigEndian, 3, 2, 1)
	r, err := decodeBytes(f.bytes())
	require.NoError(t, err)

	assert.Equal(t, Header{Order: [2]byte{'M', 'M'}, Version: 42, Offset: f.ifdOffset()}, r.Header())
}

func TestHeaderTruncated(t *testing.T) {
	r, err := decodeBytes([]byte("II*\x00"))
	assert.Equal(t, errShortRead, errors.Cause(err))
	assert.False(t, r.Valid())
	assert.Equal(t, StateOpened, r.State())
}

func TestHeaderOffsetInsideHeader(t *testing.T) {
	b := rgb8(binary.LittleEndian, 1, 1, 1).bytes()
	binary.LittleEndian.PutUint32(b[4:], 4)

	_, err := decodeBytes(b)
	assert.IsType(t, FormatError(""), errors.Cause(err))
}

func TestFetchDirectory(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		t.Run(order.String(), func(t *testing.T) {
			f := newFixture(order).
				short(TagImageWidth, 7).
				long(TagImageLength, 9).
				short(TagBitsPerSample, 8, 8, 8).
				short(Tag(0xC612), 1).
				strips(make([]byte, 7*9*3))
			f.next = 0xCAFE

			r, err := NewReader(NewBytesStorage(f.bytes()))
			require.NoError(t, err)
			require.NoError(t, r.readHeader())

			d, err := r.fetchDirectory(r.header.Offset)
			require.NoError(t, err)

			slot := func(v uint32, size int) (b [4]byte) {
				switch size {
				case 2:
					order.PutUint16(b[:], uint16(v))
				case 4:
					order.PutUint32(b[:], v)
				}
				return
			}
			entry := func(tag Tag, typ DataType, count uint32, raw [4]byte) TagEntry {
				return TagEntry{Tag: tag, Type: typ, Count: count, Raw: raw, Data: order.Uint32(raw[:])}
			}
			want := Directory{
				Offset: f.ifdOffset(),
				Next:   0xCAFE,
				Entries: []TagEntry{
					entry(TagImageWidth, DTShort, 1, slot(7, 2)),
					entry(TagImageLength, DTLong, 1, slot(9, 4)),
					entry(TagBitsPerSample, DTShort, 3, slot(headerLen, 4)),
					entry(TagStripOffsets, DTLong, 1, slot(headerLen+6, 4)),
					entry(TagStripByteCounts, DTLong, 1, slot(7*9*3, 4)),
					entry(Tag(0xC612), DTShort, 1, slot(1, 2)),
				},
			}
			if diff := cmp.Diff(want, d); diff != "" {
				t.Errorf("directory mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFetchDirectoryTruncated(t *testing.T) {
	b := rgb8(binary.LittleEndian, 2, 2, 2).bytes()
	_, err := decodeBytes(b[:len(b)-10])
	assert.Equal(t, errShortRead, errors.Cause(err))
}

func TestNextDirectoryNotFollowed(t *testing.T) {
	f := rgb8(binary.LittleEndian, 2, 2, 2)
	f.next = 8 // Would loop on a reader following it.

	r, err := decodeBytes(f.bytes())
	require.NoError(t, err)
	assert.Equal(t, 1, r.PageCount())
	require.Len(t, r.Directories(), 1)
	assert.Equal(t, uint32(8), r.Directories()[0].Next)
}

func TestTagEntryScalar(t *testing.T) {
	le := TagEntry{Type: DTShort, Count: 1, Data: binary.LittleEndian.Uint32([]byte{0x34, 0x12, 0, 0})}
	assert.Equal(t, uint32(0x1234), le.scalar(binary.LittleEndian, 2))

	// A big-endian short sits in the first two bytes of the slot.
	be := TagEntry{Type: DTShort, Count: 1, Data: binary.BigEndian.Uint32([]byte{0x12, 0x34, 0, 0})}
	assert.Equal(t, uint32(0x1234), be.scalar(binary.BigEndian, 2))

	b := TagEntry{Type: DTByte, Count: 1, Data: binary.BigEndian.Uint32([]byte{0xAB, 0, 0, 0})}
	assert.Equal(t, uint32(0xAB), b.scalar(binary.BigEndian, 1))

	l := TagEntry{Type: DTLong, Count: 1, Data: 0xDEADBEEF}
	assert.Equal(t, uint32(0xDEADBEEF), l.scalar(binary.BigEndian, 4))
	assert.Equal(t, uint32(0xDEADBEEF), l.scalar(binary.LittleEndian, 4))
}

func TestTagEntryInline(t *testing.T) {
	assert.True(t, TagEntry{Type: DTShort, Count: 2}.Inline())
	assert.False(t, TagEntry{Type: DTShort, Count: 3}.Inline())
	assert.True(t, TagEntry{Type: DTASCII, Count: 4}.Inline())
	assert.False(t, TagEntry{Type: DTRational, Count: 1}.Inline())
	assert.Equal(t, uint64(16), TagEntry{Type: DTDouble, Count: 2}.Len())
	assert.Equal(t, uint64(0), TagEntry{Type: DataType(99), Count: 2}.Len())
}
