package tiff

import (
	"bytes"
	"encoding/binary"
	"io"
	"sort"
	"sync"
)

// fixture builds small TIFF files in memory. Layout: header, data area
// (strips and out-of-line values, in insertion order), then the IFD.
type fixture struct {
	order   binary.ByteOrder
	marker  string
	version uint16
	data    []byte
	entries []fixtureEntry
	next    uint32
}

type fixtureEntry struct {
	tag   Tag
	typ   DataType
	count uint32
	slot  [4]byte
}

func newFixture(order binary.ByteOrder) *fixture {
	marker := leOrder
	if order == binary.ByteOrder(binary.BigEndian) {
		marker = beOrder
	}
	return &fixture{order: order, marker: marker, version: version}
}

// blob appends b to the data area, word aligned, and returns its file offset.
func (f *fixture) blob(b []byte) uint32 {
	if len(f.data)%2 != 0 {
		f.data = append(f.data, 0)
	}
	off := uint32(headerLen + len(f.data))
	f.data = append(f.data, b...)
	return off
}

func (f *fixture) entry(tag Tag, typ DataType, count uint32, value []byte) *fixture {
	e := fixtureEntry{tag: tag, typ: typ, count: count}
	if len(value) <= 4 {
		copy(e.slot[:], value)
	} else {
		f.order.PutUint32(e.slot[:], f.blob(value))
	}
	f.entries = append(f.entries, e)
	return f
}

func (f *fixture) bytes8(tag Tag, vs ...uint8) *fixture {
	return f.entry(tag, DTByte, uint32(len(vs)), vs)
}

func (f *fixture) short(tag Tag, vs ...uint16) *fixture {
	b := make([]byte, 2*len(vs))
	for i, v := range vs {
		f.order.PutUint16(b[2*i:], v)
	}
	return f.entry(tag, DTShort, uint32(len(vs)), b)
}

func (f *fixture) long(tag Tag, vs ...uint32) *fixture {
	b := make([]byte, 4*len(vs))
	for i, v := range vs {
		f.order.PutUint32(b[4*i:], v)
	}
	return f.entry(tag, DTLong, uint32(len(vs)), b)
}

func (f *fixture) ascii(tag Tag, s string) *fixture {
	b := append([]byte(s), 0)
	return f.entry(tag, DTASCII, uint32(len(b)), b)
}

func (f *fixture) rational(tag Tag, num, den uint32) *fixture {
	b := make([]byte, 8)
	f.order.PutUint32(b, num)
	f.order.PutUint32(b[4:], den)
	return f.entry(tag, DTRational, 1, b)
}

// dangling adds an out-of-line entry whose values lie past the end of the file.
func (f *fixture) dangling(tag Tag, typ DataType, count uint32) *fixture {
	e := fixtureEntry{tag: tag, typ: typ, count: count}
	f.order.PutUint32(e.slot[:], 1<<20)
	f.entries = append(f.entries, e)
	return f
}

// strips stores each strip and sets StripOffsets and StripByteCounts.
func (f *fixture) strips(strips ...[]byte) *fixture {
	offsets := make([]uint32, len(strips))
	counts := make([]uint32, len(strips))
	for i, s := range strips {
		offsets[i] = f.blob(s)
		counts[i] = uint32(len(s))
	}
	return f.long(TagStripOffsets, offsets...).long(TagStripByteCounts, counts...)
}

// ifdOffset returns where bytes will place the IFD.
func (f *fixture) ifdOffset() uint32 {
	return uint32(headerLen + len(f.data) + len(f.data)%2)
}

func (f *fixture) bytes() []byte {
	var buf bytes.Buffer
	buf.WriteString(f.marker)
	binary.Write(&buf, f.order, f.version)
	binary.Write(&buf, f.order, f.ifdOffset())
	buf.Write(f.data)
	if len(f.data)%2 != 0 {
		buf.WriteByte(0)
	}

	entries := append([]fixtureEntry(nil), f.entries...)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].tag < entries[j].tag })

	binary.Write(&buf, f.order, uint16(len(entries)))
	for _, e := range entries {
		binary.Write(&buf, f.order, uint16(e.tag))
		binary.Write(&buf, f.order, uint16(e.typ))
		binary.Write(&buf, f.order, e.count)
		buf.Write(e.slot[:])
	}
	binary.Write(&buf, f.order, f.next)
	return buf.Bytes()
}

// rgb8 returns a fixture describing a w x h 8-bit RGB image split in strips
// of rowsPerStrip rows, with sample values derived from the coordinates.
func rgb8(order binary.ByteOrder, w, h, rowsPerStrip int) *fixture {
	var strips [][]byte
	for y0 := 0; y0 < h; y0 += rowsPerStrip {
		var s []byte
		for y := y0; y < y0+rowsPerStrip && y < h; y++ {
			for x := 0; x < w; x++ {
				s = append(s, byte(x), byte(y), byte(x+y))
			}
		}
		strips = append(strips, s)
	}

	return newFixture(order).
		short(TagImageWidth, uint16(w)).
		short(TagImageLength, uint16(h)).
		short(TagBitsPerSample, 8, 8, 8).
		short(TagCompression, uint16(CompressionNone)).
		short(TagPhotometricInterpretation, uint16(PhotometricRGB)).
		short(TagSamplesPerPixel, 3).
		short(TagRowsPerStrip, uint16(rowsPerStrip)).
		strips(strips...)
}

// readRange is one ReadAt call seen by countingStorage.
type readRange struct {
	off int64
	n   int
}

// countingStorage records the reads made on a Storage.
type countingStorage struct {
	Storage

	mu     sync.Mutex
	reads  []readRange
	closed bool
}

func newCountingStorage(b []byte) *countingStorage {
	return &countingStorage{Storage: NewBytesStorage(b)}
}

func (s *countingStorage) ReadAt(p []byte, off int64) (int, error) {
	s.mu.Lock()
	s.reads = append(s.reads, readRange{off: off, n: len(p)})
	s.mu.Unlock()
	return s.Storage.ReadAt(p, off)
}

func (s *countingStorage) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.Storage.Close()
}

func (s *countingStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reads)
}

func (s *countingStorage) snapshot() []readRange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]readRange(nil), s.reads...)
}

var _ io.ReaderAt = (*countingStorage)(nil)

// decodeBytes decodes b with a fresh reader and pool.
func decodeBytes(b []byte, opts ...Option) (*Reader, error) {
	r, err := NewReader(NewBytesStorage(b), opts...)
	if err != nil {
		return nil, err
	}
	return r, r.Decode()
}
