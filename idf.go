package tiff

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

//------------------------//
// Header parser          //
//------------------------//

// Header is the 8-byte TIFF file header.
type Header struct {
	Order   [2]byte // "II" or "MM"
	Version uint16  // Always 42.
	Offset  uint32  // Offset of the first IFD.
}

// Directory is an Image File Directory.
type Directory struct {
	Offset  uint32
	Entries []TagEntry
	Next    uint32 // Offset of the next IFD, 0 for the last one. Never followed.
}

// byteOrderOf maps the header order marker to a byte order.
func byteOrderOf(marker []byte) (binary.ByteOrder, error) {
	switch string(marker) {
	case leOrder:
		return binary.LittleEndian, nil
	case beOrder:
		return binary.BigEndian, nil
	default:
		return nil, FormatError("malformed header: bad byte order marker")
	}
}

// readHeader decodes the file header and sets the reader byte order.
func (r *Reader) readHeader() error {
	var perr error
	err := r.pool.readHeader(r.src, 0, headerLen, func(p []byte) {
		c := newCursor(p, nil)
		copy(r.header.Order[:], c.bytes(2))
		if r.order, perr = byteOrderOf(r.header.Order[:]); perr != nil {
			return
		}
		c.order = r.order
		r.header.Version = c.u16()
		r.header.Offset = c.u32()
	})
	if err != nil {
		return errors.Wrap(err, "could not read header")
	}
	if perr != nil {
		return perr
	}

	if r.header.Version != version {
		return FormatError("malformed header: bad version")
	}
	if r.header.Offset < headerLen {
		return FormatError("malformed header: IFD offset inside header")
	}
	return nil
}

// fetchDirectory reads the IFD located at offset.
func (r *Reader) fetchDirectory(offset uint32) (Directory, error) {
	d := Directory{Offset: offset}

	// The first two bytes contain the number of entries (12 bytes each).
	var count uint16
	err := r.pool.readHeader(r.src, int64(offset), 2, func(p []byte) {
		count = newCursor(p, r.order).u16()
	})
	if err != nil {
		return d, errors.Wrap(err, "could not read IFD entry count")
	}

	d.Entries = make([]TagEntry, count)
	for i := range d.Entries {
		pos := int64(offset) + 2 + int64(i)*ifdLen
		err = r.pool.readHeader(r.src, pos, ifdLen, func(p []byte) {
			d.Entries[i] = parseEntry(newCursor(p, r.order))
		})
		if err != nil {
			return d, errors.Wrapf(err, "could not read IFD entry %d", i)
		}
	}

	pos := int64(offset) + 2 + int64(count)*ifdLen
	err = r.pool.readHeader(r.src, pos, 4, func(p []byte) {
		d.Next = newCursor(p, r.order).u32()
	})
	if err != nil {
		return d, errors.Wrap(err, "could not read next IFD offset")
	}
	return d, nil
}

// parseEntry decodes one 12-byte entry.
func parseEntry(c *cursor) TagEntry {
	e := TagEntry{
		Tag:   Tag(c.u16()),
		Type:  DataType(c.u16()),
		Count: c.u32(),
	}
	copy(e.Raw[:], c.bytes(4))
	e.Data = c.order.Uint32(e.Raw[:])
	return e
}
