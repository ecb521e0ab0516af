package tiff

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/pkg/errors"
)

// Color holds the raw sample values of a pixel, in sample order.
// Samples beyond the fourth are ignored.
type Color struct {
	R, G, B, A uint32
}

// access is what a Page needs to read its strips: the file, its byte order and
// the pool holding the page slot.
type access struct {
	src   io.ReaderAt
	order binary.ByteOrder
	pool  *Pool
}

// A Page is one decoded image of a TIFF file. Its fields are set while the
// Reader decodes and must not be modified afterwards.
type Page struct {
	acc  access
	slot int
	once sync.Once

	Width           int
	Height          int
	BitsPerSample   []int
	SamplesPerPixel int
	BytesPerPixel   int
	Compression     Compression
	Colorspace      Photometric
	Palette         []uint16 // Red, green then blue blocks of 2^bits entries.
	StripOffsets    []uint32
	StripByteCounts []uint32
	RowsPerStrip    int
	ExtraSamples    int
	ExtraSampleType ExtraSample
	Planar          Planar
	XResolution     Rational
	YResolution     Rational
	ResolutionUnit  ResolutionUnit
	Description     string
	DateTime        string
}

// newPage checks out a pool slot for the page.
func newPage(acc access) (*Page, error) {
	id, err := acc.pool.Acquire()
	if err != nil {
		return nil, err
	}
	return &Page{
		acc:             acc,
		slot:            id,
		BitsPerSample:   []int{1},
		SamplesPerPixel: 1,
		Compression:     CompressionNone,
		Planar:          PlanarContig,
		ResolutionUnit:  ResolutionPerInch,
	}, nil
}

// Close returns the page slot to the pool. Buffered pixel reads fail afterwards.
// It must not be called while other goroutines are reading pixels.
func (p *Page) Close() (err error) {
	p.once.Do(func() {
		err = p.acc.pool.Release(p.slot)
		p.slot = -1
	})
	return
}

// Pixel returns the samples of the pixel at (x, y), reading through the page
// pool slot. Consecutive pixels of a strip are usually served from the slot
// without touching the storage.
func (p *Page) Pixel(x, y int) (Color, error) {
	if p.slot < 0 {
		return Color{}, InternalError("pixel read on a closed page")
	}
	strip, intra, err := p.find(x, y)
	if err != nil {
		return Color{}, err
	}

	pool := p.acc.pool
	pool.Lock(p.slot)
	defer pool.Unlock(p.slot)

	b, err := pool.fetch(p.acc.src, p.slot, strip, int64(p.StripOffsets[strip]), int(p.StripByteCounts[strip]), intra, p.BytesPerPixel)
	if err != nil {
		return Color{}, errors.Wrapf(err, "could not read pixel (%d, %d)", x, y)
	}
	return p.unpack(b), nil
}

// PixelUnbuffered is like Pixel but reads straight from the storage,
// bypassing the pool.
func (p *Page) PixelUnbuffered(x, y int) (Color, error) {
	strip, intra, err := p.find(x, y)
	if err != nil {
		return Color{}, err
	}

	b := make([]byte, p.BytesPerPixel)
	if err = readFull(p.acc.src, b, int64(p.StripOffsets[strip])+intra); err != nil {
		return Color{}, errors.Wrapf(err, "could not read pixel (%d, %d)", x, y)
	}
	return p.unpack(b), nil
}

// find returns the strip holding the pixel at (x, y) and its offset in the strip.
func (p *Page) find(x, y int) (int, int64, error) {
	if x < 0 || y < 0 || x >= p.Width || y >= p.Height {
		return 0, 0, ErrOutOfRange
	}
	off := (int64(y)*int64(p.Width) + int64(x)) * int64(p.BytesPerPixel)
	strip, intra, err := p.locate(off)
	if err != nil {
		return 0, 0, err
	}
	if intra+int64(p.BytesPerPixel) > int64(p.StripByteCounts[strip]) {
		return 0, 0, FormatError("pixel spans two strips")
	}
	return strip, intra, nil
}

// locate maps a byte offset of the uncompressed, row-major pixel grid to a
// strip index and the offset inside that strip.
func (p *Page) locate(off int64) (int, int64, error) {
	var total int64
	for i, n := range p.StripByteCounts {
		if total+int64(n) > off {
			return i, off - total, nil
		}
		total += int64(n)
	}
	return 0, 0, ErrOutOfRange
}

// unpack extracts the samples of one pixel from b. Byte-aligned 16 and 32-bit
// samples are stored in the file byte order; other samples are bit-packed,
// most significant bit first.
func (p *Page) unpack(b []byte) Color {
	var s [4]uint32
	pos := 0
	for i, n := range p.BitsPerSample {
		if i == len(s) {
			break
		}
		switch {
		case pos%8 == 0 && n == 16:
			s[i] = uint32(p.acc.order.Uint16(b[pos/8:]))
		case pos%8 == 0 && n == 32:
			s[i] = p.acc.order.Uint32(b[pos/8:])
		default:
			s[i] = extractBits(b, pos, n)
		}
		pos += n
	}
	return Color{R: s[0], G: s[1], B: s[2], A: s[3]}
}

// extractBits returns the n bits of b starting at bit pos, n <= 32. Bit 0 is
// the most significant bit of b[0]; a sample may straddle byte boundaries.
func extractBits(b []byte, pos, n int) uint32 {
	if n == 0 {
		return 0
	}
	first, last := pos/8, (pos+n-1)/8

	var v uint64
	for _, c := range b[first : last+1] {
		v = v<<8 | uint64(c)
	}
	v >>= uint((last+1)*8 - (pos + n))
	return uint32(v & (1<<uint(n) - 1))
}

//------------------------//
// image.Image            //
//------------------------//

// ColorModel implements image.Image.
func (p *Page) ColorModel() color.Model {
	return color.NRGBA64Model
}

// Bounds implements image.Image.
func (p *Page) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.Width, p.Height)
}

// At implements image.Image by resolving the page colorspace.
// Pixels that cannot be read are transparent.
func (p *Page) At(x, y int) color.Color {
	c, err := p.Pixel(x, y)
	if err != nil {
		return color.NRGBA64{}
	}

	sample := func(i int, v uint32) uint16 {
		if i >= len(p.BitsPerSample) {
			return 0
		}
		return scale(v, p.BitsPerSample[i])
	}
	alpha := func(i int, v uint32) uint16 {
		if p.ExtraSamples == 0 || i >= len(p.BitsPerSample) {
			return 0xFFFF
		}
		return scale(v, p.BitsPerSample[i])
	}

	switch p.Colorspace {
	case PhotometricMinIsBlack, PhotometricMask:
		g := sample(0, c.R)
		return color.NRGBA64{R: g, G: g, B: g, A: alpha(1, c.G)}
	case PhotometricMinIsWhite:
		g := 0xFFFF - sample(0, c.R)
		return color.NRGBA64{R: g, G: g, B: g, A: alpha(1, c.G)}
	case PhotometricPalette:
		n := len(p.Palette) / 3
		i := int(c.R)
		if i >= n {
			return color.NRGBA64{}
		}
		return color.NRGBA64{R: p.Palette[i], G: p.Palette[n+i], B: p.Palette[2*n+i], A: 0xFFFF}
	case PhotometricRGB:
		r, g, b, a := sample(0, c.R), sample(1, c.G), sample(2, c.B), alpha(3, c.A)
		if p.ExtraSampleType == ExtraSampleAssocAlpha && p.ExtraSamples > 0 && a != 0 && a != 0xFFFF {
			r, g, b = unpremultiply(r, a), unpremultiply(g, a), unpremultiply(b, a)
		}
		return color.NRGBA64{R: r, G: g, B: b, A: a}
	default:
		return color.NRGBA64{}
	}
}

// scale maps a sample of the given bit depth to 16 bits.
func scale(v uint32, bits int) uint16 {
	if bits <= 0 {
		return 0
	}
	max := uint64(1)<<uint(bits) - 1
	return uint16(uint64(v) * 0xFFFF / max)
}

func unpremultiply(v, a uint16) uint16 {
	n := uint32(v) * 0xFFFF / uint32(a)
	if n > 0xFFFF {
		n = 0xFFFF
	}
	return uint16(n)
}

func (p *Page) String() string {
	return fmt.Sprintf("%dx%d %s %v bits", p.Width, p.Height, p.Colorspace, p.BitsPerSample)
}
