package tiff

import (
	"fmt"

	"github.com/pkg/errors"
)

// maxTagLen bounds the out-of-line values of a single entry so a corrupt
// count cannot make the decoder allocate gigabytes.
const maxTagLen = 10 << 20 // 10M

// tagHandler populates p from the entry e.
type tagHandler func(r *Reader, e TagEntry, p *Page) error

// tagHandlers maps the interpreted tags to their handler. Tags missing from
// the table are skipped.
var tagHandlers = map[Tag]tagHandler{
	TagImageWidth:                imageWidth,
	TagImageLength:               imageLength,
	TagBitsPerSample:             bitsPerSample,
	TagCompression:               compression,
	TagPhotometricInterpretation: photometricInterpretation,
	TagStripOffsets:              stripOffsets,
	TagRowsPerStrip:              rowsPerStrip,
	TagStripByteCounts:           stripByteCounts,
	TagXResolution:               xResolution,
	TagYResolution:               yResolution,
	TagPlanarConfiguration:       planarConfiguration,
	TagResolutionUnit:            resolutionUnit,
	TagColorMap:                  colorMap,
	TagImageDescription:          imageDescription,
	TagSamplesPerPixel:           samplesPerPixel,
	TagDateTime:                  dateTime,
	TagExtraSamples:              extraSamples,
}

// Rational is an unsigned TIFF rational.
type Rational struct {
	Num uint32
	Den uint32
}

// Float64 returns the value of the rational, 0 when the denominator is 0.
func (q Rational) Float64() float64 {
	if q.Den == 0 {
		return 0
	}
	return float64(q.Num) / float64(q.Den)
}

func (q Rational) String() string {
	if q.Den == 1 {
		return fmt.Sprintf("%d", q.Num)
	}
	return fmt.Sprintf("%d/%d", q.Num, q.Den)
}

//------------------------//
// Value readers          //
//------------------------//

// readOutOfLine decodes n values of W located at off, through the header slot.
// Reads are chunked to the slot capacity rounded down to a multiple of W.
func readOutOfLine[W word](r *Reader, off int64, n int) ([]W, error) {
	size := sizeOf[W]()
	if n*size > maxTagLen {
		return nil, FormatError("IFD data too large")
	}

	dst := make([]W, n)
	i := 0
	err := r.pool.readChunked(r.src, off, n, size, func(chunk []byte) {
		m := len(chunk) / size
		readArray(newCursor(chunk, r.order), dst[i:i+m])
		i += m
	})
	if err != nil {
		return nil, errors.Wrapf(err, "could not read values at offset %d", off)
	}
	return dst, nil
}

// loadArray decodes the values of e, which must have W's width, either from
// the inline slot or from the file.
func loadArray[W word](r *Reader, e TagEntry) ([]W, error) {
	if int(e.Type.Size()) != sizeOf[W]() {
		return nil, InternalError("value width mismatch")
	}
	if e.Count == 0 {
		return nil, nil
	}
	if !e.Inline() {
		return readOutOfLine[W](r, e.Offset(), int(e.Count))
	}

	dst := make([]W, e.Count)
	if e.Count == 1 {
		dst[0] = W(e.scalar(r.order, sizeOf[W]()))
		return dst, nil
	}
	readArray(newCursor(e.Raw[:], r.order), dst)
	return dst, nil
}

func widen[W word](src []W) []uint32 {
	dst := make([]uint32, len(src))
	for i, v := range src {
		dst[i] = uint32(v)
	}
	return dst
}

// readUints decodes the values of e, which must be of the Byte, Short or Long type.
func readUints(r *Reader, e TagEntry) ([]uint32, error) {
	switch e.Type {
	case DTByte:
		v, err := loadArray[uint8](r, e)
		return widen(v), err
	case DTShort:
		v, err := loadArray[uint16](r, e)
		return widen(v), err
	case DTLong:
		return loadArray[uint32](r, e)
	default:
		return nil, FormatError(fmt.Sprintf("%s: unexpected data type %s", e.Tag, e.Type))
	}
}

// scalarOf returns the first value of e, or 0 when e is not an unsigned integer.
func scalarOf(r *Reader, e TagEntry) (uint32, error) {
	switch e.Type {
	case DTByte, DTShort, DTLong:
	default:
		return 0, nil
	}
	if e.Inline() {
		return e.scalar(r.order, int(e.Type.Size())), nil
	}
	switch e.Type {
	case DTByte:
		v, err := readOutOfLine[uint8](r, e.Offset(), 1)
		if err != nil {
			return 0, err
		}
		return uint32(v[0]), nil
	case DTShort:
		v, err := readOutOfLine[uint16](r, e.Offset(), 1)
		if err != nil {
			return 0, err
		}
		return uint32(v[0]), nil
	default:
		v, err := readOutOfLine[uint32](r, e.Offset(), 1)
		if err != nil {
			return 0, err
		}
		return v[0], nil
	}
}

// readText decodes an ASCII entry, dropping the trailing NULs.
func readText(r *Reader, e TagEntry) (string, error) {
	switch e.Type {
	case DTASCII, DTByte, DTUndefined:
	default:
		return "", FormatError(fmt.Sprintf("%s: unexpected data type %s", e.Tag, e.Type))
	}

	b, err := loadArray[uint8](r, e)
	if err != nil {
		return "", err
	}
	return decodeText(trimTrailingNulls(b)), nil
}

//------------------------//
// Handlers               //
//------------------------//

func imageWidth(r *Reader, e TagEntry, p *Page) error {
	v, err := scalarOf(r, e)
	if err != nil {
		return err
	}
	p.Width = int(v)
	return nil
}

func imageLength(r *Reader, e TagEntry, p *Page) error {
	v, err := scalarOf(r, e)
	if err != nil {
		return err
	}
	p.Height = int(v)
	return nil
}

func bitsPerSample(r *Reader, e TagEntry, p *Page) error {
	if e.Data == 0 {
		return FormatError("BitsPerSample is empty")
	}
	bits, err := readUints(r, e)
	if err != nil {
		return err
	}

	total := 0
	for _, b := range bits {
		if b == 0 || b > 32 {
			return UnsupportedError(fmt.Sprintf("%d bits per sample", b))
		}
		total += int(b)
	}
	if total%8 != 0 {
		return FormatError(fmt.Sprintf("%d bits per pixel is not a whole number of bytes", total))
	}

	p.BitsPerSample = make([]int, len(bits))
	for i, b := range bits {
		p.BitsPerSample[i] = int(b)
	}
	p.BytesPerPixel = total / 8
	return nil
}

func compression(r *Reader, e TagEntry, p *Page) error {
	v, err := scalarOf(r, e)
	if err != nil {
		return err
	}
	c := Compression(v)
	if c != CompressionNone {
		return UnsupportedError(fmt.Sprintf("compression value %d (%s)", uint16(c), c))
	}
	p.Compression = c
	return nil
}

func photometricInterpretation(r *Reader, e TagEntry, p *Page) error {
	v, err := scalarOf(r, e)
	if err != nil {
		return err
	}
	c := Photometric(v)
	switch c {
	case PhotometricMinIsBlack,
		PhotometricMinIsWhite,
		PhotometricRGB,
		PhotometricPalette,
		PhotometricMask:
		p.Colorspace = c
		return nil
	default:
		return UnsupportedError(fmt.Sprintf("color model %s", c))
	}
}

func stripOffsets(r *Reader, e TagEntry, p *Page) error {
	if e.Data == 0 || e.Count == 0 {
		return FormatError("StripOffsets is empty")
	}
	v, err := readUints(r, e)
	if err != nil {
		return err
	}
	p.StripOffsets = v
	return nil
}

func rowsPerStrip(r *Reader, e TagEntry, p *Page) error {
	v, err := scalarOf(r, e)
	if err != nil {
		return err
	}
	p.RowsPerStrip = int(v)
	return nil
}

func stripByteCounts(r *Reader, e TagEntry, p *Page) error {
	if e.Data == 0 || e.Count == 0 {
		return FormatError("StripByteCounts is empty")
	}
	v, err := readUints(r, e)
	if err != nil {
		return err
	}
	p.StripByteCounts = v
	return nil
}

// readRational decodes the first rational of e. Entries of another type are
// ignored and leave the resolution unset.
func readRational(r *Reader, e TagEntry) (Rational, error) {
	if e.Type != DTRational || e.Count == 0 {
		r.logger.Debug("ignoring resolution", "tag", e.Tag.String(), "type", e.Type.String(), "count", e.Count)
		return Rational{}, nil
	}
	v, err := readOutOfLine[uint32](r, e.Offset(), 2)
	if err != nil {
		return Rational{}, err
	}
	return Rational{Num: v[0], Den: v[1]}, nil
}

func xResolution(r *Reader, e TagEntry, p *Page) (err error) {
	p.XResolution, err = readRational(r, e)
	return
}

func yResolution(r *Reader, e TagEntry, p *Page) (err error) {
	p.YResolution, err = readRational(r, e)
	return
}

func resolutionUnit(r *Reader, e TagEntry, p *Page) error {
	v, err := scalarOf(r, e)
	if err != nil {
		return err
	}
	p.ResolutionUnit = ResolutionUnit(v)
	return nil
}

func planarConfiguration(r *Reader, e TagEntry, p *Page) error {
	v, err := scalarOf(r, e)
	if err != nil {
		return err
	}
	c := Planar(v)
	if c != PlanarContig {
		return UnsupportedError(fmt.Sprintf("planar configuration %s", c))
	}
	p.Planar = c
	return nil
}

func colorMap(r *Reader, e TagEntry, p *Page) error {
	if e.Count == 0 {
		return nil
	}
	if e.Type != DTShort {
		return FormatError(fmt.Sprintf("ColorMap: unexpected data type %s", e.Type))
	}
	if !e.Inline() && e.Data == 0 {
		return FormatError("ColorMap offset is 0")
	}
	v, err := loadArray[uint16](r, e)
	if err != nil {
		return err
	}
	p.Palette = v
	return nil
}

func imageDescription(r *Reader, e TagEntry, p *Page) (err error) {
	if e.Count == 0 {
		return nil
	}
	p.Description, err = readText(r, e)
	return
}

func samplesPerPixel(r *Reader, e TagEntry, p *Page) error {
	v, err := scalarOf(r, e)
	if err != nil {
		return err
	}
	p.SamplesPerPixel = int(v)
	return nil
}

func dateTime(r *Reader, e TagEntry, p *Page) (err error) {
	if e.Count != dateTimeLen {
		return FormatError(fmt.Sprintf("DateTime must be %d bytes, got %d", dateTimeLen, e.Count))
	}
	p.DateTime, err = readText(r, e)
	return
}

func extraSamples(r *Reader, e TagEntry, p *Page) error {
	v, err := scalarOf(r, e)
	if err != nil {
		return err
	}
	p.ExtraSamples = int(e.Count)
	p.ExtraSampleType = ExtraSample(v)
	return nil
}

//------------------------//
// Directory processing   //
//------------------------//

// interpret runs the handlers of every known tag of d against p. The first
// failure aborts the directory.
func (r *Reader) interpret(d Directory, p *Page) error {
	for _, e := range d.Entries {
		h, ok := tagHandlers[e.Tag]
		if !ok {
			r.logger.Debug("skipping tag", "tag", e.Tag.String(), "id", uint16(e.Tag))
			continue
		}
		if err := h(r, e, p); err != nil {
			r.logger.Debug("tag process failed", "tag", e.Tag.String(), "id", uint16(e.Tag), "err", err)
			return errors.Wrapf(err, "tag %s (0x%04X)", e.Tag, uint16(e.Tag))
		}
	}
	return validate(p)
}

// validate checks the consistency of the fields set by the handlers.
func validate(p *Page) error {
	if p.Compression != CompressionNone {
		return UnsupportedError(fmt.Sprintf("compression value %d (%s)", uint16(p.Compression), p.Compression))
	}
	if len(p.StripOffsets) == 0 {
		return FormatError("StripOffsets tag missing")
	}
	if len(p.StripOffsets) != len(p.StripByteCounts) {
		return FormatError("inconsistent header: strip offsets and byte counts differ in length")
	}
	if len(p.BitsPerSample) != p.SamplesPerPixel {
		return FormatError(fmt.Sprintf("inconsistent header: %d bits per sample entries for %d samples per pixel",
			len(p.BitsPerSample), p.SamplesPerPixel))
	}
	if p.BytesPerPixel == 0 {
		return FormatError("less than one byte per pixel")
	}

	var total uint64
	for _, n := range p.StripByteCounts {
		total += uint64(n)
	}
	if need := uint64(p.Width) * uint64(p.Height) * uint64(p.BytesPerPixel); total < need {
		return FormatError(fmt.Sprintf("inconsistent header: strips hold %d bytes, image needs %d", total, need))
	}

	if p.RowsPerStrip == 0 {
		p.RowsPerStrip = p.Height
	}

	if p.Colorspace == PhotometricPalette {
		if len(p.BitsPerSample) != 1 {
			return FormatError("palette image with more than one sample per pixel")
		}
		if want := 3 << uint(p.BitsPerSample[0]); len(p.Palette) != want {
			return FormatError(fmt.Sprintf("ColorMap holds %d entries, want %d", len(p.Palette), want))
		}
	}
	return nil
}
