package tiff

// File layout (TIFF 6.0, pp. 13-16): an 8-byte header holds the order marker,
// the version and the offset of the first directory. A directory is a 2-byte
// entry count, that many 12-byte entries and the 4-byte offset of the next
// directory. Each entry packs tag, type and count, then either the value
// itself when it fits in 4 bytes or the offset where it is stored.

const (
	leOrder = "II" // Order marker of little-endian files.
	beOrder = "MM" // Order marker of big-endian files.

	version = 42 // The meaning of life, and the only TIFF version.

	headerLen = 8  // Length of the file header in bytes.
	ifdLen    = 12 // Length of an IFD entry in bytes.
)

// DataType is the field type of an IFD entry (TIFF 6.0, p. 14-16).
type DataType uint16

// Data types.
const (
	DTByte      DataType = 1
	DTASCII     DataType = 2
	DTShort     DataType = 3
	DTLong      DataType = 4
	DTRational  DataType = 5
	DTSByte     DataType = 6
	DTUndefined DataType = 7
	DTSShort    DataType = 8
	DTSLong     DataType = 9
	DTSRational DataType = 10
	DTFloat     DataType = 11
	DTDouble    DataType = 12
)

// The length of one instance of each data type in bytes.
var lengths = [...]uint32{0, 1, 1, 2, 4, 8, 1, 1, 2, 4, 8, 4, 8}

// Size returns the length in bytes of one value of the type, or 0 for unknown types.
func (t DataType) Size() uint32 {
	if int(t) >= len(lengths) {
		return 0
	}
	return lengths[t]
}

// Tag identifies the meaning of an IFD entry (TIFF 6.0, p. 28-41).
type Tag uint16

// Tags.
const (
	TagNewSubfileType            Tag = 254
	TagImageWidth                Tag = 256
	TagImageLength               Tag = 257
	TagBitsPerSample             Tag = 258
	TagCompression               Tag = 259
	TagPhotometricInterpretation Tag = 262
	TagImageDescription          Tag = 270
	TagStripOffsets              Tag = 273
	TagSamplesPerPixel           Tag = 277
	TagRowsPerStrip              Tag = 278
	TagStripByteCounts           Tag = 279
	TagXResolution               Tag = 282
	TagYResolution               Tag = 283
	TagPlanarConfiguration       Tag = 284
	TagResolutionUnit            Tag = 296
	TagDateTime                  Tag = 306
	TagColorMap                  Tag = 320
	TagExtraSamples              Tag = 338
)

// Compression is the compression scheme of the strips.
type Compression uint16

// Compression types (TIFF 6.0 and its technical notes).
const (
	CompressionNone     Compression = 1
	CompressionCCITT    Compression = 2
	CompressionG3       Compression = 3 // Group 3 Fax.
	CompressionG4       Compression = 4 // Group 4 Fax.
	CompressionLZW      Compression = 5
	CompressionJPEGOld  Compression = 6 // Superseded by CompressionJPEG.
	CompressionJPEG     Compression = 7
	CompressionDeflate  Compression = 8 // zlib compression.
	CompressionPackBits Compression = 32773
)

// Photometric is the colorspace of the image data (TIFF 6.0, p. 37).
type Photometric uint16

// Photometric interpretation values.
const (
	PhotometricMinIsWhite Photometric = 0
	PhotometricMinIsBlack Photometric = 1
	PhotometricRGB        Photometric = 2
	PhotometricPalette    Photometric = 3
	PhotometricMask       Photometric = 4 // transparency mask
	PhotometricSeparated  Photometric = 5 // CMYK
	PhotometricYCbCr      Photometric = 6
)

// ExtraSample describes the meaning of the extra components of a pixel.
type ExtraSample uint16

// Values for the ExtraSamples tag (p. 31).
const (
	ExtraSampleUnspecified ExtraSample = 0
	ExtraSampleAssocAlpha  ExtraSample = 1
	ExtraSampleUnassAlpha  ExtraSample = 2
)

// Planar is the planar configuration of the samples.
type Planar uint16

// Values for the PlanarConfiguration tag (p. 38).
const (
	PlanarContig   Planar = 1 // RGBRGBRGB
	PlanarSeparate Planar = 2 // RRRGGGBBB
)

// ResolutionUnit is the unit of XResolution and YResolution.
type ResolutionUnit uint16

// Values for the ResolutionUnit tag (page 18).
const (
	ResolutionNone    ResolutionUnit = 1
	ResolutionPerInch ResolutionUnit = 2 // Dots per inch.
	ResolutionPerCM   ResolutionUnit = 3 // Dots per centimeter.
)

const dateTimeLen = 20 // "YYYY:MM:DD HH:MM:SS\x00"
