package tiff

import (
	"fmt"
)

// Decode failures fall into four kinds, told apart with errors.Cause.

// FormatError is returned when the file breaks the TIFF layout: a bad marker,
// an entry of the wrong type or strips that do not cover the image.
type FormatError string

func (e FormatError) Error() string {
	return fmt.Sprintf("tiff: invalid format: %s", string(e))
}

// UnsupportedError is returned for well-formed files this package does not
// read, such as compressed or planar strips.
type UnsupportedError string

func (e UnsupportedError) Error() string {
	return fmt.Sprintf("tiff: unsupported feature: %s", string(e))
}

// InternalError flags a misuse of the API, like asking a Reader for pages
// before Decode, or a broken invariant of the decoder.
type InternalError string

func (e InternalError) Error() string {
	return fmt.Sprintf("tiff: internal error: %s", string(e))
}

// ResourceError is returned when the storage cannot be opened or the pool has
// no slot left.
type ResourceError string

func (e ResourceError) Error() string {
	return fmt.Sprintf("tiff: resource error: %s", string(e))
}

var (
	// ErrPoolExhausted is returned by a FailFast pool when every pixel slot is checked out.
	ErrPoolExhausted = ResourceError("buffer pool exhausted")

	// ErrOutOfRange is returned when a pixel lies outside the page or its strip data.
	ErrOutOfRange = FormatError("pixel out of range")

	errShortRead = FormatError("short read")
)

func (t Tag) String() string {
	switch t {
	case TagNewSubfileType:
		return "NewSubfileType"
	case TagImageWidth:
		return "ImageWidth"
	case TagImageLength:
		return "ImageLength"
	case TagBitsPerSample:
		return "BitsPerSample"
	case TagCompression:
		return "Compression"
	case TagPhotometricInterpretation:
		return "PhotometricInterpretation"
	case TagImageDescription:
		return "ImageDescription"
	case TagStripOffsets:
		return "StripOffsets"
	case TagSamplesPerPixel:
		return "SamplesPerPixel"
	case TagRowsPerStrip:
		return "RowsPerStrip"
	case TagStripByteCounts:
		return "StripByteCounts"
	case TagXResolution:
		return "XResolution"
	case TagYResolution:
		return "YResolution"
	case TagPlanarConfiguration:
		return "PlanarConfiguration"
	case TagResolutionUnit:
		return "ResolutionUnit"
	case TagDateTime:
		return "DateTime"
	case TagColorMap:
		return "ColorMap"
	case TagExtraSamples:
		return "ExtraSamples"
	default:
		return fmt.Sprintf("Unknown(%d)", uint16(t))
	}
}

func (t DataType) String() string {
	switch t {
	case DTByte:
		return "BYTE"
	case DTASCII:
		return "ASCII"
	case DTShort:
		return "SHORT"
	case DTLong:
		return "LONG"
	case DTRational:
		return "RATIONAL"
	case DTSByte:
		return "SBYTE"
	case DTUndefined:
		return "UNDEFINED"
	case DTSShort:
		return "SSHORT"
	case DTSLong:
		return "SLONG"
	case DTSRational:
		return "SRATIONAL"
	case DTFloat:
		return "FLOAT"
	case DTDouble:
		return "DOUBLE"
	default:
		return fmt.Sprintf("DataType(%d)", uint16(t))
	}
}

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionCCITT:
		return "CCITT"
	case CompressionG3:
		return "Group 3 Fax"
	case CompressionG4:
		return "Group 4 Fax"
	case CompressionLZW:
		return "LZW"
	case CompressionJPEGOld:
		return "Old JPEG"
	case CompressionJPEG:
		return "JPEG"
	case CompressionDeflate:
		return "Deflate (zlib compression)"
	case CompressionPackBits:
		return "PackBits"
	default:
		return fmt.Sprintf("Compression(%d)", uint16(c))
	}
}

func (p Photometric) String() string {
	switch p {
	case PhotometricMinIsWhite:
		return "MinIsWhite"
	case PhotometricMinIsBlack:
		return "MinIsBlack"
	case PhotometricRGB:
		return "RGB"
	case PhotometricPalette:
		return "Palette"
	case PhotometricMask:
		return "Mask"
	case PhotometricSeparated:
		return "Separated"
	case PhotometricYCbCr:
		return "YCbCr"
	default:
		return fmt.Sprintf("Photometric(%d)", uint16(p))
	}
}

func (e ExtraSample) String() string {
	switch e {
	case ExtraSampleUnspecified:
		return "Unspecified"
	case ExtraSampleAssocAlpha:
		return "Associated alpha"
	case ExtraSampleUnassAlpha:
		return "Unassociated alpha"
	default:
		return fmt.Sprintf("ExtraSample(%d)", uint16(e))
	}
}

func (p Planar) String() string {
	switch p {
	case PlanarContig:
		return "Contiguous (aka RGBRGBRGBRGB)"
	case PlanarSeparate:
		return "Separate (aka RRRRGGGGBBBB)"
	default:
		return fmt.Sprintf("Planar(%d)", uint16(p))
	}
}

func (u ResolutionUnit) String() string {
	switch u {
	case ResolutionNone:
		return "None"
	case ResolutionPerInch:
		return "Inch"
	case ResolutionPerCM:
		return "Centimeter"
	default:
		return fmt.Sprintf("ResolutionUnit(%d)", uint16(u))
	}
}
