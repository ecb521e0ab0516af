package tiff

import (
	"fmt"
	"io"
	"strings"
)

// WriteHeaderInfo prints a human readable summary of the header and the
// directories. The format is meant for people and may change.
func (r *Reader) WriteHeaderInfo(w io.Writer) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "order: %.2s\n", r.header.Order[:])
	fmt.Fprintf(&sb, "version: %d\n", r.header.Version)
	fmt.Fprintf(&sb, "offset: %d\n", r.header.Offset)
	fmt.Fprintf(&sb, "swapped: %t\n", r.Swapped())
	for i, d := range r.dirs {
		fmt.Fprintf(&sb, "IFD %d @%d (%d entries, next %d):\n", i, d.Offset, len(d.Entries), d.Next)
		for _, e := range d.Entries {
			fmt.Fprintf(&sb, "\t%v\n", e)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteInfo prints a human readable summary of the page.
func (p *Page) WriteInfo(w io.Writer) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Image Width: %d Image Height: %d\n", p.Width, p.Height)
	sb.WriteString("Bits/Sample:")
	for _, b := range p.BitsPerSample {
		fmt.Fprintf(&sb, " %d", b)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Compression Scheme: %s\n", p.Compression)
	fmt.Fprintf(&sb, "Photometric Interpretation: %s\n", p.Colorspace)
	fmt.Fprintf(&sb, "%d Strips:\n", len(p.StripOffsets))
	for i := range p.StripOffsets {
		fmt.Fprintf(&sb, "\t%d: [%10d, %10d]\n", i, p.StripOffsets[i], p.StripByteCounts[i])
	}
	fmt.Fprintf(&sb, "Samples/Pixel: %d\n", p.SamplesPerPixel)
	fmt.Fprintf(&sb, "Rows/Strip: %d\n", p.RowsPerStrip)
	fmt.Fprintf(&sb, "Planar Configuration: %s\n", p.Planar)
	fmt.Fprintf(&sb, "Extra Samples: %d <%s>\n", p.ExtraSamples, p.ExtraSampleType)
	if p.XResolution.Den != 0 || p.YResolution.Den != 0 {
		fmt.Fprintf(&sb, "Resolution: %s, %s pixels/%s\n", p.XResolution, p.YResolution, p.ResolutionUnit)
	}
	if len(p.Palette) != 0 {
		fmt.Fprintf(&sb, "Color Map: %d entries\n", len(p.Palette)/3)
	}
	if p.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", p.Description)
	}
	if p.DateTime != "" {
		fmt.Fprintf(&sb, "Date Time: %s\n", p.DateTime)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
