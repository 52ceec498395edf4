package pdfs

import (
	"bytes"
	"fmt"
)

// ImageFormat - the two raster families supported for page embedding.
type ImageFormat string

const (
	FormatJPEG ImageFormat = "JPG" // lossy family
	FormatPNG  ImageFormat = "PNG" // lossless family
)

var (
	jpegMagic = []byte{0xff, 0xd8, 0xff}
	pngMagic  = []byte{0x89, 'P', 'N', 'G'}
)

// SniffImageFormat detects the raster family of encoded image bytes.
// An unsupported format is a hard error, never a silent fallback.
func SniffImageFormat(data []byte) (ImageFormat, error) {
	switch {
	case bytes.HasPrefix(data, jpegMagic):
		return FormatJPEG, nil
	case bytes.HasPrefix(data, pngMagic):
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("unsupported raster format for page embedding")
	}
}

// PageImage is one encoded sheet raster plus its physical page size.
type PageImage struct {
	Data     []byte
	WidthPt  float64
	HeightPt float64
}

// Assemble builds a print-ready document: one page per input sheet, each
// page sized in points and filled edge to edge by its raster. Page order
// follows the input order.
func Assemble(writerName string, pages ...PageImage) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("assemble document: no pages")
	}
	w, err := New(writerName)
	if err != nil {
		return nil, err
	}
	for i, p := range pages {
		format, err := SniffImageFormat(p.Data)
		if err != nil {
			return nil, fmt.Errorf("assemble document: page %d: %w", i+1, err)
		}
		size := PaperSize{Name: fmt.Sprintf("page-%d", i+1), Width: p.WidthPt, Height: p.HeightPt}
		if err = w.AddImagePage(p.Data, format, size); err != nil {
			return nil, fmt.Errorf("assemble document: page %d: %w", i+1, err)
		}
	}
	return w.ProduceBytes()
}
