package raster

import (
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"
)

// Sheet is a fully rendered raster image representing one printable side:
// either two card panels side by side, or one sticker page.
type Sheet struct {
	Img *image.NRGBA

	// physical page size in points for document embedding
	WidthPt  float64
	HeightPt float64

	// which logical page went where (informational, carried into logs)
	LeftPanel  string
	RightPanel string

	Overlaid bool
}

// DecodePanel reads and decodes one panel image. An unreadable input is a
// hard error; the caller must abort the whole composite.
func DecodePanel(name string, r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode panel %q: %w", name, err)
	}
	return img, nil
}

// Stamp composites an overlay onto the sheet at the given pixel offset.
// The overlay's alpha channel is respected.
func (s *Sheet) Stamp(overlay image.Image, x, y int) {
	s.Img = imaging.Overlay(s.Img, overlay, image.Pt(x, y), 1.0)
	s.Overlaid = true
}

// Rotate180 turns the whole sheet upside down, the way a short-edge duplex
// printer presents its second side. Panel identities swap with the halves.
func (s *Sheet) Rotate180() {
	s.Img = imaging.Rotate180(s.Img)
	s.LeftPanel, s.RightPanel = s.RightPanel, s.LeftPanel
}

func (s *Sheet) Bounds() image.Rectangle {
	return s.Img.Bounds()
}
