package raster

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/zeptools/print-core/geometry"
)

// SheetOptions control panel placement on a duplex side.
type SheetOptions struct {
	// 180-degree turns applied after resize, for faces that must appear
	// upside-down in the duplex orientation
	RotateLeft  bool
	RotateRight bool

	// panel identities carried onto the Sheet
	LeftName  string
	RightName string
}

// ComposeSheet places two logical card faces side by side into one
// full-sheet raster. Each input is stretched to the exact panel size
// (the physical slot is authoritative, aspect ratio is not preserved),
// then optionally rotated. The canvas is opaque white, left panel at x=0,
// right panel at x=PanelWidthPx.
func ComposeSheet(spec geometry.SheetSpec, left, right image.Image, opts SheetOptions) (*Sheet, error) {
	if left == nil || right == nil {
		return nil, fmt.Errorf("compose sheet %q: both panel images are required", spec.Name)
	}
	panelW, panelH := spec.PanelWidthPx(), spec.PanelHeightPx()

	leftPanel := imaging.Resize(left, panelW, panelH, imaging.Lanczos) // stretch to fill
	if opts.RotateLeft {
		leftPanel = imaging.Rotate180(leftPanel)
	}
	rightPanel := imaging.Resize(right, panelW, panelH, imaging.Lanczos)
	if opts.RotateRight {
		rightPanel = imaging.Rotate180(rightPanel)
	}

	canvas := imaging.New(spec.SheetWidthPx(), spec.SheetHeightPx(), color.White)
	canvas = imaging.Paste(canvas, leftPanel, image.Pt(0, 0))
	canvas = imaging.Paste(canvas, rightPanel, image.Pt(panelW, 0))

	return &Sheet{
		Img:        canvas,
		WidthPt:    spec.WidthPt(),
		HeightPt:   spec.HeightPt(),
		LeftPanel:  opts.LeftName,
		RightPanel: opts.RightName,
	}, nil
}
