package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"

	"github.com/zeptools/print-core/geometry"
)

// ComposeStickerSheet places up to SlotCount images into the fixed circular
// slots of the grid. Each image is resized to cover its slot (crop-to-fill,
// not stretch), masked to a circle, and composited at the slot's fixed
// origin. Nil entries leave the slot unpainted; remaining images never
// shift position.
func ComposeStickerSheet(grid geometry.StickerGrid, images []image.Image) (*Sheet, error) {
	if len(images) > grid.SlotCount() {
		return nil, fmt.Errorf("compose sticker sheet: %d images for %d slots", len(images), grid.SlotCount())
	}
	d := grid.SlotDiameterPx()
	canvas := imaging.New(grid.PageWidthPx(), grid.PageHeightPx(), color.White)
	mask := newCircleMask(d)

	for i, img := range images {
		if img == nil {
			continue // empty slot, no placeholder art
		}
		filled := imaging.Fill(img, d, d, imaging.Center, imaging.Lanczos) // cover, center crop
		x, y := grid.SlotOrigin(i)
		dst := image.Rect(x, y, x+d, y+d)
		draw.DrawMask(canvas, dst, filled, image.Point{}, mask, image.Point{}, draw.Over)
	}

	return &Sheet{
		Img:      canvas,
		WidthPt:  grid.WidthPt(),
		HeightPt: grid.HeightPt(),
	}, nil
}

// circleMask is an alpha mask selecting a filled circle of the given
// diameter. Implemented on the stdlib image interfaces since the imaging
// library has no masked compositing.
type circleMask struct {
	d int
}

func newCircleMask(diameter int) *circleMask {
	return &circleMask{d: diameter}
}

func (m *circleMask) ColorModel() color.Model {
	return color.AlphaModel
}

func (m *circleMask) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.d, m.d)
}

func (m *circleMask) At(x, y int) color.Color {
	r := float64(m.d) / 2
	dx, dy := float64(x)+0.5-r, float64(y)+0.5-r
	if dx*dx+dy*dy <= r*r {
		return color.Alpha{A: 0xff}
	}
	return color.Alpha{}
}
