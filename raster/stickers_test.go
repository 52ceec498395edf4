package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/zeptools/print-core/geometry"
)

func TestComposeStickerSheetEmptySlotsStayBlank(t *testing.T) {
	grid := geometry.LetterStickerGrid
	red := solid(100, 100, color.NRGBA{R: 255, A: 255})

	// slot 0 filled, slot 1 explicitly empty, slot 2 filled
	sheet, err := ComposeStickerSheet(grid, []image.Image{red, nil, red})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	b := sheet.Bounds()
	if b.Dx() != grid.PageWidthPx() || b.Dy() != grid.PageHeightPx() {
		t.Fatalf("page size: got %dx%d want %dx%d", b.Dx(), b.Dy(), grid.PageWidthPx(), grid.PageHeightPx())
	}

	d := grid.SlotDiameterPx()
	center := func(i int) (int, int) {
		x, y := grid.SlotOrigin(i)
		return x + d/2, y + d/2
	}

	// slot 0: painted
	x, y := center(0)
	if p := sheet.Img.NRGBAAt(x, y); p.R != 255 {
		t.Fatalf("slot 0 center: got %+v want red", p)
	}
	// slot 1: background only, images must not shift into it
	x, y = center(1)
	if p := sheet.Img.NRGBAAt(x, y); p.R != 255 || p.G != 255 || p.B != 255 {
		t.Fatalf("slot 1 center: got %+v want white background", p)
	}
	// slot 2: painted in its own place
	x, y = center(2)
	if p := sheet.Img.NRGBAAt(x, y); p.R != 255 || p.G != 0 {
		t.Fatalf("slot 2 center: got %+v want red", p)
	}
}

func TestComposeStickerSheetCircularMask(t *testing.T) {
	grid := geometry.LetterStickerGrid
	red := solid(50, 50, color.NRGBA{R: 255, A: 255})
	sheet, err := ComposeStickerSheet(grid, []image.Image{red})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	x, y := grid.SlotOrigin(0)
	// the slot's bounding-box corner lies outside the circle: white
	if p := sheet.Img.NRGBAAt(x+2, y+2); p.R != 255 || p.G != 255 || p.B != 255 {
		t.Fatalf("slot corner: got %+v want white", p)
	}
	// the circle center is painted
	d := grid.SlotDiameterPx()
	if p := sheet.Img.NRGBAAt(x+d/2, y+d/2); p.R != 255 || p.G != 0 {
		t.Fatalf("slot center: got %+v want red", p)
	}
}

func TestComposeStickerSheetTooManyImages(t *testing.T) {
	grid := geometry.LetterStickerGrid
	imgs := make([]image.Image, grid.SlotCount()+1)
	for i := range imgs {
		imgs[i] = solid(10, 10, color.NRGBA{A: 255})
	}
	if _, err := ComposeStickerSheet(grid, imgs); err == nil {
		t.Fatal("expected error for too many images")
	}
}
