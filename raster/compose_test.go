package raster

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/zeptools/print-core/geometry"
)

func solid(w, h int, c color.NRGBA) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestComposeSheetExactDimensions(t *testing.T) {
	spec := geometry.HalfFoldLetter
	// wildly different aspect ratios must still yield the exact sheet size
	left := solid(10, 1000, color.NRGBA{R: 255, A: 255})
	right := solid(900, 30, color.NRGBA{B: 255, A: 255})

	sheet, err := ComposeSheet(spec, left, right, SheetOptions{LeftName: "back", RightName: "front"})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	b := sheet.Bounds()
	if b.Dx() != spec.SheetWidthPx() || b.Dy() != spec.SheetHeightPx() {
		t.Fatalf("sheet size: got %dx%d want %dx%d", b.Dx(), b.Dy(), spec.SheetWidthPx(), spec.SheetHeightPx())
	}
	// left half red, right half blue
	lp := sheet.Img.NRGBAAt(spec.PanelWidthPx()/2, spec.SheetHeightPx()/2)
	if lp.R != 255 || lp.B != 0 {
		t.Fatalf("left panel pixel: got %+v want red", lp)
	}
	rp := sheet.Img.NRGBAAt(spec.PanelWidthPx()+spec.PanelWidthPx()/2, spec.SheetHeightPx()/2)
	if rp.B != 255 || rp.R != 0 {
		t.Fatalf("right panel pixel: got %+v want blue", rp)
	}
	if sheet.LeftPanel != "back" || sheet.RightPanel != "front" {
		t.Fatalf("panel identities lost: %q %q", sheet.LeftPanel, sheet.RightPanel)
	}
}

func TestComposeSheetRotationRoundTrips(t *testing.T) {
	spec := geometry.SheetSpec{Name: "tiny", PanelWidthIn: 0.1, PanelHeightIn: 0.2, DPI: 100}
	// asymmetric pattern so a rotation is observable
	src := image.NewNRGBA(image.Rect(0, 0, 10, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 10; x++ {
			src.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 25), G: uint8(y * 12), A: 255})
		}
	}
	right := solid(10, 20, color.NRGBA{A: 255})

	plain, err := ComposeSheet(spec, src, right, SheetOptions{})
	if err != nil {
		t.Fatalf("compose plain: %v", err)
	}
	rotated, err := ComposeSheet(spec, src, right, SheetOptions{RotateLeft: true})
	if err != nil {
		t.Fatalf("compose rotated: %v", err)
	}

	panelW, panelH := spec.PanelWidthPx(), spec.PanelHeightPx()
	rotLeft := imaging.Crop(rotated.Img, image.Rect(0, 0, panelW, panelH))
	restored := imaging.Rotate180(rotLeft)
	plainLeft := imaging.Crop(plain.Img, image.Rect(0, 0, panelW, panelH))

	if !bytes.Equal(restored.Pix, plainLeft.Pix) {
		t.Fatal("rotating the rotated left panel back does not pixel-match the plain left panel")
	}
}

func TestComposeSheetMissingInput(t *testing.T) {
	_, err := ComposeSheet(geometry.HalfFoldLetter, nil, solid(5, 5, color.NRGBA{A: 255}), SheetOptions{})
	if err == nil {
		t.Fatal("expected error for missing left panel")
	}
}

func TestDecodePanelUnreadable(t *testing.T) {
	_, err := DecodePanel("front", strings.NewReader("this is not an image"))
	if err == nil {
		t.Fatal("expected decode error")
	}
	if !strings.Contains(err.Error(), "front") {
		t.Fatalf("error does not name the panel: %v", err)
	}
}
