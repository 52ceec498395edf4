package overlays

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Rasterization of overlay scenes.
//
// The vector shapes (card, shadow, strip) go through the SVG rasterizer.
// The raster assets and the caption are composited on top at the same
// layout coordinates the scene markup declares, since the path rasterizer
// does not handle <image> and <text> elements.

// Render rasterizes the gift-card scene into an image of exactly
// BoxW x BoxH pixels. Any decode failure is returned to the caller, which
// is expected to skip the overlay and proceed with the job.
func (s *GiftCardScene) Render() (image.Image, error) {
	if len(s.QRImage) == 0 {
		return nil, fmt.Errorf("render gift card overlay: no QR image")
	}
	canvas, err := rasterizeShapes(s.SVG(), s.BoxW, s.BoxH)
	if err != nil {
		return nil, fmt.Errorf("render gift card overlay: %w", err)
	}

	qrBox, logoBox := s.assetBoxes()
	if err = compositeAsset(canvas, s.QRImage, qrBox); err != nil {
		return nil, fmt.Errorf("render gift card overlay: qr: %w", err)
	}
	if len(s.LogoImage) > 0 {
		if err = compositeAsset(canvas, s.LogoImage, logoBox); err != nil {
			return nil, fmt.Errorf("render gift card overlay: logo: %w", err)
		}
	}

	band := int(float64(s.BoxH) * captionBandFrac)
	pad := int(float64(s.BoxH) * padFrac)
	drawTextLine(canvas, s.caption(), s.BoxW/2, s.BoxH-pad, band/2, color.NRGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff})
	return canvas, nil
}

// Render rasterizes the timestamp strip.
func (s *TimestampScene) Render() (image.Image, error) {
	w, h := s.Width, s.height()
	canvas, err := rasterizeShapes(s.SVG(), w, h)
	if err != nil {
		return nil, fmt.Errorf("render timestamp strip: %w", err)
	}
	drawTextLine(canvas, s.Text, w/2, h-h/4, h/2, color.White)
	return canvas, nil
}

func rasterizeShapes(svg []byte, w, h int) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svg), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}
	icon.SetTarget(0, 0, float64(w), float64(h))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)
	return img, nil
}

func compositeAsset(dst *image.RGBA, raw []byte, box [4]int) error {
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return err
	}
	fitted := imaging.Fit(img, box[2], box[3], imaging.Lanczos)
	// center within the box
	fb := fitted.Bounds()
	x := box[0] + (box[2]-fb.Dx())/2
	y := box[1] + (box[3]-fb.Dy())/2
	draw.Draw(dst, image.Rect(x, y, x+fb.Dx(), y+fb.Dy()), fitted, image.Point{}, draw.Over)
	return nil
}

// drawTextLine renders one line of text centered at centerX with its
// baseline near `baseline`, scaled to targetH pixels tall. The bitmap face
// is drawn small and scaled up; at print DPI the caption band would
// otherwise be a few pixels tall.
func drawTextLine(dst *image.RGBA, text string, centerX, baseline, targetH int, col color.Color) {
	if text == "" || targetH <= 0 {
		return
	}
	face := basicfont.Face7x13
	wPx := font.MeasureString(face, text).Ceil()
	if wPx == 0 {
		return
	}
	small := image.NewNRGBA(image.Rect(0, 0, wPx, face.Height))
	d := &font.Drawer{
		Dst:  small,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(text)

	scale := float64(targetH) / float64(face.Height)
	scaled := imaging.Resize(small, int(float64(wPx)*scale), targetH, imaging.NearestNeighbor)
	sb := scaled.Bounds()
	x := centerX - sb.Dx()/2
	y := baseline - sb.Dy()
	draw.Draw(dst, image.Rect(x, y, x+sb.Dx(), y+sb.Dy()), scaled, image.Point{}, draw.Over)
}
