package overlays

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"
)

// Overlay scenes are small, self-contained vector descriptions, built per
// job, rasterized once, composited once, then discarded. The caller picks
// the pixel offset; a scene only knows its own box.

// escaper covers the five reserved markup characters. Every free-text field
// passes through it before embedding; untrusted store names and amounts must
// never break the scene markup.
var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeText(s string) string {
	return escaper.Replace(s)
}

// GiftCardScene describes the QR/logo/caption block stamped onto the inside
// sheet of a gift card: QR code anchored left, logo (if present) anchored
// right at the identical box size, caption centered below both, on a
// rounded-rect card with a soft shadow.
type GiftCardScene struct {
	QRImage   []byte // raster bytes of the QR code
	QRMime    string // e.g. "image/png"
	LogoImage []byte // optional, already normalized raster bytes
	LogoMime  string
	StoreName string
	Amount    string

	// target box in pixels
	BoxW int
	BoxH int
}

// layout constants relative to the box height
const (
	cornerRadiusFrac = 0.06
	shadowOffsetFrac = 0.015
	padFrac          = 0.08
	captionBandFrac  = 0.22
)

func (s *GiftCardScene) caption() string {
	if s.StoreName == "" {
		return s.Amount
	}
	if s.Amount == "" {
		return s.StoreName
	}
	return s.StoreName + " " + s.Amount
}

// assetBoxes returns the QR box and the logo box. Both boxes are always the
// same size; the logo box is meaningful only when LogoImage is present.
func (s *GiftCardScene) assetBoxes() (qr [4]int, logo [4]int) {
	pad := int(float64(s.BoxH) * padFrac)
	band := int(float64(s.BoxH) * captionBandFrac)
	a := s.BoxH - band - 2*pad
	qr = [4]int{pad, pad, a, a}
	logo = [4]int{s.BoxW - pad - a, pad, a, a}
	return qr, logo
}

// SVG produces the scene markup. All free text is escaped; raster assets are
// embedded as data URIs.
func (s *GiftCardScene) SVG() []byte {
	var b bytes.Buffer
	w, h := s.BoxW, s.BoxH
	rx := int(float64(h) * cornerRadiusFrac)
	off := int(float64(h) * shadowOffsetFrac)
	if off < 2 {
		off = 2
	}

	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, w, h, w, h)
	// soft shadow: offset translucent rect under the card
	fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="%d" rx="%d" fill="#000000" opacity="0.18"/>`, off, off, w-off, h-off, rx)
	fmt.Fprintf(&b, `<rect x="0" y="0" width="%d" height="%d" rx="%d" fill="#ffffff" stroke="#dddddd" stroke-width="2"/>`, w-off, h-off, rx)

	qrBox, logoBox := s.assetBoxes()
	fmt.Fprintf(&b, `<image x="%d" y="%d" width="%d" height="%d" href="%s"/>`,
		qrBox[0], qrBox[1], qrBox[2], qrBox[3], dataURI(s.QRMime, s.QRImage))
	if len(s.LogoImage) > 0 {
		fmt.Fprintf(&b, `<image x="%d" y="%d" width="%d" height="%d" href="%s"/>`,
			logoBox[0], logoBox[1], logoBox[2], logoBox[3], dataURI(s.LogoMime, s.LogoImage))
	}

	fontSize := int(float64(h) * captionBandFrac * 0.55)
	baseline := h - int(float64(h)*padFrac)
	fmt.Fprintf(&b, `<text x="%d" y="%d" text-anchor="middle" font-family="sans-serif" font-size="%d" fill="#222222">%s</text>`,
		(w-off)/2, baseline, fontSize, escapeText(s.caption()))

	b.WriteString(`</svg>`)
	return b.Bytes()
}

func dataURI(mime string, data []byte) string {
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
