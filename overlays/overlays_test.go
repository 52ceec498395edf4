package overlays

import (
	"bytes"
	"encoding/xml"
	"image/color"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
)

func pngBytes(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := imaging.New(w, h, c)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestGiftCardSceneEscapesReservedCharacters(t *testing.T) {
	s := &GiftCardScene{
		QRImage:   pngBytes(t, 8, 8, color.NRGBA{A: 255}),
		QRMime:    "image/png",
		StoreName: `<Bob's "Store" & Co>`,
		Amount:    "$25 <gift>",
		BoxW:      400,
		BoxH:      250,
	}
	svg := s.SVG()
	if bytes.Contains(svg, []byte(`<Bob`)) || bytes.Contains(svg, []byte(`"Store"`)) {
		t.Fatal("raw reserved characters leaked into the markup")
	}
	// escaping must be total: the scene must still be well-formed XML
	dec := xml.NewDecoder(bytes.NewReader(svg))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("scene is not valid markup: %v", err)
		}
	}
	if !bytes.Contains(svg, []byte("&lt;Bob&apos;s &quot;Store&quot; &amp; Co&gt;")) {
		t.Fatal("expected escaped store name in the caption")
	}
}

func TestGiftCardSceneAssetBoxesSameSizeAndAnchors(t *testing.T) {
	s := &GiftCardScene{BoxW: 600, BoxH: 300}
	qr, logo := s.assetBoxes()
	if qr[2] != logo[2] || qr[3] != logo[3] {
		t.Fatalf("asset boxes differ in size: qr %v logo %v", qr, logo)
	}
	if qr[0] >= logo[0] {
		t.Fatalf("qr must anchor left of logo: qr x=%d logo x=%d", qr[0], logo[0])
	}
	if logo[0]+logo[2] >= s.BoxW {
		t.Fatalf("logo box overflows the card: %v", logo)
	}
}

func TestGiftCardSceneRenderIntrinsicSize(t *testing.T) {
	s := &GiftCardScene{
		QRImage:   pngBytes(t, 16, 16, color.NRGBA{R: 10, A: 255}),
		QRMime:    "image/png",
		LogoImage: pngBytes(t, 20, 10, color.NRGBA{B: 10, A: 255}),
		LogoMime:  "image/png",
		StoreName: "Store",
		Amount:    "$10",
		BoxW:      300,
		BoxH:      200,
	}
	img, err := s.Render()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 300 || b.Dy() != 200 {
		t.Fatalf("intrinsic size: got %dx%d want 300x200", b.Dx(), b.Dy())
	}
}

func TestGiftCardSceneRenderBadQRBytes(t *testing.T) {
	s := &GiftCardScene{QRImage: []byte("not an image"), BoxW: 100, BoxH: 100}
	if _, err := s.Render(); err == nil {
		t.Fatal("expected error for undecodable QR bytes")
	}
}

func TestTimestampSceneRender(t *testing.T) {
	s := NewTimestampScene(time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC), 640)
	if !strings.Contains(s.Text, "2026-03-14T09:26:53Z") {
		t.Fatalf("unexpected strip text: %q", s.Text)
	}
	img, err := s.Render()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 640 || b.Dy() != 80 {
		t.Fatalf("strip size: got %dx%d want 640x80", b.Dx(), b.Dy())
	}
}
