package overlays

import (
	"bytes"
	"fmt"
	"time"
)

// TimestampScene is the provenance variant: a single text line on a
// translucent strip. Same contract as the gift-card scene, no QR or logo.
type TimestampScene struct {
	Text  string
	Width int
	// Height defaults to Width/8 when zero
	Height int
}

// NewTimestampScene builds the standard provenance strip for a print
// produced at t.
func NewTimestampScene(t time.Time, width int) *TimestampScene {
	return &TimestampScene{
		Text:  "printed " + t.UTC().Format(time.RFC3339),
		Width: width,
	}
}

func (s *TimestampScene) height() int {
	if s.Height > 0 {
		return s.Height
	}
	return s.Width / 8
}

func (s *TimestampScene) SVG() []byte {
	var b bytes.Buffer
	w, h := s.Width, s.height()
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, w, h, w, h)
	fmt.Fprintf(&b, `<rect x="0" y="0" width="%d" height="%d" rx="%d" fill="#000000" opacity="0.45"/>`, w, h, h/4)
	fmt.Fprintf(&b, `<text x="%d" y="%d" text-anchor="middle" font-family="sans-serif" font-size="%d" fill="#ffffff">%s</text>`,
		w/2, h-h/3, h/2, escapeText(s.Text))
	b.WriteString(`</svg>`)
	return b.Bytes()
}
