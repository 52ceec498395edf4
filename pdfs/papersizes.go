package pdfs

import "github.com/zeptools/print-core/geometry"

type PaperSize struct {
	Name   string
	Width  float64 // in `pt` (1" = 72pts)
	Height float64 // in `pt`
}

var (
	LetterSize          = PaperSize{Name: "Letter", Width: 612, Height: 792}          // 8.5" x 11"
	LetterLandscapeSize = PaperSize{Name: "LetterLandscape", Width: 792, Height: 612} // 11" x 8.5"
)

// SheetPaperSize derives the landscape page size of a card sheet spec.
// Sheets carry their physical size in points; the page must match exactly.
func SheetPaperSize(s geometry.SheetSpec) PaperSize {
	return PaperSize{Name: s.Name, Width: s.WidthPt(), Height: s.HeightPt()}
}
