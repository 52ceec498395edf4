package geometry

// Physical geometry of printable sheets.
//
// Every pixel and point dimension in this package resolves from inch values
// and a DPI. Nothing is hand-duplicated: change an inch value here and the
// pixel, point and grid numbers follow. These constants are a file-format
// contract between the cloud compositor and any print path that consumes
// its output.

const (
	// DefaultDPI - raster resolution of all composited sheets
	DefaultDPI = 300
	// PtPerInch - PostScript points per inch
	PtPerInch = 72.0
	// MMPerInch for specs given in millimeters
	MMPerInch = 25.4
)

// PxAt converts a length in inches to whole pixels at the given DPI.
func PxAt(inches float64, dpi int) int {
	return int(inches*float64(dpi) + 0.5)
}

// Pt converts a length in inches to points.
func Pt(inches float64) float64 {
	return inches * PtPerInch
}

// SheetSpec describes one duplex side of a folded card: two panels side by
// side on a landscape sheet. All derived dimensions come from the panel's
// inch size and the DPI.
type SheetSpec struct {
	Name          string  `json:"name"`
	PanelWidthIn  float64 `json:"panel_width_in"`
	PanelHeightIn float64 `json:"panel_height_in"`
	DPI           int     `json:"dpi"`
}

var (
	// HalfFoldLetter - US Letter folded in half. Panel 5.5in x 8.5in:
	// 1650x2550 px per panel, 3300x2550 px per sheet, 792x612 pt landscape.
	HalfFoldLetter = SheetSpec{Name: "letter-half-fold", PanelWidthIn: 5.5, PanelHeightIn: 8.5, DPI: DefaultDPI}
	// HalfFoldA4 - A4 folded in half. Panel is A5 (148.5mm x 210mm).
	HalfFoldA4 = SheetSpec{Name: "a4-half-fold", PanelWidthIn: 148.5 / MMPerInch, PanelHeightIn: 210.0 / MMPerInch, DPI: DefaultDPI}
)

func (s SheetSpec) PanelWidthPx() int  { return PxAt(s.PanelWidthIn, s.DPI) }
func (s SheetSpec) PanelHeightPx() int { return PxAt(s.PanelHeightIn, s.DPI) }

// SheetWidthPx - full duplex-side width: two panels side by side
func (s SheetSpec) SheetWidthPx() int  { return 2 * s.PanelWidthPx() }
func (s SheetSpec) SheetHeightPx() int { return s.PanelHeightPx() }

// WidthPt / HeightPt - sheet size in points for document embedding
func (s SheetSpec) WidthPt() float64  { return Pt(2 * s.PanelWidthIn) }
func (s SheetSpec) HeightPt() float64 { return Pt(s.PanelHeightIn) }

// SheetSpecByName resolves a paper-size identifier from a job request.
// Unknown names fall back to HalfFoldLetter.
func SheetSpecByName(name string) SheetSpec {
	switch name {
	case HalfFoldA4.Name, "a4", "A4":
		return HalfFoldA4
	case HalfFoldLetter.Name, "letter", "Letter":
		return HalfFoldLetter
	default:
		return HalfFoldLetter
	}
}
