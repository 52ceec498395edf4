package geometry

// Overlay placement on the inside sheet.
//
// The gift-card block sits on the inside-right panel: horizontally centered
// within that panel, bottom edge one GiftCardBottomMarginIn above the sheet
// bottom. The provenance strip sits in the bottom-left corner of the
// outside sheet's left (back) panel.

const (
	// GiftCardBottomMarginIn - gap between the overlay and the sheet bottom
	GiftCardBottomMarginIn = 0.5
	// ProvenanceMarginIn - inset of the timestamp strip from the sheet corner
	ProvenanceMarginIn = 0.25
)

// GiftCardOverlayOrigin computes the top-left pixel at which a rendered
// gift-card overlay of size overlayW x overlayH is stamped onto the inside
// sheet of spec s.
func GiftCardOverlayOrigin(s SheetSpec, overlayW, overlayH int) (x int, y int) {
	panelW := s.PanelWidthPx()
	x = panelW + (panelW-overlayW)/2
	y = s.SheetHeightPx() - overlayH - PxAt(GiftCardBottomMarginIn, s.DPI)
	return x, y
}

// ProvenanceStripOrigin computes the top-left pixel for the timestamp strip
// on the outside sheet.
func ProvenanceStripOrigin(s SheetSpec, stripH int) (x int, y int) {
	m := PxAt(ProvenanceMarginIn, s.DPI)
	return m, s.SheetHeightPx() - stripH - m
}
