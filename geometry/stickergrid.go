package geometry

// StickerGrid describes the fixed circular-slot layout of a sticker sheet.
// The layout matches a commercial 3in-circle label sheet: 2 columns x 3 rows
// on a portrait US Letter page.
type StickerGrid struct {
	PageWidthIn    float64 `json:"page_width_in"`
	PageHeightIn   float64 `json:"page_height_in"`
	DPI            int     `json:"dpi"`
	SlotDiameterIn float64 `json:"slot_diameter_in"`
	TopMarginIn    float64 `json:"top_margin_in"`
	LeftMarginIn   float64 `json:"left_margin_in"`
	GapIn          float64 `json:"gap_in"`
	Columns        int     `json:"columns"`
	Rows           int     `json:"rows"`
}

// LetterStickerGrid - 2550x3300 px page, 900 px circles, 225 px top margin,
// 375 px left margin, 150 px gaps (all at 300 DPI).
var LetterStickerGrid = StickerGrid{
	PageWidthIn:    8.5,
	PageHeightIn:   11.0,
	DPI:            DefaultDPI,
	SlotDiameterIn: 3.0,
	TopMarginIn:    0.75,
	LeftMarginIn:   1.25,
	GapIn:          0.5,
	Columns:        2,
	Rows:           3,
}

func (g StickerGrid) PageWidthPx() int    { return PxAt(g.PageWidthIn, g.DPI) }
func (g StickerGrid) PageHeightPx() int   { return PxAt(g.PageHeightIn, g.DPI) }
func (g StickerGrid) SlotDiameterPx() int { return PxAt(g.SlotDiameterIn, g.DPI) }
func (g StickerGrid) WidthPt() float64    { return Pt(g.PageWidthIn) }
func (g StickerGrid) HeightPt() float64   { return Pt(g.PageHeightIn) }
func (g StickerGrid) SlotCount() int      { return g.Columns * g.Rows }

// SlotOrigin returns the top-left pixel of slot i. Slots are numbered
// left-to-right, top-to-bottom starting at 0.
func (g StickerGrid) SlotOrigin(i int) (x int, y int) {
	col := i % g.Columns
	row := i / g.Columns
	pitch := g.SlotDiameterIn + g.GapIn
	x = PxAt(g.LeftMarginIn+float64(col)*pitch, g.DPI)
	y = PxAt(g.TopMarginIn+float64(row)*pitch, g.DPI)
	return x, y
}
