package geometry

import "testing"

func TestHalfFoldLetterDerivedDimensions(t *testing.T) {
	s := HalfFoldLetter
	if got := s.PanelWidthPx(); got != 1650 {
		t.Fatalf("panel width px: got %d want 1650", got)
	}
	if got := s.PanelHeightPx(); got != 2550 {
		t.Fatalf("panel height px: got %d want 2550", got)
	}
	if got := s.SheetWidthPx(); got != 3300 {
		t.Fatalf("sheet width px: got %d want 3300", got)
	}
	if got := s.SheetHeightPx(); got != 2550 {
		t.Fatalf("sheet height px: got %d want 2550", got)
	}
	if got := s.WidthPt(); got != 792 {
		t.Fatalf("sheet width pt: got %v want 792", got)
	}
	if got := s.HeightPt(); got != 612 {
		t.Fatalf("sheet height pt: got %v want 612", got)
	}
}

func TestPixelAndPointShareInchSource(t *testing.T) {
	// px/dpi and pt/72 must resolve to the same inch value
	s := HalfFoldLetter
	pxInches := float64(s.SheetWidthPx()) / float64(s.DPI)
	ptInches := s.WidthPt() / PtPerInch
	if pxInches != ptInches {
		t.Fatalf("inch mismatch: px-derived %v pt-derived %v", pxInches, ptInches)
	}
}

func TestStickerGridSlots(t *testing.T) {
	g := LetterStickerGrid
	if got := g.PageWidthPx(); got != 2550 {
		t.Fatalf("page width px: got %d want 2550", got)
	}
	if got := g.PageHeightPx(); got != 3300 {
		t.Fatalf("page height px: got %d want 3300", got)
	}
	if got := g.SlotDiameterPx(); got != 900 {
		t.Fatalf("slot diameter px: got %d want 900", got)
	}
	wantOrigins := [6][2]int{
		{375, 225}, {1425, 225},
		{375, 1275}, {1425, 1275},
		{375, 2325}, {1425, 2325},
	}
	for i, want := range wantOrigins {
		x, y := g.SlotOrigin(i)
		if x != want[0] || y != want[1] {
			t.Fatalf("slot %d origin: got (%d,%d) want (%d,%d)", i, x, y, want[0], want[1])
		}
	}
	// every slot must fit on the page
	for i := 0; i < g.SlotCount(); i++ {
		x, y := g.SlotOrigin(i)
		if x+g.SlotDiameterPx() > g.PageWidthPx() || y+g.SlotDiameterPx() > g.PageHeightPx() {
			t.Fatalf("slot %d overflows the page", i)
		}
	}
}

func TestGiftCardOverlayOriginStaysInRightPanel(t *testing.T) {
	s := HalfFoldLetter
	w, h := 990, 618
	x, y := GiftCardOverlayOrigin(s, w, h)
	if x < s.PanelWidthPx() || x+w > s.SheetWidthPx() {
		t.Fatalf("overlay x out of right panel: x=%d w=%d", x, w)
	}
	if y < 0 || y+h > s.SheetHeightPx() {
		t.Fatalf("overlay y out of sheet: y=%d h=%d", y, h)
	}
	// horizontally centered in the right panel
	leftGap := x - s.PanelWidthPx()
	rightGap := s.SheetWidthPx() - (x + w)
	if diff := leftGap - rightGap; diff < -1 || diff > 1 {
		t.Fatalf("overlay not centered: left gap %d right gap %d", leftGap, rightGap)
	}
}
