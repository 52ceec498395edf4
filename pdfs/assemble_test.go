package pdfs_test

import (
	"bytes"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/zeptools/print-core/geometry"
	"github.com/zeptools/print-core/pdfs"
	gofpdfimpl "github.com/zeptools/print-core/pdfs/impls/gofpdf"
)

func encoded(t *testing.T, format imaging.Format) []byte {
	t.Helper()
	img := imaging.New(33, 25, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestSniffImageFormat(t *testing.T) {
	if f, err := pdfs.SniffImageFormat(encoded(t, imaging.JPEG)); err != nil || f != pdfs.FormatJPEG {
		t.Fatalf("jpeg sniff: got %q err %v", f, err)
	}
	if f, err := pdfs.SniffImageFormat(encoded(t, imaging.PNG)); err != nil || f != pdfs.FormatPNG {
		t.Fatalf("png sniff: got %q err %v", f, err)
	}
	if _, err := pdfs.SniffImageFormat(encoded(t, imaging.GIF)); err == nil {
		t.Fatal("gif must be a hard error, not a silent fallback")
	}
}

func TestAssembleOnePagePerSheet(t *testing.T) {
	gofpdfimpl.Register()
	spec := geometry.HalfFoldLetter

	jp := encoded(t, imaging.JPEG)
	pg := encoded(t, imaging.PNG)

	doc, err := pdfs.Assemble("gofpdf",
		pdfs.PageImage{Data: jp, WidthPt: spec.WidthPt(), HeightPt: spec.HeightPt()},
		pdfs.PageImage{Data: pg, WidthPt: spec.WidthPt(), HeightPt: spec.HeightPt()},
	)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if !bytes.HasPrefix(doc, []byte("%PDF-")) {
		t.Fatal("output is not a PDF")
	}
	// each page declares the exact physical point size
	if !bytes.Contains(doc, []byte("/MediaBox [0 0 792.00 612.00]")) {
		t.Fatal("page MediaBox does not match 792x612 pt")
	}
}

func TestWriterPageCountAndSizes(t *testing.T) {
	gofpdfimpl.Register()
	w, err := pdfs.New("gofpdf")
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	spec := geometry.HalfFoldLetter
	grid := geometry.LetterStickerGrid

	if err = w.AddImagePage(encoded(t, imaging.JPEG), pdfs.FormatJPEG, pdfs.SheetPaperSize(spec)); err != nil {
		t.Fatalf("add card page: %v", err)
	}
	if err = w.AddImagePage(encoded(t, imaging.PNG), pdfs.FormatPNG,
		pdfs.PaperSize{Name: "stickers", Width: grid.WidthPt(), Height: grid.HeightPt()}); err != nil {
		t.Fatalf("add sticker page: %v", err)
	}
	if got := w.PageCount(); got != 2 {
		t.Fatalf("page count: got %d want 2", got)
	}
	var buf bytes.Buffer
	n, err := w.WriteTo(&buf)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if n == 0 || int64(buf.Len()) != n {
		t.Fatalf("byte count mismatch: reported %d buffered %d", n, buf.Len())
	}
}

func TestAssembleUnknownWriter(t *testing.T) {
	_, err := pdfs.Assemble("nonexistent", pdfs.PageImage{Data: encoded(t, imaging.JPEG), WidthPt: 72, HeightPt: 72})
	if err == nil {
		t.Fatal("expected unknown writer error")
	}
}
