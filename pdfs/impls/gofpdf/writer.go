package gofpdf

import (
	"bytes"
	"fmt"
	"io"

	lowimpl "github.com/phpdave11/gofpdf"

	"github.com/zeptools/print-core/pdfs"
	"github.com/zeptools/print-core/rw"
)

type Writer struct {
	// implementation details, not exported
	internal *lowimpl.Fpdf
	pages    int
	imgSeq   int
}

// Ensure gofpdf.Writer implements pdfs.Writer interface
var _ pdfs.Writer = (*Writer)(nil)

func Register() {
	pdfs.RegisterFactory("gofpdf", func() pdfs.Writer { return NewWriter() })
}

func NewWriter() *Writer {
	internal := lowimpl.NewCustom(&lowimpl.InitType{
		UnitStr: "pt",
		Size:    lowimpl.SizeType{Wd: pdfs.LetterLandscapeSize.Width, Ht: pdfs.LetterLandscapeSize.Height},
	})
	internal.SetMargins(0, 0, 0)
	internal.SetAutoPageBreak(false, 0)
	return &Writer{internal: internal}
}

func (w *Writer) AddImagePage(data []byte, format pdfs.ImageFormat, size pdfs.PaperSize) error {
	// Orientation stays "P": the size already carries the exact page
	// dimensions and must not be swapped.
	w.internal.AddPageFormat("P", lowimpl.SizeType{Wd: size.Width, Ht: size.Height})

	w.imgSeq++
	name := fmt.Sprintf("sheet-%d", w.imgSeq)
	opts := lowimpl.ImageOptions{ImageType: string(format)}
	w.internal.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if err := w.internal.Error(); err != nil {
		return fmt.Errorf("register page image: %w", err)
	}
	// scale to fill the full page area, no letterboxing
	w.internal.ImageOptions(name, 0, 0, size.Width, size.Height, false, opts, 0, "")
	if err := w.internal.Error(); err != nil {
		return fmt.Errorf("place page image: %w", err)
	}
	w.pages++
	return nil
}

func (w *Writer) PageCount() int {
	return w.pages
}

// WriteTo implements io.WriterTo
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	cw := rw.NewCountWriter(out)
	err := w.internal.Output(cw)
	return cw.BytesWritten(), err
}

func (w *Writer) WriteToFile(filepath string) error {
	return w.internal.OutputFileAndClose(filepath)
}

func (w *Writer) ProduceBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := w.internal.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
