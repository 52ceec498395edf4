package pdfs

import (
	"fmt"
	"io"
)

// Writer — minimal, stream-style, append-only PDF writer for print-ready
// documents: one full-bleed raster image per page.
type Writer interface {
	// AddImagePage appends one page of exactly the given size with the
	// raster scaled to fill the whole page area.
	AddImagePage(data []byte, format ImageFormat, size PaperSize) error
	PageCount() int

	WriteTo(w io.Writer) (int64, error)
	WriteToFile(filepath string) error
	ProduceBytes() ([]byte, error)
}

// WriterFactory is a callback that constructs a Writer.
// It is registered with RegisterFactory and called by pdfs.New.
type WriterFactory func() Writer

var registry = map[string]WriterFactory{}

func RegisterFactory(name string, factory WriterFactory) {
	registry[name] = factory
}

func New(name string) (Writer, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unsupported pdf writer: %s", name)
	}
	return factory(), nil
}
