package raster

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// JPEGQuality for durable sheet output. High enough that a second
// lossy pass through the document embedder stays visually lossless at
// print resolution.
const JPEGQuality = 95

func (s *Sheet) EncodeJPEG() ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, s.Img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode sheet jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Sheet) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, s.Img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode sheet png: %w", err)
	}
	return buf.Bytes(), nil
}
