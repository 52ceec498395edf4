package production

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/zeptools/print-core/geometry"
	"github.com/zeptools/print-core/overlays"
	"github.com/zeptools/print-core/pdfs"
	"github.com/zeptools/print-core/printjobs"
	"github.com/zeptools/print-core/raster"
	"github.com/zeptools/print-core/storages"
)

// Producer runs one production order end to end: fetch page images, compose
// the duplex sheets, stamp overlays, assemble the document, publish it to
// the blob store and queue a PrintJob. Every order works on its own
// freshly allocated canvases; a Producer is safe for concurrent use.
type Producer struct {
	Spec   geometry.SheetSpec
	Grid   geometry.StickerGrid
	Jobs   printjobs.Store
	Blob   storages.BlobStore
	Assets AssetFetcher

	// AssemblePDF off = upload raw sheet JPEGs and queue Artifact.ImageURLs
	AssemblePDF bool
	// StampProvenance adds a timestamp strip to the outside sheet
	StampProvenance bool
	// RotateInsideSheet turns the whole inside sheet 180 degrees for
	// printers that flip duplex pages on the short edge
	RotateInsideSheet bool
	// ScratchDir, when set, keeps per-order intermediate sheets on disk
	// until the order finishes
	ScratchDir string
	// PDFWriter names the registered document writer, "" = gofpdf
	PDFWriter string

	// Now is swappable for provenance-stamp tests
	Now func() time.Time
}

func (p *Producer) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// sheetSpec resolves the sheet geometry for one order. Requests without a
// paper size get the configured default.
func (p *Producer) sheetSpec(paperSize string) geometry.SheetSpec {
	if paperSize == "" {
		return p.Spec
	}
	return geometry.SheetSpecByName(paperSize)
}

func (p *Producer) writerName() string {
	if p.PDFWriter == "" {
		return "gofpdf"
	}
	return p.PDFWriter
}

// ProduceCard composes the two duplex sheets of a folded card, publishes
// the artifact and queues the print job. Returns the job id.
func (p *Producer) ProduceCard(ctx context.Context, req *CardRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	orderID := uuid.New().String()
	spec := p.sheetSpec(req.PaperSize)
	scratch, cleanup := p.openScratch(orderID)
	defer cleanup()

	front, err := p.fetchPanel(ctx, "front", req.FrontImageURL)
	if err != nil {
		return "", err
	}
	back, err := p.fetchPanel(ctx, "back", req.BackImageURL)
	if err != nil {
		return "", err
	}
	insideLeft, err := p.fetchPanel(ctx, "inside-left", req.InsideLeftImageURL)
	if err != nil {
		return "", err
	}
	insideRight, err := p.fetchPanel(ctx, "inside-right", req.InsideRightImageURL)
	if err != nil {
		return "", err
	}

	// outside duplex side: back panel left, front panel right
	sheet1, err := raster.ComposeSheet(spec, back, front, raster.SheetOptions{
		LeftName:  "back",
		RightName: "front",
	})
	if err != nil {
		return "", err
	}
	sheet2, err := raster.ComposeSheet(spec, insideLeft, insideRight, raster.SheetOptions{
		LeftName:  "inside-left",
		RightName: "inside-right",
	})
	if err != nil {
		return "", err
	}

	if req.GiftCard != nil {
		p.stampGiftCard(ctx, spec, sheet2, req.GiftCard)
	}
	// A short-edge duplex flip is a 180 turn of the whole inside sheet.
	// Rotating after stamping keeps the overlay at the canonical spot.
	if p.RotateInsideSheet {
		sheet2.Rotate180()
	}
	if p.StampProvenance {
		p.stampProvenance(spec, sheet1)
	}

	jpeg1, err := sheet1.EncodeJPEG()
	if err != nil {
		return "", err
	}
	jpeg2, err := sheet2.EncodeJPEG()
	if err != nil {
		return "", err
	}
	scratch.keep("sheet1.jpg", jpeg1)
	scratch.keep("sheet2.jpg", jpeg2)

	var artifact printjobs.Artifact
	if p.AssemblePDF {
		doc, err := pdfs.Assemble(p.writerName(),
			pdfs.PageImage{Data: jpeg1, WidthPt: spec.WidthPt(), HeightPt: spec.HeightPt()},
			pdfs.PageImage{Data: jpeg2, WidthPt: spec.WidthPt(), HeightPt: spec.HeightPt()},
		)
		if err != nil {
			return "", err
		}
		url, err := p.Blob.Upload(ctx, doc, "jobs/"+orderID+"/card.pdf", "application/pdf")
		if err != nil {
			return "", err
		}
		artifact.DocumentURL = url
	} else {
		for i, data := range [][]byte{jpeg1, jpeg2} {
			path := fmt.Sprintf("jobs/%s/sheet%d.jpg", orderID, i+1)
			url, err := p.Blob.Upload(ctx, data, path, "image/jpeg")
			if err != nil {
				return "", err
			}
			artifact.ImageURLs = append(artifact.ImageURLs, url)
		}
	}

	return p.submit(ctx, orderID, req.PrinterName, req.PaperSize, req.PaperType, req.TrayNumber, artifact)
}

// ProduceStickers composes one sticker page, publishes it and queues the
// print job. Returns the job id.
func (p *Producer) ProduceStickers(ctx context.Context, req *StickerRequest) (string, error) {
	if err := req.Validate(p.Grid.SlotCount()); err != nil {
		return "", err
	}
	orderID := uuid.New().String()
	scratch, cleanup := p.openScratch(orderID)
	defer cleanup()

	images := make([]image.Image, 0, len(req.ImageURLs))
	for i, url := range req.ImageURLs {
		img, err := p.fetchPanel(ctx, fmt.Sprintf("sticker-%d", i+1), url)
		if err != nil {
			return "", err
		}
		images = append(images, img)
	}

	sheet, err := raster.ComposeStickerSheet(p.Grid, images)
	if err != nil {
		return "", err
	}
	data, err := sheet.EncodeJPEG()
	if err != nil {
		return "", err
	}
	scratch.keep("stickers.jpg", data)

	var artifact printjobs.Artifact
	if p.AssemblePDF {
		doc, err := pdfs.Assemble(p.writerName(),
			pdfs.PageImage{Data: data, WidthPt: p.Grid.WidthPt(), HeightPt: p.Grid.HeightPt()},
		)
		if err != nil {
			return "", err
		}
		url, err := p.Blob.Upload(ctx, doc, "jobs/"+orderID+"/stickers.pdf", "application/pdf")
		if err != nil {
			return "", err
		}
		artifact.DocumentURL = url
	} else {
		url, err := p.Blob.Upload(ctx, data, "jobs/"+orderID+"/stickers.jpg", "image/jpeg")
		if err != nil {
			return "", err
		}
		artifact.ImageURLs = []string{url}
	}

	return p.submit(ctx, orderID, req.PrinterName, req.PaperSize, req.PaperType, req.TrayNumber, artifact)
}

func (p *Producer) submit(
	ctx context.Context,
	orderID string,
	printerName, paperSize, paperType string,
	tray *int,
	artifact printjobs.Artifact,
) (string, error) {
	job := &printjobs.PrintJob{
		ID:          orderID,
		PrinterName: printerName,
		PaperSize:   paperSize,
		PaperType:   paperType,
		Artifact:    artifact,
	}
	if tray != nil {
		job.TrayNumber.Int64, job.TrayNumber.Valid = int64(*tray), true
	}
	id, err := p.Jobs.Submit(ctx, job)
	if err != nil {
		return "", err
	}
	log.Printf("[INFO] [PRODUCTION] job %s queued for printer %q", id, printerName)
	return id, nil
}

// fetchPanel retrieves and decodes one page image. Any failure aborts the
// whole order; partial sheets are never produced.
func (p *Producer) fetchPanel(ctx context.Context, name, url string) (image.Image, error) {
	data, err := p.Assets.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s image: %w", name, err)
	}
	return raster.DecodePanel(name, bytes.NewReader(data))
}

// stampGiftCard renders the QR/logo/caption block and stamps it at the
// canonical inside-sheet position. Any failure skips the overlay; the
// order proceeds without it.
func (p *Producer) stampGiftCard(ctx context.Context, spec geometry.SheetSpec, sheet *raster.Sheet, gc *GiftCardData) {
	qr, err := p.Assets.Fetch(ctx, gc.QRCodeURL)
	if err != nil {
		log.Printf("[WARN] [PRODUCTION] gift-card overlay skipped: %v", err)
		return
	}
	scene := &overlays.GiftCardScene{
		QRImage:   qr,
		QRMime:    "image/png",
		StoreName: gc.StoreName,
		Amount:    gc.Amount,
		BoxW:      spec.PanelWidthPx() * 3 / 5,
	}
	scene.BoxH = scene.BoxW / 2
	if gc.LogoURL != "" {
		logo, err := p.Assets.Fetch(ctx, gc.LogoURL)
		if err != nil {
			log.Printf("[WARN] [PRODUCTION] gift-card overlay skipped: %v", err)
			return
		}
		scene.LogoImage = logo
		scene.LogoMime = "image/png"
	}
	overlay, err := scene.Render()
	if err != nil {
		log.Printf("[WARN] [PRODUCTION] gift-card overlay skipped: %v", err)
		return
	}
	x, y := geometry.GiftCardOverlayOrigin(spec, scene.BoxW, scene.BoxH)
	sheet.Stamp(overlay, x, y)
}

// stampProvenance adds the printed-at strip to the outside sheet.
func (p *Producer) stampProvenance(spec geometry.SheetSpec, sheet *raster.Sheet) {
	scene := overlays.NewTimestampScene(p.now(), spec.PanelWidthPx()/2)
	overlay, err := scene.Render()
	if err != nil {
		log.Printf("[WARN] [PRODUCTION] provenance stamp skipped: %v", err)
		return
	}
	h := overlay.Bounds().Dy()
	x, y := geometry.ProvenanceStripOrigin(spec, h)
	sheet.Stamp(overlay, x, y)
}
