package production

import "fmt"

// GiftCardData - optional QR/logo/caption block stamped onto the inside
// sheet. Assets are fetched by URL at production time; any fetch or decode
// failure skips the overlay without failing the job.
type GiftCardData struct {
	QRCodeURL string `json:"qr_code_url"`
	LogoURL   string `json:"logo_url,omitempty"`
	StoreName string `json:"store_name,omitempty"`
	Amount    string `json:"amount,omitempty"`
}

// CardRequest - one folded-card production order: four logical page images
// plus printing options.
type CardRequest struct {
	FrontImageURL       string `json:"front_image_url"`
	BackImageURL        string `json:"back_image_url"`
	InsideLeftImageURL  string `json:"inside_left_image_url"`
	InsideRightImageURL string `json:"inside_right_image_url"`

	PrinterName string `json:"printer_name"`
	PaperSize   string `json:"paper_size,omitempty"`
	PaperType   string `json:"paper_type,omitempty"`
	TrayNumber  *int   `json:"tray_number,omitempty"`

	GiftCard *GiftCardData `json:"gift_card,omitempty"`
}

// Validate rejects incomplete orders before any compositing work starts.
func (r *CardRequest) Validate() error {
	if r.PrinterName == "" {
		return fmt.Errorf("printer_name is required")
	}
	pages := map[string]string{
		"front_image_url":        r.FrontImageURL,
		"back_image_url":         r.BackImageURL,
		"inside_left_image_url":  r.InsideLeftImageURL,
		"inside_right_image_url": r.InsideRightImageURL,
	}
	for field, url := range pages {
		if url == "" {
			return fmt.Errorf("%s is required", field)
		}
	}
	if r.GiftCard != nil && r.GiftCard.QRCodeURL == "" {
		return fmt.Errorf("gift_card.qr_code_url is required when gift_card is present")
	}
	return nil
}

// StickerRequest - one sticker-sheet production order: up to six images,
// one per circular slot, in slot order.
type StickerRequest struct {
	ImageURLs []string `json:"image_urls"`

	PrinterName string `json:"printer_name"`
	PaperSize   string `json:"paper_size,omitempty"`
	PaperType   string `json:"paper_type,omitempty"`
	TrayNumber  *int   `json:"tray_number,omitempty"`
}

func (r *StickerRequest) Validate(slotCount int) error {
	if r.PrinterName == "" {
		return fmt.Errorf("printer_name is required")
	}
	if len(r.ImageURLs) == 0 {
		return fmt.Errorf("image_urls must contain at least one image")
	}
	if len(r.ImageURLs) > slotCount {
		return fmt.Errorf("image_urls exceeds the %d available slots", slotCount)
	}
	return nil
}
