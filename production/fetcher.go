package production

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// AssetFetcher retrieves remote assets (page images, QR codes, logos) by URL.
type AssetFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type HTTPFetcher struct {
	*http.Client // [Embedded]
}

// Ensure HTTPFetcher implements AssetFetcher interface
var _ AssetFetcher = (*HTTPFetcher)(nil)

func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPFetcher{Client: &http.Client{Timeout: timeout}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil) // *http.Request
	if err != nil {
		return nil, err
	}
	res, err := f.Do(req) // *http.Response
	if err != nil {
		return nil, err
	}
	defer func() {
		if err = res.Body.Close(); err != nil {
			log.Printf("[WARN] %v", err)
		}
	}()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: HTTP Status Code: %d", url, res.StatusCode)
	}
	return io.ReadAll(res.Body)
}
