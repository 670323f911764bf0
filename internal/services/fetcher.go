package services

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/desertthunder/tunify/internal/shared"
)

// DirectFetcher implements [AudioFetcher] with a plain GET against the
// download locator. Used server-side, where no cross-origin restriction
// applies; browser-facing clients go through [RelayService] instead.
type DirectFetcher struct {
	httpClient *http.Client
}

var _ AudioFetcher = (*DirectFetcher)(nil)

// NewDirectFetcher creates a direct audio fetcher.
func NewDirectFetcher(client *http.Client) *DirectFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &DirectFetcher{httpClient: client}
}

// FetchAudio retrieves the raw audio bytes behind url.
func (f *DirectFetcher) FetchAudio(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRelayFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", shared.ErrRelayFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", shared.ErrRelayFetch, err)
	}

	return body, nil
}
