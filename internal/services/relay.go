package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/desertthunder/tunify/internal/shared"
)

// RelayService implements [AudioFetcher] by posting the download locator to
// the same-origin relay endpoint, which fetches the bytes server-side. The
// conversion host does not allow cross-origin reads, so clients never fetch
// the download URL directly.
type RelayService struct {
	baseURL    string
	httpClient *http.Client
}

var _ AudioFetcher = (*RelayService)(nil)

// NewRelayService creates a relay client for the given server base URL.
func NewRelayService(baseURL string, client *http.Client) *RelayService {
	if client == nil {
		client = http.DefaultClient
	}

	return &RelayService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
	}
}

// FetchAudio retrieves the raw audio bytes behind url through the relay.
func (r *RelayService) FetchAudio(ctx context.Context, url string) ([]byte, error) {
	payload, err := json.Marshal(map[string]string{"url": url})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal relay request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/proxy-audio", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRelayFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
			return nil, fmt.Errorf("%w: status %d: %s", shared.ErrRelayFetch, resp.StatusCode, errResp.Error)
		}
		return nil, fmt.Errorf("%w: status %d", shared.ErrRelayFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", shared.ErrRelayFetch, err)
	}

	return body, nil
}
