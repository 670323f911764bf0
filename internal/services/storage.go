package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// StorageService implements [ObjectStorage] against a hosted storage REST
// API. Objects are addressed as {base}/object/{bucket}/{key}; public reads
// go through {base}/object/public/{bucket}/{key}.
type StorageService struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ ObjectStorage = (*StorageService)(nil)

// NewStorageService creates a storage client. The client defaults to
// [http.DefaultClient].
func NewStorageService(baseURL, apiKey string, client *http.Client) *StorageService {
	if client == nil {
		client = http.DefaultClient
	}

	return &StorageService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: client,
	}
}

// Upload writes an object under bucket/key. Keys are generated unique per
// upload, so an existing object is never overwritten.
func (s *StorageService) Upload(ctx context.Context, bucket, key string, r io.Reader, contentType string) error {
	uploadURL := fmt.Sprintf("%s/object/%s/%s", s.baseURL, bucket, key)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, r)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}
	req.Header.Set("Cache-Control", "3600")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("storage API error (status %d): %s", resp.StatusCode, string(body))
	}

	return nil
}

// PublicURL resolves bucket/key to its public resource locator.
func (s *StorageService) PublicURL(bucket, key string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", s.baseURL, bucket, key)
}
