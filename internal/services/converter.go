// Conversion API [Converter] implementation
//
// Talks to the hosted video-to-MP3 service: POST /download submits a video
// URL, GET /status/{id} reports job progress. Authenticated with a static
// API key header.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/tunify/internal/shared"
)

// Conversion job statuses reported by the API.
const (
	StatusAvailable       = "AVAILABLE"
	StatusConverting      = "CONVERTING"
	StatusConversionError = "CONVERSION_ERROR"
)

// Polling budget for converting jobs: a status check every 2 seconds, at
// most 30 attempts (60 seconds total).
const (
	pollInterval = 2 * time.Second
	maxPollCount = 30
)

// ConversionJob is the API's view of one submitted conversion.
type ConversionJob struct {
	ID          string `json:"id,omitempty"`
	Status      string `json:"status"`
	DownloadURL string `json:"downloadUrl,omitempty"`
}

// Available reports whether the job already carries a download locator.
func (j *ConversionJob) Available() bool {
	return j.Status == StatusAvailable && j.DownloadURL != ""
}

// ConverterService implements [Converter] over HTTP.
type ConverterService struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	// sleep is the inter-poll delay; injectable for tests.
	sleep time.Duration
}

var _ Converter = (*ConverterService)(nil)

// NewConverterService creates a conversion API client.
func NewConverterService(baseURL, apiKey string, client *http.Client) *ConverterService {
	if client == nil {
		client = http.DefaultClient
	}

	return &ConverterService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: client,
		sleep:      pollInterval,
	}
}

// Convert submits a video URL for MP3 conversion.
func (c *ConverterService) Convert(ctx context.Context, videoURL string) (*ConversionJob, error) {
	endpoint := fmt.Sprintf("%s/download?url=%s&format=mp3", c.baseURL, url.QueryEscape(videoURL))

	var job ConversionJob
	if err := c.doRequest(ctx, http.MethodPost, endpoint, &job); err != nil {
		return nil, err
	}

	return &job, nil
}

// Status fetches the current state of a converting job.
func (c *ConverterService) Status(ctx context.Context, id string) (*ConversionJob, error) {
	endpoint := fmt.Sprintf("%s/status/%s", c.baseURL, url.PathEscape(id))

	var job ConversionJob
	if err := c.doRequest(ctx, http.MethodGet, endpoint, &job); err != nil {
		return nil, err
	}
	job.ID = id

	return &job, nil
}

// AwaitDownload resolves a job to its download locator, polling while the
// API reports CONVERTING. Fails with [shared.ErrConversionFailed] on a
// reported error, [shared.ErrConversionTimeout] when the polling budget is
// exhausted, and the context's error when cancelled mid-poll.
func (c *ConverterService) AwaitDownload(ctx context.Context, job *ConversionJob) (string, error) {
	if job.Available() {
		return job.DownloadURL, nil
	}

	switch job.Status {
	case StatusConversionError:
		return "", shared.ErrConversionFailed
	case StatusConverting:
		if job.ID == "" {
			return "", fmt.Errorf("%w: converting job has no id", shared.ErrConversionFailed)
		}
	default:
		return "", fmt.Errorf("%w: unexpected status %q", shared.ErrConversionFailed, job.Status)
	}

	for attempt := 0; attempt < maxPollCount; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.sleep):
		}

		current, err := c.Status(ctx, job.ID)
		if err != nil {
			return "", err
		}

		switch current.Status {
		case StatusAvailable:
			if current.DownloadURL == "" {
				return "", fmt.Errorf("%w: available job has no download URL", shared.ErrConversionFailed)
			}
			return current.DownloadURL, nil
		case StatusConversionError:
			return "", shared.ErrConversionFailed
		case StatusConverting:
			// keep polling
		default:
			return "", fmt.Errorf("%w: unexpected status %q", shared.ErrConversionFailed, current.Status)
		}
	}

	return "", shared.ErrConversionTimeout
}

func (c *ConverterService) doRequest(ctx context.Context, method, endpoint string, result any) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("conversion API error (status %d): %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("conversion API error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
