// package services defines clients for the external collaborators of the
// upload pipeline
//
// Object storage (covers, audio), the video-to-MP3 conversion API, and the
// same-origin audio relay.
package services

import (
	"context"
	"io"
)

// ObjectStorage uploads binary assets and resolves them to public URLs.
type ObjectStorage interface {
	// Upload writes the object under bucket/key. The key must be unique;
	// uploads never overwrite.
	Upload(ctx context.Context, bucket, key string, r io.Reader, contentType string) error

	// PublicURL resolves a stored object to its public resource locator.
	PublicURL(bucket, key string) string
}

// Converter resolves a video URL to a downloadable MP3 stream.
type Converter interface {
	// Convert submits a video URL for conversion. The returned job is either
	// immediately available or still converting.
	Convert(ctx context.Context, videoURL string) (*ConversionJob, error)

	// AwaitDownload polls a converting job until it yields a download URL,
	// the API reports failure, or the polling budget is exhausted.
	AwaitDownload(ctx context.Context, job *ConversionJob) (string, error)
}

// AudioFetcher retrieves raw audio bytes for a download locator. The default
// implementation goes through the same-origin relay endpoint, since browsers
// cannot fetch the conversion host cross-origin.
type AudioFetcher interface {
	FetchAudio(ctx context.Context, url string) ([]byte, error)
}
