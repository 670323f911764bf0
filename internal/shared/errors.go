package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Service and persistence errors
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrSongNotFound       = fmt.Errorf("song not found")

	// Upload pipeline errors. Each failure is terminal for the submission
	// attempt; nothing here is retried automatically.
	ErrValidation        = fmt.Errorf("validation failed")
	ErrCooldownActive    = fmt.Errorf("upload cooldown active")
	ErrStorageUpload     = fmt.Errorf("storage upload failed")
	ErrConversionFailed  = fmt.Errorf("conversion failed")
	ErrConversionTimeout = fmt.Errorf("conversion timed out")
	ErrRelayFetch        = fmt.Errorf("relay fetch failed")
	ErrMetadataInsert    = fmt.Errorf("metadata insert failed")

	// CLI input errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
