package upload

import (
	"fmt"
	"time"

	"github.com/desertthunder/tunify/internal/shared"
)

// CooldownActiveError rejects an upload attempted inside the cooldown
// window. Unwraps to [shared.ErrCooldownActive].
type CooldownActiveError struct {
	Remaining time.Duration
}

func (e *CooldownActiveError) Error() string {
	return fmt.Sprintf("upload cooldown active: %s remaining", e.Remaining.Round(time.Second))
}

func (e *CooldownActiveError) Unwrap() error {
	return shared.ErrCooldownActive
}

// Upload pipeline stages, used to report where a storage upload failed.
const (
	StageCover = "cover"
	StageAudio = "audio"
)

// StorageUploadError reports a failed object-storage write. Unwraps to both
// [shared.ErrStorageUpload] and the underlying cause.
type StorageUploadError struct {
	Stage string
	Err   error
}

func (e *StorageUploadError) Error() string {
	return fmt.Sprintf("storage upload failed at %s stage: %v", e.Stage, e.Err)
}

func (e *StorageUploadError) Unwrap() []error {
	return []error{shared.ErrStorageUpload, e.Err}
}
