package upload

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/tunify/internal/models"
)

// StateStore persists the last successful upload instant so the cooldown
// survives a restart.
type StateStore interface {
	Load() (models.UploadState, error)
	Save(models.UploadState) error
}

// FileStateStore keeps the upload state as a small JSON file.
type FileStateStore struct {
	path string
}

var _ StateStore = (*FileStateStore)(nil)

// NewFileStateStore creates a store writing to the given path.
func NewFileStateStore(path string) *FileStateStore {
	return &FileStateStore{path: path}
}

// Load reads the persisted state. A missing file is an empty state, not an
// error.
func (s *FileStateStore) Load() (models.UploadState, error) {
	var state models.UploadState

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return state, nil
	}
	if err != nil {
		return state, fmt.Errorf("failed to read upload state: %w", err)
	}

	if err := json.Unmarshal(data, &state); err != nil {
		return models.UploadState{}, fmt.Errorf("failed to parse upload state: %w", err)
	}
	return state, nil
}

// Save writes the state, creating parent directories as needed.
func (s *FileStateStore) Save(state models.UploadState) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal upload state: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write upload state: %w", err)
	}
	return nil
}

// CooldownGate enforces the minimum wait between successive uploads.
type CooldownGate struct {
	store    StateStore
	duration time.Duration
	now      func() time.Time
}

// NewCooldownGate creates a gate backed by the given store. The clock is
// injectable for tests.
func NewCooldownGate(store StateStore, duration time.Duration, now func() time.Time) *CooldownGate {
	if now == nil {
		now = time.Now
	}
	return &CooldownGate{store: store, duration: duration, now: now}
}

// Remaining returns how much of the cooldown window is left; zero or
// negative means uploads are permitted.
func (g *CooldownGate) Remaining() (time.Duration, error) {
	state, err := g.store.Load()
	if err != nil {
		return 0, err
	}

	last := state.LastUpload()
	if last.IsZero() {
		return 0, nil
	}

	return g.duration - g.now().Sub(last), nil
}

// Arm records the current instant as the last successful upload.
func (g *CooldownGate) Arm() error {
	return g.store.Save(models.UploadState{LastUploadMillis: g.now().UnixMilli()})
}
