package models

import (
	"fmt"
	"time"
)

// Song represents a playable track. Songs are immutable once created; a
// session replaces entries rather than mutating them in place.
type Song struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	CoverURL string `json:"coverUrl"`
	AudioURL string `json:"audioUrl"`
}

// Validate checks that the song carries the fields every catalog entry needs.
func (s Song) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("song id is required")
	}
	if s.Title == "" {
		return fmt.Errorf("song title is required")
	}
	if s.Artist == "" {
		return fmt.Errorf("song artist is required")
	}
	return nil
}

// TransportState identifies the transport controller's position in its
// lifecycle.
type TransportState int

const (
	Idle    TransportState = iota // no song loaded
	Loading                       // song selected, waiting for metadata
	Playing
	Paused
)

func (s TransportState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// PlaybackState is a snapshot of the transport controller's state. Owned
// exclusively by the controller; callers receive copies.
type PlaybackState struct {
	State            TransportState `json:"state"`
	CurrentSongIndex int            `json:"current_song_index"` // -1 when no song or song not in catalog
	IsPlaying        bool           `json:"is_playing"`
	CurrentTime      float64        `json:"current_time"` // seconds, 0 <= t <= Duration
	Duration         float64        `json:"duration"`     // seconds
	Volume           float64        `json:"volume"`       // [0, 1]
	ShuffleEnabled   bool           `json:"shuffle_enabled"`
	RepeatEnabled    bool           `json:"repeat_enabled"`
}

// HasSong reports whether a track is loaded.
func (s PlaybackState) HasSong() bool {
	return s.State != Idle
}

// ProgressPercent returns playback progress as a percentage (0-100).
func (s PlaybackState) ProgressPercent() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return s.CurrentTime / s.Duration * 100
}

// UploadMethod selects how the audio for a new song is provided.
type UploadMethod string

const (
	MethodFile UploadMethod = "file" // user supplies an MP3 directly
	MethodLink UploadMethod = "link" // audio resolved from a video URL via the conversion API
)

// Asset is a user-supplied binary (cover image or audio file).
type Asset struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// Ext returns the asset's filename extension without the leading dot, or ""
// when the name carries none.
func (a *Asset) Ext() string {
	for i := len(a.Name) - 1; i >= 0; i-- {
		if a.Name[i] == '.' {
			return a.Name[i+1:]
		}
	}
	return ""
}

// Submission is the validated-against input of one upload attempt.
type Submission struct {
	Title    string
	Artist   string
	Method   UploadMethod
	Cover    *Asset
	Audio    *Asset // file method only
	VideoURL string // link method only
}

// UploadState is the persisted record reconstructing the cooldown across
// process restarts.
type UploadState struct {
	LastUploadMillis int64 `json:"last_upload_ms"`
}

// LastUpload returns the recorded instant, or the zero time when no upload
// has succeeded yet.
func (u UploadState) LastUpload() time.Time {
	if u.LastUploadMillis == 0 {
		return time.Time{}
	}
	return time.UnixMilli(u.LastUploadMillis)
}
