package upload

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunify/internal/models"
	"github.com/desertthunder/tunify/internal/repositories"
	"github.com/desertthunder/tunify/internal/services"
	"github.com/desertthunder/tunify/internal/shared"
	"github.com/dustin/go-humanize"
)

// Asset size ceilings.
const (
	MaxCoverSize = 10 << 20 // 10 MiB
	MaxAudioSize = 50 << 20 // 50 MiB
)

const mp3ContentType = "audio/mpeg"

// videoURLPattern recognizes the video-host URLs the conversion API accepts.
var videoURLPattern = regexp.MustCompile(`^(?:https?://)?(?:www\.|m\.|music\.)?(?:youtube\.com/(?:watch\?\S*v=|shorts/|embed/)|youtu\.be/)[\w-]{6,}`)

// MetadataStore persists the finalized song row. Implemented by
// repositories.SongRepository.
type MetadataStore interface {
	Create(ctx context.Context, title, artist, coverURL, audioURL string) (*repositories.SongRow, error)
}

// Coordinator validates submissions and drives them through storage,
// conversion, and the metadata insert.
type Coordinator struct {
	storage     services.ObjectStorage
	converter   services.Converter
	fetcher     services.AudioFetcher
	store       MetadataStore
	gate        *CooldownGate
	coverBucket string
	audioBucket string
	logger      *log.Logger
	now         func() time.Time
}

// Opts contains the coordinator's dependencies.
type Opts struct {
	Storage     services.ObjectStorage
	Converter   services.Converter
	Fetcher     services.AudioFetcher
	Store       MetadataStore
	Gate        *CooldownGate
	CoverBucket string
	AudioBucket string
	Logger      *log.Logger
	Now         func() time.Time
}

// NewCoordinator creates an upload coordinator.
func NewCoordinator(opts Opts) *Coordinator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.CoverBucket == "" {
		opts.CoverBucket = "song-covers"
	}
	if opts.AudioBucket == "" {
		opts.AudioBucket = "song-audios"
	}

	return &Coordinator{
		storage:     opts.Storage,
		converter:   opts.Converter,
		fetcher:     opts.Fetcher,
		store:       opts.Store,
		gate:        opts.Gate,
		coverBucket: opts.CoverBucket,
		audioBucket: opts.AudioBucket,
		logger:      opts.Logger,
		now:         opts.Now,
	}
}

// Submit runs one upload attempt end to end: preconditions in order
// (cooldown, required fields, per-method asset checks), asset resolution and
// storage writes, then the metadata insert and cooldown arm. On success the
// returned Song carries a synthetic session id and is ready to append to the
// catalog.
func (c *Coordinator) Submit(ctx context.Context, sub models.Submission) (*models.Song, error) {
	if err := c.validate(sub); err != nil {
		return nil, err
	}

	audio := sub.Audio
	if sub.Method == models.MethodLink {
		resolved, err := c.resolveLink(ctx, sub.VideoURL)
		if err != nil {
			return nil, err
		}
		audio = resolved
	}

	coverURL, audioURL, err := c.uploadAssets(ctx, sub.Cover, audio)
	if err != nil {
		return nil, err
	}

	row, err := c.store.Create(ctx, strings.TrimSpace(sub.Title), strings.TrimSpace(sub.Artist), coverURL, audioURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrMetadataInsert, err)
	}

	if err := c.gate.Arm(); err != nil {
		// The upload itself succeeded; a failed state write only shortens
		// the enforced wait.
		c.logger.Warn("failed to persist cooldown state", "error", err)
	}

	song := &models.Song{
		ID:       fmt.Sprintf("upload-%d", c.now().UnixMilli()),
		Title:    row.Title,
		Artist:   row.Artist,
		CoverURL: coverURL,
		AudioURL: audioURL,
	}

	c.logger.Info("song uploaded", "title", song.Title, "artist", song.Artist, "row", row.ID)
	return song, nil
}

// validate checks preconditions in order, short-circuiting on the first
// failure. No network call happens before it passes.
func (c *Coordinator) validate(sub models.Submission) error {
	remaining, err := c.gate.Remaining()
	if err != nil {
		return fmt.Errorf("failed to check cooldown: %w", err)
	}
	if remaining > 0 {
		return &CooldownActiveError{Remaining: remaining}
	}

	if strings.TrimSpace(sub.Title) == "" {
		return fmt.Errorf("%w: song title is required", shared.ErrValidation)
	}
	if strings.TrimSpace(sub.Artist) == "" {
		return fmt.Errorf("%w: artist name is required", shared.ErrValidation)
	}

	switch sub.Method {
	case models.MethodFile:
		if sub.Cover == nil || sub.Audio == nil {
			return fmt.Errorf("%w: both cover and audio files are required", shared.ErrValidation)
		}
		if err := validateCover(sub.Cover); err != nil {
			return err
		}
		if sub.Audio.ContentType != mp3ContentType {
			return fmt.Errorf("%w: audio file must be an MP3", shared.ErrValidation)
		}
		if sub.Audio.Size > MaxAudioSize {
			return fmt.Errorf("%w: audio file must be less than %s (got %s)",
				shared.ErrValidation, humanize.IBytes(MaxAudioSize), humanize.IBytes(uint64(sub.Audio.Size)))
		}
	case models.MethodLink:
		if !videoURLPattern.MatchString(strings.TrimSpace(sub.VideoURL)) {
			return fmt.Errorf("%w: unrecognized video URL", shared.ErrValidation)
		}
		if sub.Cover == nil {
			return fmt.Errorf("%w: a cover image is required", shared.ErrValidation)
		}
		if err := validateCover(sub.Cover); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown upload method %q", shared.ErrValidation, sub.Method)
	}

	return nil
}

func validateCover(cover *models.Asset) error {
	if !strings.HasPrefix(cover.ContentType, "image/") {
		return fmt.Errorf("%w: cover file must be an image", shared.ErrValidation)
	}
	if cover.Size > MaxCoverSize {
		return fmt.Errorf("%w: cover image must be less than %s (got %s)",
			shared.ErrValidation, humanize.IBytes(MaxCoverSize), humanize.IBytes(uint64(cover.Size)))
	}
	return nil
}

// resolveLink turns a video URL into an MP3 asset: submit the conversion,
// await a download locator, then pull the bytes through the relay.
func (c *Coordinator) resolveLink(ctx context.Context, videoURL string) (*models.Asset, error) {
	job, err := c.converter.Convert(ctx, strings.TrimSpace(videoURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrConversionFailed, err)
	}

	downloadURL, err := c.converter.AwaitDownload(ctx, job)
	if err != nil {
		return nil, err
	}

	c.logger.Info("conversion ready", "url", downloadURL)

	data, err := c.fetcher.FetchAudio(ctx, downloadURL)
	if err != nil {
		return nil, err
	}

	return &models.Asset{
		Name:        "converted.mp3",
		ContentType: mp3ContentType,
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}

// uploadAssets writes both binaries under generated unique keys preserving
// the original extensions and resolves their public URLs.
func (c *Coordinator) uploadAssets(ctx context.Context, cover, audio *models.Asset) (coverURL, audioURL string, err error) {
	coverKey := fmt.Sprintf("%s-cover.%s", shared.GenerateID(), extOrDefault(cover, "jpg"))
	audioKey := fmt.Sprintf("%s-audio.%s", shared.GenerateID(), extOrDefault(audio, "mp3"))

	if err := c.storage.Upload(ctx, c.coverBucket, coverKey, bytes.NewReader(cover.Data), cover.ContentType); err != nil {
		return "", "", &StorageUploadError{Stage: StageCover, Err: err}
	}

	if err := c.storage.Upload(ctx, c.audioBucket, audioKey, bytes.NewReader(audio.Data), audio.ContentType); err != nil {
		return "", "", &StorageUploadError{Stage: StageAudio, Err: err}
	}

	return c.storage.PublicURL(c.coverBucket, coverKey), c.storage.PublicURL(c.audioBucket, audioKey), nil
}

func extOrDefault(a *models.Asset, fallback string) string {
	if ext := a.Ext(); ext != "" {
		return ext
	}
	return fallback
}
