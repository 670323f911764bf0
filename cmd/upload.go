package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/desertthunder/tunify/internal/models"
	"github.com/urfave/cli/v3"
)

// Upload submits a song through the upload pipeline. Missing fields are
// collected interactively.
func (r *Runner) Upload(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	sub := models.Submission{
		Title:    cmd.String("title"),
		Artist:   cmd.String("artist"),
		Method:   models.UploadMethod(cmd.String("method")),
		VideoURL: cmd.String("url"),
	}
	coverPath := cmd.String("cover")
	audioPath := cmd.String("audio")

	if sub.Method == "" {
		if sub.VideoURL != "" {
			sub.Method = models.MethodLink
		} else {
			sub.Method = models.MethodFile
		}
	}

	if err := promptMissing(&sub, &coverPath, &audioPath); err != nil {
		return err
	}

	cover, err := readAsset(coverPath)
	if err != nil {
		return err
	}
	sub.Cover = cover

	if sub.Method == models.MethodFile {
		audio, err := readAsset(audioPath)
		if err != nil {
			return err
		}
		sub.Audio = audio
	}

	db, repo, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	coordinator := r.newCoordinator(repo, r.audioFetcher(cmd.String("relay")))

	song, err := coordinator.Submit(ctx, sub)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(song, true)
	}

	r.writePlain("✓ Uploaded: %s - %s\n", song.Artist, song.Title)
	r.writePlain("Audio: %s\n", song.AudioURL)
	return nil
}

// promptMissing runs an interactive form for fields not supplied as flags.
func promptMissing(sub *models.Submission, coverPath, audioPath *string) error {
	var fields []huh.Field

	if sub.Title == "" {
		fields = append(fields, huh.NewInput().Title("Song title").Value(&sub.Title))
	}
	if sub.Artist == "" {
		fields = append(fields, huh.NewInput().Title("Artist name").Value(&sub.Artist))
	}
	if *coverPath == "" {
		fields = append(fields, huh.NewInput().Title("Cover image path").Value(coverPath))
	}
	if sub.Method == models.MethodFile && *audioPath == "" {
		fields = append(fields, huh.NewInput().Title("MP3 file path").Value(audioPath))
	}
	if sub.Method == models.MethodLink && sub.VideoURL == "" {
		fields = append(fields, huh.NewInput().Title("Video URL").Value(&sub.VideoURL))
	}

	if len(fields) == 0 {
		return nil
	}

	form := huh.NewForm(huh.NewGroup(fields...))
	if err := form.Run(); err != nil {
		return fmt.Errorf("upload cancelled: %w", err)
	}
	return nil
}

// readAsset loads a local file as an upload asset, deriving the content type
// from the extension.
func readAsset(path string) (*models.Asset, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	// mime returns parameters for some registrations; keep the bare type.
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}

	return &models.Asset{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}
