package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/tunify/internal/shared"
	"github.com/urfave/cli/v3"
)

// Convert submits a video URL to the conversion API and prints the download
// link once the job is available.
func (r *Runner) Convert(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	videoURL := cmd.StringArg("url")
	if videoURL == "" {
		return fmt.Errorf("%w: video URL argument is required", shared.ErrMissingArgument)
	}

	converter := r.converterService()

	r.logger.Info("submitting conversion", "url", videoURL)
	job, err := converter.Convert(ctx, videoURL)
	if err != nil {
		return fmt.Errorf("conversion request failed: %w", err)
	}

	r.logger.Info("awaiting download", "job", job.ID, "status", job.Status)
	downloadURL, err := converter.AwaitDownload(ctx, job)
	if err != nil {
		return err
	}

	r.writePlain("%s\n", downloadURL)

	outputPath := cmd.String("output")
	if outputPath == "" {
		return nil
	}

	fetcher := r.audioFetcher(cmd.String("relay"))
	data, err := fetcher.FetchAudio(ctx, downloadURL)
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write MP3: %w", err)
	}

	r.writePlain("✓ Saved %d bytes to %s\n", len(data), outputPath)
	return nil
}
