package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tunify/internal/catalog"
	"github.com/desertthunder/tunify/internal/tasks"
	"github.com/urfave/cli/v3"
)

// SongsList prints the catalog, optionally filtered by a prefix query.
func (r *Runner) SongsList(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	db, repo, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	cat := catalog.New(catalog.StaticSongs(), r.logger)
	if err := cat.Load(ctx, repo); err != nil {
		r.logger.Warn("failed to load persisted songs", "error", err)
	}

	songs := cat.Songs()
	if query := cmd.String("query"); query != "" {
		songs = cat.Search(query)
	}

	if cmd.Bool("json") {
		return r.writeJSON(songs, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Catalog (%d songs)", len(songs)))
	for i, song := range songs {
		r.writePlain("%d. %s - %s\n", i+1, song.Artist, song.Title)
	}
	return nil
}

// SongsExport runs the bulk catalog export, streaming progress to the terminal.
func (r *Runner) SongsExport(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	db, repo, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	engine := tasks.NewCatalogEngine(repo)

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := engine.BulkExport(ctx, progress, tasks.BulkExportOpts{
		Format:        cmd.String("format"),
		OutputDir:     cmd.String("output"),
		NumWorkers:    int(cmd.Int("workers")),
		RateLimit:     cmd.Float("rate"),
		IncludeCovers: cmd.Bool("covers"),
	})
	close(progress)
	<-done

	if err != nil {
		return err
	}

	r.writePlainln("Exported %d/%d artists to %s",
		result.SuccessfulExports, result.TotalArtists, result.OutputDirectory)
	if result.FailedExports > 0 {
		r.writePlain("%d exports failed (see %s)\n", result.FailedExports, result.ManifestPath)
	}
	return nil
}
