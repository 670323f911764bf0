package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/tunify/internal/formatter"
	"github.com/desertthunder/tunify/internal/models"
	"github.com/desertthunder/tunify/internal/shared"
	"golang.org/x/time/rate"
)

// BulkExportOpts contains configuration for bulk catalog exports.
type BulkExportOpts struct {
	Format        string  // Export format: json, csv, markdown, txt
	OutputDir     string  // Base output directory (default: catalog_export_{epoch})
	NumWorkers    int     // Concurrent workers (default: 5)
	RateLimit     float64 // Cover downloads per second (default: 5)
	IncludeCovers bool    // Download cover art for markdown exports
}

// artistExportJob carries one artist's songs to a worker.
type artistExportJob struct {
	Artist string
	Songs  []models.Song
}

// BulkExport exports every artist's songs concurrently with rate limiting and progress tracking.
//
// This method implements a worker pool pattern to efficiently export the catalog.
// It paces cover-art downloads, handles partial failures gracefully, and generates
// a manifest file summarizing the export results.
func (e *CatalogEngine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if e.store == nil {
		return nil, fmt.Errorf("%w: song store not initialized", shared.ErrServiceUnavailable)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("catalog_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	e.sendProgress(prog, loadingCatalogUpdate())
	songs, err := e.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	artists, groups := groupByArtist(songs)

	result := &BulkExportResult{
		TotalArtists:    len(artists),
		OutputDirectory: opts.OutputDir,
		Results:         make([]ArtistExportResult, 0, len(artists)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan artistExportJob, len(artists))
	results := make(chan ArtistExportResult, len(artists))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, limiter, opts)
	}

	go func() {
		for i, artist := range artists {
			select {
			case <-ctx.Done():
				close(jobs)
				return
			default:
			}

			jobs <- artistExportJob{Artist: artist, Songs: groups[artist]}
			e.sendProgress(prog, exportingArtistUpdate(i+1, len(artists), artist))
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(artists), res.Artist, len(res.Files)))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(artists), res.Artist, res.Error))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := writeManifest(result, opts.Format, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker is a worker goroutine that exports artist groups from the jobs channel.
func (e *CatalogEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan artistExportJob,
	results chan<- ArtistExportResult,
	limiter *rate.Limiter,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res := e.exportSingleArtist(ctx, job, limiter, opts)
		results <- res
	}
}

// exportSingleArtist exports one artist's songs to the appropriate format.
func (e *CatalogEngine) exportSingleArtist(
	ctx context.Context,
	j artistExportJob,
	limiter *rate.Limiter,
	opts BulkExportOpts,
) ArtistExportResult {
	result := ArtistExportResult{
		Artist:  j.Artist,
		Success: false,
		Files:   []string{},
	}

	export := &formatter.CatalogExport{
		Name:  j.Artist,
		Songs: j.Songs,
	}
	base := slugify(j.Artist)

	switch opts.Format {
	case "csv":
		baseFilepath := filepath.Join(opts.OutputDir, base)
		csvRes, err := formatter.WriteCSVExport(export, baseFilepath)
		if err != nil {
			result.Error = fmt.Errorf("CSV export failed: %w", err)
			return result
		}
		result.Files = []string{csvRes.SongsFile, csvRes.MetadataFile}
		result.Success = true

	case "markdown":
		outputDir := filepath.Join(opts.OutputDir, base)

		var imageURL string
		if opts.IncludeCovers && len(j.Songs) > 0 {
			if err := limiter.Wait(ctx); err == nil {
				imageURL = j.Songs[0].CoverURL
			}
		}

		mdRes, err := formatter.WriteMarkdownExport(export, outputDir, imageURL)
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		result.Files = mdRes.Files
		result.Success = true

	case "txt":
		txtPath := filepath.Join(opts.OutputDir, fmt.Sprintf("%s_songs.txt", base))
		path, err := formatter.WriteTextExport(export, txtPath)
		if err != nil {
			result.Error = fmt.Errorf("text export failed: %w", err)
			return result
		}
		result.Files = []string{path}
		result.Success = true
	case "json":
		fallthrough
	default:
		jsonPath := filepath.Join(opts.OutputDir, fmt.Sprintf("%s.json", base))
		data, err := shared.MarshalJSON(export, true)
		if err != nil {
			result.Error = fmt.Errorf("JSON marshal failed: %w", err)
			return result
		}
		if err := os.WriteFile(jsonPath, data, 0644); err != nil {
			result.Error = fmt.Errorf("JSON write failed: %w", err)
			return result
		}
		result.Files = []string{jsonPath}
		result.Success = true
	}
	return result
}

// writeManifest records the export summary next to the exported files.
func writeManifest(result *BulkExportResult, format, path string) error {
	manifest := struct {
		Format string `json:"format"`
		*BulkExportResult
	}{Format: format, BulkExportResult: result}

	data, err := shared.MarshalJSON(manifest, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// slugify makes an artist name safe to use as a file name.
func slugify(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}
