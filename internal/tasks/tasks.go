// package tasks implements catalog export operations.
//
// The core abstraction is ExportEngine, which orchestrates bulk catalog exports.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"sort"

	"github.com/desertthunder/tunify/internal/models"
)

// SongLister provides the persisted catalog. Implemented by
// repositories.SongRepository and catalog.Catalog sources.
type SongLister interface {
	List(ctx context.Context) ([]models.Song, error)
}

// ArtistExportResult records the outcome of exporting one artist's songs.
type ArtistExportResult struct {
	Artist  string   `json:"artist"`
	Success bool     `json:"success"`
	Files   []string `json:"files,omitempty"`
	Error   error    `json:"-"`
}

// BulkExportResult summarizes a full catalog export.
type BulkExportResult struct {
	TotalArtists      int                  `json:"total_artists"`
	SuccessfulExports int                  `json:"successful_exports"`
	FailedExports     int                  `json:"failed_exports"`
	OutputDirectory   string               `json:"output_directory"`
	ManifestPath      string               `json:"manifest_path,omitempty"`
	Results           []ArtistExportResult `json:"results"`
}

// ExportEngine defines catalog export operations.
type ExportEngine interface {
	// BulkExport exports the catalog grouped by artist, one export per artist.
	BulkExport(ctx context.Context, progress chan<- ProgressUpdate, opts BulkExportOpts) (*BulkExportResult, error)
}

// CatalogEngine implements ExportEngine over a song store.
type CatalogEngine struct {
	store SongLister
}

// NewCatalogEngine creates a CatalogEngine backed by the provided store.
func NewCatalogEngine(store SongLister) *CatalogEngine {
	return &CatalogEngine{store: store}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *CatalogEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// groupByArtist partitions songs into per-artist groups, artists sorted for
// deterministic output.
func groupByArtist(songs []models.Song) (artists []string, groups map[string][]models.Song) {
	groups = make(map[string][]models.Song)
	for _, song := range songs {
		groups[song.Artist] = append(groups[song.Artist], song)
	}
	artists = make([]string, 0, len(groups))
	for artist := range groups {
		artists = append(artists, artist)
	}
	sort.Strings(artists)
	return artists, groups
}
