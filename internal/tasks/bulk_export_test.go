package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/tunify/internal/models"
	tu "github.com/desertthunder/tunify/internal/testing"
)

type stubLister struct {
	songs []models.Song
	err   error
}

func (s *stubLister) List(ctx context.Context) ([]models.Song, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.songs, nil
}

func catalogFixture() []models.Song {
	return []models.Song{
		{ID: "1", Title: "Alpha", Artist: "Beta Band", AudioURL: "a1"},
		{ID: "2", Title: "Bravo", Artist: "Alpha Act", AudioURL: "a2"},
		{ID: "3", Title: "Charlie", Artist: "Beta Band", AudioURL: "a3"},
	}
}

func TestGroupByArtist(t *testing.T) {
	artists, groups := groupByArtist(catalogFixture())

	if len(artists) != 2 {
		t.Fatalf("expected 2 artists, got %d", len(artists))
	}
	if artists[0] != "Alpha Act" || artists[1] != "Beta Band" {
		t.Errorf("artists not sorted: %v", artists)
	}
	if len(groups["Beta Band"]) != 2 {
		t.Errorf("Beta Band group %v", groups["Beta Band"])
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Beta Band", "beta_band"},
		{"  Trim Me  ", "trim_me"},
		{"Año/2024!", "ao2024"},
		{"!!!", "unknown"},
	}

	for _, tc := range cases {
		if got := slugify(tc.in); got != tc.want {
			t.Errorf("slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestBulkExport(t *testing.T) {
	ctx := context.Background()

	t.Run("exports each artist as JSON and writes a manifest", func(t *testing.T) {
		engine := NewCatalogEngine(&stubLister{songs: catalogFixture()})
		outputDir := filepath.Join(t.TempDir(), "export")

		result, err := engine.BulkExport(ctx, nil, BulkExportOpts{
			Format:    "json",
			OutputDir: outputDir,
		})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}

		if result.TotalArtists != 2 || result.SuccessfulExports != 2 || result.FailedExports != 0 {
			t.Errorf("result %+v", result)
		}

		tu.AssertFileExists(t, filepath.Join(outputDir, "alpha_act.json"))
		tu.AssertFileExists(t, filepath.Join(outputDir, "beta_band.json"))
		tu.AssertFileExists(t, result.ManifestPath)

		manifest := tu.MustReadFile(t, result.ManifestPath)
		if !strings.Contains(manifest, `"format": "json"`) {
			t.Errorf("manifest missing format: %s", manifest)
		}
		if !strings.Contains(manifest, `"total_artists": 2`) {
			t.Errorf("manifest missing artist count: %s", manifest)
		}
	})

	t.Run("CSV format writes song and catalog files per artist", func(t *testing.T) {
		engine := NewCatalogEngine(&stubLister{songs: catalogFixture()})
		outputDir := filepath.Join(t.TempDir(), "export")

		result, err := engine.BulkExport(ctx, nil, BulkExportOpts{
			Format:    "csv",
			OutputDir: outputDir,
		})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}
		if result.SuccessfulExports != 2 {
			t.Errorf("successful %d", result.SuccessfulExports)
		}

		tu.AssertFileExists(t, filepath.Join(outputDir, "beta_band_songs.csv"))
		tu.AssertFileExists(t, filepath.Join(outputDir, "beta_band_catalog.json"))

		content := tu.MustReadFile(t, filepath.Join(outputDir, "beta_band_songs.csv"))
		if !strings.Contains(content, "Alpha") || !strings.Contains(content, "Charlie") {
			t.Errorf("CSV missing songs: %s", content)
		}
	})

	t.Run("markdown format writes per-artist directories", func(t *testing.T) {
		engine := NewCatalogEngine(&stubLister{songs: catalogFixture()})
		outputDir := filepath.Join(t.TempDir(), "export")

		_, err := engine.BulkExport(ctx, nil, BulkExportOpts{
			Format:    "markdown",
			OutputDir: outputDir,
		})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}

		tu.AssertDirExists(t, filepath.Join(outputDir, "beta_band"))
		tu.AssertFileExists(t, filepath.Join(outputDir, "beta_band", "README.md"))
	})

	t.Run("progress updates are delivered", func(t *testing.T) {
		engine := NewCatalogEngine(&stubLister{songs: catalogFixture()})
		prog := make(chan ProgressUpdate, 32)

		_, err := engine.BulkExport(ctx, prog, BulkExportOpts{
			Format:    "json",
			OutputDir: filepath.Join(t.TempDir(), "export"),
		})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}
		close(prog)

		var sawLoad, sawExport bool
		for update := range prog {
			switch update.Phase {
			case LoadCatalog:
				sawLoad = true
			case ExportArtist:
				sawExport = true
			}
		}
		if !sawLoad || !sawExport {
			t.Errorf("missing progress phases: load=%v export=%v", sawLoad, sawExport)
		}
	})

	t.Run("store failure aborts the export", func(t *testing.T) {
		engine := NewCatalogEngine(&stubLister{err: errors.New("db down")})

		if _, err := engine.BulkExport(ctx, nil, BulkExportOpts{
			Format:    "json",
			OutputDir: filepath.Join(t.TempDir(), "export"),
		}); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("unwritable output counts as a failed export", func(t *testing.T) {
		outputDir := filepath.Join(t.TempDir(), "export")
		engine := NewCatalogEngine(&stubLister{songs: catalogFixture()})

		// A file standing where the artist export wants to write.
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.MkdirAll(filepath.Join(outputDir, "alpha_act.json"), 0755); err != nil {
			t.Fatalf("mkdir blocker: %v", err)
		}

		result, err := engine.BulkExport(ctx, nil, BulkExportOpts{
			Format:    "json",
			OutputDir: outputDir,
		})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}
		if result.FailedExports != 1 || result.SuccessfulExports != 1 {
			t.Errorf("result %+v", result)
		}
	})

	t.Run("nil store is rejected", func(t *testing.T) {
		engine := NewCatalogEngine(nil)
		if _, err := engine.BulkExport(ctx, nil, BulkExportOpts{}); err == nil {
			t.Error("expected error")
		}
	})
}
