package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/tunify/internal/shared"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("NewDatabase failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}
	return db
}

func TestSongRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create assigns an id and returns the row", func(t *testing.T) {
		repo := NewSongRepository(newTestDB(t))

		row, err := repo.Create(ctx, "Midnight", "The Owls", "https://cdn.test/c.png", "https://cdn.test/a.mp3")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if row.ID == 0 {
			t.Error("id not assigned")
		}
		if row.Title != "Midnight" || row.Artist != "The Owls" {
			t.Errorf("row %+v", row)
		}
		if row.CreatedAt.IsZero() {
			t.Error("created_at not set")
		}
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewSongRepository(newTestDB(t))
		created, err := repo.Create(ctx, "T", "A", "c", "a")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		t.Run("returns the stored row", func(t *testing.T) {
			row, err := repo.Get(ctx, created.ID)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if row.Title != "T" || row.AudioURL != "a" {
				t.Errorf("row %+v", row)
			}
		})

		t.Run("unknown id is not found", func(t *testing.T) {
			if _, err := repo.Get(ctx, 9999); !errors.Is(err, shared.ErrSongNotFound) {
				t.Errorf("expected not found, got %v", err)
			}
		})
	})

	t.Run("List returns rows in insertion order as songs", func(t *testing.T) {
		repo := NewSongRepository(newTestDB(t))
		for _, title := range []string{"First", "Second", "Third"} {
			if _, err := repo.Create(ctx, title, "Artist", "", ""); err != nil {
				t.Fatalf("Create %s failed: %v", title, err)
			}
		}

		songs, err := repo.List(ctx)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(songs) != 3 {
			t.Fatalf("expected 3 songs, got %d", len(songs))
		}
		for i, want := range []string{"First", "Second", "Third"} {
			if songs[i].Title != want {
				t.Errorf("songs[%d] = %q, want %q", i, songs[i].Title, want)
			}
		}
		if songs[0].ID != "1" {
			t.Errorf("stringified id %q", songs[0].ID)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewSongRepository(newTestDB(t))
		created, err := repo.Create(ctx, "T", "A", "", "")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if err := repo.Delete(ctx, created.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := repo.Get(ctx, created.ID); !errors.Is(err, shared.ErrSongNotFound) {
			t.Errorf("deleted row still present: %v", err)
		}

		if err := repo.Delete(ctx, created.ID); !errors.Is(err, shared.ErrSongNotFound) {
			t.Errorf("double delete: %v", err)
		}
	})
}

func TestSongRowMapping(t *testing.T) {
	row := SongRow{ID: 42, Title: "T", Artist: "A", CoverURL: "c", AudioURL: "a"}
	song := row.Song()
	if song.ID != "42" {
		t.Errorf("id %q", song.ID)
	}
	if song.Title != "T" || song.Artist != "A" || song.CoverURL != "c" || song.AudioURL != "a" {
		t.Errorf("song %+v", song)
	}
}
