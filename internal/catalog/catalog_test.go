package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/tunify/internal/models"
)

type stubSource struct {
	songs []models.Song
	err   error
}

func (s stubSource) List(ctx context.Context) ([]models.Song, error) {
	return s.songs, s.err
}

func sampleSongs() []models.Song {
	return []models.Song{
		{ID: "1", Title: "Lost Soul", Artist: "NBSPLV", AudioURL: "a1"},
		{ID: "2", Title: "Midnight Drive", Artist: "Nocturne", AudioURL: "a2"},
		{ID: "3", Title: "Bewafa", Artist: "Imran Khan", AudioURL: "a3"},
	}
}

func TestFilter(t *testing.T) {
	songs := sampleSongs()

	t.Run("empty query matches every song in order", func(t *testing.T) {
		got := Filter(songs, "")
		if len(got) != len(songs) {
			t.Fatalf("expected %d songs, got %d", len(songs), len(got))
		}
		for i := range songs {
			if got[i].ID != songs[i].ID {
				t.Errorf("order changed at %d: expected %s, got %s", i, songs[i].ID, got[i].ID)
			}
		}
	})

	t.Run("whitespace query matches every song", func(t *testing.T) {
		got := Filter(songs, "   ")
		if len(got) != len(songs) {
			t.Errorf("expected %d songs, got %d", len(songs), len(got))
		}
	})

	t.Run("matches title prefix case-insensitively", func(t *testing.T) {
		got := Filter(songs, "lost")
		if len(got) != 1 || got[0].ID != "1" {
			t.Errorf("expected song 1, got %v", got)
		}
	})

	t.Run("matches artist prefix", func(t *testing.T) {
		got := Filter(songs, "imran")
		if len(got) != 1 || got[0].ID != "3" {
			t.Errorf("expected song 3, got %v", got)
		}
	})

	t.Run("does not match mid-string substrings", func(t *testing.T) {
		got := Filter(songs, "soul")
		if len(got) != 0 {
			t.Errorf("expected no matches for mid-string query, got %v", got)
		}
	})

	t.Run("preserves relative order across fields", func(t *testing.T) {
		got := Filter(songs, "n")
		// "NBSPLV" (artist of 1) and "Nocturne" (artist of 2) both match.
		if len(got) != 2 || got[0].ID != "1" || got[1].ID != "2" {
			t.Errorf("expected songs 1,2 in order, got %v", got)
		}
	})

	t.Run("no matches yields empty slice", func(t *testing.T) {
		got := Filter(songs, "zzz")
		if got == nil || len(got) != 0 {
			t.Errorf("expected empty non-nil slice, got %v", got)
		}
	})
}

func TestCatalog(t *testing.T) {
	t.Run("New copies the static list", func(t *testing.T) {
		static := sampleSongs()
		cat := New(static, nil)
		static[0].Title = "mutated"

		if song, _ := cat.Get(0); song.Title != "Lost Soul" {
			t.Errorf("catalog shares backing array with caller")
		}
	})

	t.Run("Load appends remote songs after static entries", func(t *testing.T) {
		cat := New(sampleSongs(), nil)
		src := stubSource{songs: []models.Song{
			{ID: "10", Title: "Uploaded", Artist: "Someone", AudioURL: "u"},
		}}

		if err := cat.Load(context.Background(), src); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cat.Len() != 4 {
			t.Fatalf("expected 4 songs, got %d", cat.Len())
		}
		if song, _ := cat.Get(3); song.ID != "10" {
			t.Errorf("remote song not appended last: %v", song)
		}
	})

	t.Run("Load skips duplicate ids", func(t *testing.T) {
		cat := New(sampleSongs(), nil)
		src := stubSource{songs: []models.Song{
			{ID: "1", Title: "Duplicate", Artist: "X", AudioURL: "d"},
			{ID: "11", Title: "Fresh", Artist: "Y", AudioURL: "f"},
		}}

		if err := cat.Load(context.Background(), src); err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cat.Len() != 4 {
			t.Errorf("expected duplicate to be skipped, got %d songs", cat.Len())
		}
		if song, _ := cat.Get(0); song.Title != "Lost Soul" {
			t.Errorf("duplicate replaced the original: %v", song)
		}
	})

	t.Run("Load surfaces source errors", func(t *testing.T) {
		cat := New(sampleSongs(), nil)
		wantErr := errors.New("db closed")

		if err := cat.Load(context.Background(), stubSource{err: wantErr}); !errors.Is(err, wantErr) {
			t.Errorf("expected source error, got %v", err)
		}
		if cat.Len() != 3 {
			t.Errorf("failed load mutated the catalog")
		}
	})

	t.Run("IndexOf returns -1 for unknown ids", func(t *testing.T) {
		cat := New(sampleSongs(), nil)
		if got := cat.IndexOf("missing"); got != -1 {
			t.Errorf("expected -1, got %d", got)
		}
		if got := cat.IndexOf("2"); got != 1 {
			t.Errorf("expected 1, got %d", got)
		}
	})

	t.Run("Append adds to the end", func(t *testing.T) {
		cat := New(sampleSongs(), nil)
		cat.Append(models.Song{ID: "upload-1", Title: "New", Artist: "Z", AudioURL: "n"})

		if got := cat.IndexOf("upload-1"); got != 3 {
			t.Errorf("expected appended index 3, got %d", got)
		}
	})

	t.Run("Get rejects out-of-range indexes", func(t *testing.T) {
		cat := New(sampleSongs(), nil)
		if _, ok := cat.Get(-1); ok {
			t.Error("expected false for negative index")
		}
		if _, ok := cat.Get(3); ok {
			t.Error("expected false past the end")
		}
	})

	t.Run("Search filters current contents", func(t *testing.T) {
		cat := New(sampleSongs(), nil)
		cat.Append(models.Song{ID: "20", Title: "Beacon", Artist: "Q", AudioURL: "b"})

		got := cat.Search("be")
		if len(got) != 2 {
			t.Fatalf("expected 2 matches, got %d", len(got))
		}
		if got[0].ID != "3" || got[1].ID != "20" {
			t.Errorf("unexpected match order: %v", got)
		}
	})
}

func TestStaticSongs(t *testing.T) {
	songs := StaticSongs()
	if len(songs) == 0 {
		t.Fatal("expected non-empty static catalog")
	}

	seen := make(map[string]struct{})
	for _, s := range songs {
		if err := s.Validate(); err != nil {
			t.Errorf("static song %q invalid: %v", s.ID, err)
		}
		if _, dup := seen[s.ID]; dup {
			t.Errorf("duplicate static id %q", s.ID)
		}
		seen[s.ID] = struct{}{}
	}
}
