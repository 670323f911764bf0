package catalog

import (
	"context"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunify/internal/models"
)

// Source lists persisted songs for the initial merge. Implemented by
// repositories.SongRepository.
type Source interface {
	List(ctx context.Context) ([]models.Song, error)
}

// Catalog is the ordered sequence of songs for the current session.
// Ordering invariant: static songs first, then backend rows in fetch order,
// then session uploads in upload order.
type Catalog struct {
	mu     sync.RWMutex
	songs  []models.Song
	logger *log.Logger
}

// New creates a catalog seeded with the static song list.
func New(static []models.Song, logger *log.Logger) *Catalog {
	songs := make([]models.Song, len(static))
	copy(songs, static)

	return &Catalog{songs: songs, logger: logger}
}

// Load merges persisted rows into the catalog after the static entries.
// Rows whose id collides with an existing entry are skipped; uniqueness is
// best-effort within a session.
func (c *Catalog) Load(ctx context.Context, src Source) error {
	remote, err := src.List(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]struct{}, len(c.songs))
	for _, s := range c.songs {
		seen[s.ID] = struct{}{}
	}

	added := 0
	for _, s := range remote {
		if _, dup := seen[s.ID]; dup {
			if c.logger != nil {
				c.logger.Warn("skipping duplicate song id", "id", s.ID, "title", s.Title)
			}
			continue
		}
		seen[s.ID] = struct{}{}
		c.songs = append(c.songs, s)
		added++
	}

	if c.logger != nil {
		c.logger.Info("catalog loaded", "static", len(c.songs)-added, "remote", added)
	}
	return nil
}

// Songs returns a copy of the catalog in order.
func (c *Catalog) Songs() []models.Song {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Song, len(c.songs))
	copy(out, c.songs)
	return out
}

// Len returns the number of songs in the catalog.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.songs)
}

// Get returns the song at index i, or false when out of range.
func (c *Catalog) Get(i int) (models.Song, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i < 0 || i >= len(c.songs) {
		return models.Song{}, false
	}
	return c.songs[i], true
}

// IndexOf locates a song id in the catalog, returning -1 when the id is not
// a member (a stale reference is a defined edge case, not an error).
func (c *Catalog) IndexOf(id string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i, s := range c.songs {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Append adds a session upload to the end of the catalog.
func (c *Catalog) Append(song models.Song) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.songs = append(c.songs, song)
}

// Filter returns the subsequence of songs whose title or artist starts with
// the lowercased, trimmed query. The empty query matches every song. Pure
// and deterministic; recomputed fully on every keystroke.
func Filter(songs []models.Song, query string) []models.Song {
	q := strings.ToLower(strings.TrimSpace(query))

	matched := make([]models.Song, 0, len(songs))
	for _, s := range songs {
		if strings.HasPrefix(strings.ToLower(s.Title), q) || strings.HasPrefix(strings.ToLower(s.Artist), q) {
			matched = append(matched, s)
		}
	}
	return matched
}

// Search filters the catalog's current contents.
func (c *Catalog) Search(query string) []models.Song {
	return Filter(c.Songs(), query)
}
