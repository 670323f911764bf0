// package repositories provides the persistence layer for the songs table.
//
// The backend assigns integer ids; rows are stringified into models.Song
// when they enter the session catalog.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/tunify/internal/models"
	"github.com/desertthunder/tunify/internal/shared"
)

// SongRepository handles CRUD operations on the songs table.
type SongRepository struct {
	db *sql.DB
}

// NewSongRepository creates a new SongRepository with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

// SongRow is the persisted form of a song.
type SongRow struct {
	ID        int64
	Title     string
	Artist    string
	CoverURL  string
	AudioURL  string
	CreatedAt time.Time
}

// Song maps the row into the catalog's Song shape, stringifying the id.
func (r SongRow) Song() models.Song {
	return models.Song{
		ID:       strconv.FormatInt(r.ID, 10),
		Title:    r.Title,
		Artist:   r.Artist,
		CoverURL: r.CoverURL,
		AudioURL: r.AudioURL,
	}
}

// Create inserts a metadata row and returns it with the backend-assigned id.
func (r *SongRepository) Create(ctx context.Context, title, artist, coverURL, audioURL string) (*SongRow, error) {
	query := `
		INSERT INTO songs (title, artist, cover_url, audio_url)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, title, artist, coverURL, audioURL)
	if err != nil {
		return nil, fmt.Errorf("failed to insert song: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get inserted id: %w", err)
	}

	return r.Get(ctx, id)
}

// Get retrieves a song row by id.
func (r *SongRepository) Get(ctx context.Context, id int64) (*SongRow, error) {
	query := `
		SELECT id, title, artist, cover_url, audio_url, created_at
		FROM songs
		WHERE id = ?
	`

	var row SongRow
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&row.ID, &row.Title, &row.Artist, &row.CoverURL, &row.AudioURL, &row.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: id %d", shared.ErrSongNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan song: %w", err)
	}

	return &row, nil
}

// List retrieves every song row in insertion order, mapped into the
// catalog's Song shape.
func (r *SongRepository) List(ctx context.Context) ([]models.Song, error) {
	query := `
		SELECT id, title, artist, cover_url, audio_url, created_at
		FROM songs
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	var songs []models.Song
	for rows.Next() {
		var row SongRow
		if err := rows.Scan(&row.ID, &row.Title, &row.Artist, &row.CoverURL, &row.AudioURL, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan song: %w", err)
		}
		songs = append(songs, row.Song())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return songs, nil
}

// Delete removes a song row by id.
func (r *SongRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM songs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", shared.ErrSongNotFound, id)
	}

	return nil
}
