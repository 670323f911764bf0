package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/tunify/internal/catalog"
	"github.com/desertthunder/tunify/internal/models"
	"github.com/desertthunder/tunify/internal/repositories"
	"github.com/desertthunder/tunify/internal/shared"
	tu "github.com/desertthunder/tunify/internal/testing"
	"github.com/desertthunder/tunify/internal/upload"
)

type memStore struct {
	err  error
	rows int64
}

func (s *memStore) Create(ctx context.Context, title, artist, coverURL, audioURL string) (*repositories.SongRow, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.rows++
	return &repositories.SongRow{ID: s.rows, Title: title, Artist: artist, CoverURL: coverURL, AudioURL: audioURL}, nil
}

type handlerFixture struct {
	handler *SongsHandler
	catalog *catalog.Catalog
	storage *tu.MockStorage
	gate    *upload.CooldownGate
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	cat := catalog.New([]models.Song{
		{ID: "1", Title: "Alpha", Artist: "One", AudioURL: "a"},
		{ID: "2", Title: "Beta", Artist: "Two", AudioURL: "b"},
	}, nil)

	storage := &tu.MockStorage{}
	gate := upload.NewCooldownGate(
		upload.NewFileStateStore(filepath.Join(t.TempDir(), "state.json")),
		10*time.Minute,
		nil,
	)

	coordinator := upload.NewCoordinator(upload.Opts{
		Storage:   storage,
		Converter: &tu.MockConverter{DownloadURL: "https://cdn.test/c.mp3"},
		Fetcher:   &tu.MockFetcher{Data: []byte("bytes")},
		Store:     &memStore{},
		Gate:      gate,
	})

	return &handlerFixture{
		handler: NewSongsHandler(cat, coordinator, shared.NewLogger(io.Discard)),
		catalog: cat,
		storage: storage,
		gate:    gate,
	}
}

// multipartSubmission builds a valid file-method upload body.
func multipartSubmission(t *testing.T, fields map[string]string, withCover, withAudio bool) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("WriteField %s: %v", k, err)
		}
	}

	writePart := func(field, filename, contentType, content string) {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			`form-data; name="`+field+`"; filename="`+filename+`"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("CreatePart %s: %v", field, err)
		}
		if _, err := part.Write([]byte(content)); err != nil {
			t.Fatalf("write part %s: %v", field, err)
		}
	}

	if withCover {
		writePart("cover", "art.png", "image/png", "png-bytes")
	}
	if withAudio {
		writePart("audio", "track.mp3", "audio/mpeg", "mp3-bytes")
	}

	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestSongsHandler(t *testing.T) {
	t.Run("GET lists the catalog", func(t *testing.T) {
		f := newHandlerFixture(t)

		req := httptest.NewRequest(http.MethodGet, "/api/songs", nil)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status %d", rec.Code)
		}
		var songs []models.Song
		if err := json.NewDecoder(rec.Body).Decode(&songs); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(songs) != 2 || songs[0].Title != "Alpha" {
			t.Errorf("songs %v", songs)
		}
	})

	t.Run("POST uploads and appends to the catalog", func(t *testing.T) {
		f := newHandlerFixture(t)

		body, contentType := multipartSubmission(t, map[string]string{
			"title": "New Song", "artist": "Uploader", "method": "file",
		}, true, true)

		req := httptest.NewRequest(http.MethodPost, "/api/songs", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
		}

		var song models.Song
		if err := json.NewDecoder(rec.Body).Decode(&song); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !strings.HasPrefix(song.ID, "upload-") {
			t.Errorf("session id %q", song.ID)
		}
		if song.Title != "New Song" {
			t.Errorf("title %q", song.Title)
		}

		if f.catalog.Len() != 3 {
			t.Errorf("catalog length %d", f.catalog.Len())
		}
		if f.storage.Count() != 2 {
			t.Errorf("storage uploads %d", f.storage.Count())
		}
	})

	t.Run("POST error mapping", func(t *testing.T) {
		t.Run("validation failure is 400", func(t *testing.T) {
			f := newHandlerFixture(t)

			body, contentType := multipartSubmission(t, map[string]string{
				"artist": "NoTitle", "method": "file",
			}, true, true)

			req := httptest.NewRequest(http.MethodPost, "/api/songs", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			f.handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status %d", rec.Code)
			}
		})

		t.Run("active cooldown is 429", func(t *testing.T) {
			f := newHandlerFixture(t)
			if err := f.gate.Arm(); err != nil {
				t.Fatalf("Arm failed: %v", err)
			}

			body, contentType := multipartSubmission(t, map[string]string{
				"title": "T", "artist": "A", "method": "file",
			}, true, true)

			req := httptest.NewRequest(http.MethodPost, "/api/songs", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			f.handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusTooManyRequests {
				t.Errorf("status %d", rec.Code)
			}
			if f.storage.Count() != 0 {
				t.Error("rejected upload reached storage")
			}
		})

		t.Run("storage failure is 502", func(t *testing.T) {
			f := newHandlerFixture(t)
			f.storage.Err = errors.New("bucket down")

			body, contentType := multipartSubmission(t, map[string]string{
				"title": "T", "artist": "A", "method": "file",
			}, true, true)

			req := httptest.NewRequest(http.MethodPost, "/api/songs", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			f.handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadGateway {
				t.Errorf("status %d", rec.Code)
			}
			if f.catalog.Len() != 2 {
				t.Error("failed upload appended to catalog")
			}
		})
	})

	t.Run("other methods are rejected", func(t *testing.T) {
		f := newHandlerFixture(t)

		req := httptest.NewRequest(http.MethodDelete, "/api/songs", nil)
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status %d", rec.Code)
		}
	})
}

func TestUploadStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{shared.ErrValidation, http.StatusBadRequest},
		{shared.ErrCooldownActive, http.StatusTooManyRequests},
		{shared.ErrConversionTimeout, http.StatusGatewayTimeout},
		{shared.ErrConversionFailed, http.StatusBadGateway},
		{shared.ErrRelayFetch, http.StatusBadGateway},
		{shared.ErrStorageUpload, http.StatusBadGateway},
		{shared.ErrMetadataInsert, http.StatusInternalServerError},
		{errors.New("anything else"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		if got := uploadStatus(tc.err); got != tc.want {
			t.Errorf("uploadStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
