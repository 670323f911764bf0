package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunify/internal/catalog"
	"github.com/desertthunder/tunify/internal/models"
	"github.com/desertthunder/tunify/internal/shared"
	"github.com/desertthunder/tunify/internal/upload"
)

// maxUploadMemory bounds the in-memory portion of multipart parsing; larger
// parts spill to temp files.
const maxUploadMemory = 16 << 20

// SongsHandler serves the catalog and accepts new song uploads.
// Implements the Handler interface for registration with a Router.
type SongsHandler struct {
	catalog     *catalog.Catalog
	coordinator *upload.Coordinator
	logger      *log.Logger
}

// NewSongsHandler creates a handler over the session catalog and upload
// coordinator.
func NewSongsHandler(cat *catalog.Catalog, coord *upload.Coordinator, logger *log.Logger) *SongsHandler {
	return &SongsHandler{catalog: cat, coordinator: coord, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *SongsHandler) Routes() []string {
	return []string{"/api/songs"}
}

// ServeHTTP dispatches GET (list) and POST (upload).
func (h *SongsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.upload(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *SongsHandler) list(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.Songs())
}

// upload parses a multipart submission and drives it through the
// coordinator. Field names: title, artist, method ("file" or "link"),
// cover, audio, video_url.
func (h *SongsHandler) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return
	}

	method := models.UploadMethod(r.FormValue("method"))
	if method == "" {
		method = models.MethodFile
	}

	sub := models.Submission{
		Title:    r.FormValue("title"),
		Artist:   r.FormValue("artist"),
		Method:   method,
		VideoURL: r.FormValue("video_url"),
	}

	cover, err := readPart(r, "cover")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sub.Cover = cover

	audio, err := readPart(r, "audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sub.Audio = audio

	song, err := h.coordinator.Submit(r.Context(), sub)
	if err != nil {
		h.logger.Warn("upload rejected", "error", err)
		writeError(w, uploadStatus(err), err.Error())
		return
	}

	h.catalog.Append(*song)
	writeJSON(w, http.StatusCreated, song)
}

// readPart pulls one optional file part into an Asset. A missing part
// returns nil; presence requirements belong to the coordinator.
func readPart(r *http.Request, field string) (*models.Asset, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("invalid %s part: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s part: %w", field, err)
	}

	return &models.Asset{
		Name:        header.Filename,
		ContentType: partContentType(header),
		Size:        header.Size,
		Data:        data,
	}, nil
}

func partContentType(header *multipart.FileHeader) string {
	return header.Header.Get("Content-Type")
}

// uploadStatus maps the coordinator's error taxonomy onto HTTP statuses.
func uploadStatus(err error) int {
	switch {
	case errors.Is(err, shared.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrCooldownActive):
		return http.StatusTooManyRequests
	case errors.Is(err, shared.ErrConversionTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, shared.ErrConversionFailed),
		errors.Is(err, shared.ErrRelayFetch),
		errors.Is(err, shared.ErrStorageUpload):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
