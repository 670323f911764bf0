package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
)

// ProxyHandler relays remote audio downloads through the service origin so
// browser clients avoid cross-origin fetch restrictions.
type ProxyHandler struct {
	client *http.Client
	logger *log.Logger
}

// NewProxyHandler creates the audio relay handler. A nil client falls back
// to http.DefaultClient.
func NewProxyHandler(client *http.Client, logger *log.Logger) *ProxyHandler {
	if client == nil {
		client = http.DefaultClient
	}
	return &ProxyHandler{client: client, logger: logger}
}

// Routes returns the HTTP routes this handler serves.
func (h *ProxyHandler) Routes() []string {
	return []string{"/api/proxy-audio"}
}

// ServeHTTP accepts POST {"url": "..."} and streams the upstream bytes back
// as audio/mpeg. The upstream fetch is bound to the request context, so a
// disconnecting client aborts the transfer.
func (h *ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	target := strings.TrimSpace(body.URL)
	if target == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid url: %v", err))
		return
	}

	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Error("relay fetch failed", "url", target, "error", err)
		writeError(w, http.StatusBadGateway, "failed to fetch audio")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		h.logger.Error("relay upstream error", "url", target, "status", resp.StatusCode)
		writeError(w, http.StatusBadGateway, fmt.Sprintf("upstream returned %d", resp.StatusCode))
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, resp.Body); err != nil {
		h.logger.Warn("relay stream interrupted", "url", target, "error", err)
	}
}
