package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/tunify/internal/shared"
)

func TestRelayService(t *testing.T) {
	ctx := context.Background()

	t.Run("posts the locator and returns the bytes", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/api/proxy-audio" {
				t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			}
			var body struct {
				URL string `json:"url"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("bad body: %v", err)
			}
			if body.URL != "https://cdn.test/a.mp3" {
				t.Errorf("relayed url %q", body.URL)
			}
			w.Header().Set("Content-Type", "audio/mpeg")
			w.Write([]byte("mp3-bytes"))
		}))
		defer server.Close()

		svc := NewRelayService(server.URL, server.Client())
		data, err := svc.FetchAudio(ctx, "https://cdn.test/a.mp3")
		if err != nil {
			t.Fatalf("FetchAudio failed: %v", err)
		}
		if string(data) != "mp3-bytes" {
			t.Errorf("data %q", data)
		}
	})

	t.Run("non-2xx maps to relay error with the server message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(w, `{"error":"upstream returned 403"}`)
		}))
		defer server.Close()

		svc := NewRelayService(server.URL, server.Client())
		_, err := svc.FetchAudio(ctx, "https://cdn.test/a.mp3")
		if !errors.Is(err, shared.ErrRelayFetch) {
			t.Fatalf("expected relay error, got %v", err)
		}
		if !strings.Contains(err.Error(), "upstream returned 403") {
			t.Errorf("error %q missing server message", err)
		}
	})
}

func TestDirectFetcher(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches the bytes directly", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				t.Errorf("unexpected method %s", r.Method)
			}
			w.Write([]byte("direct-bytes"))
		}))
		defer server.Close()

		f := NewDirectFetcher(server.Client())
		data, err := f.FetchAudio(ctx, server.URL+"/file.mp3")
		if err != nil {
			t.Fatalf("FetchAudio failed: %v", err)
		}
		if string(data) != "direct-bytes" {
			t.Errorf("data %q", data)
		}
	})

	t.Run("upstream error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		f := NewDirectFetcher(server.Client())
		if _, err := f.FetchAudio(ctx, server.URL); !errors.Is(err, shared.ErrRelayFetch) {
			t.Errorf("expected relay error, got %v", err)
		}
	})
}
