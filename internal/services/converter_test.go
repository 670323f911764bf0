package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/tunify/internal/shared"
)

// conversionServer scripts the conversion API: the first response answers
// POST /download, subsequent status polls walk through statuses in order,
// repeating the last one.
func conversionServer(t *testing.T, initial ConversionJob, statuses ...ConversionJob) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var polls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if got := r.URL.Query().Get("format"); got != "mp3" {
				t.Errorf("format query %q", got)
			}
			json.NewEncoder(w).Encode(initial)
			return
		}

		i := int(polls.Add(1)) - 1
		if i >= len(statuses) {
			i = len(statuses) - 1
		}
		json.NewEncoder(w).Encode(statuses[i])
	}))
	return server, &polls
}

func newTestConverter(server *httptest.Server) *ConverterService {
	svc := NewConverterService(server.URL, "test-key", server.Client())
	svc.sleep = time.Millisecond
	return svc
}

func TestConverterService(t *testing.T) {
	ctx := context.Background()

	t.Run("Convert submits the video URL", func(t *testing.T) {
		var gotURL, gotKey string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotURL = r.URL.Query().Get("url")
			gotKey = r.Header.Get("X-API-Key")
			json.NewEncoder(w).Encode(ConversionJob{ID: "j1", Status: StatusConverting})
		}))
		defer server.Close()

		svc := newTestConverter(server)
		job, err := svc.Convert(ctx, "https://youtu.be/abc123xyz")
		if err != nil {
			t.Fatalf("Convert failed: %v", err)
		}
		if job.ID != "j1" || job.Status != StatusConverting {
			t.Errorf("job %+v", job)
		}
		if gotURL != "https://youtu.be/abc123xyz" {
			t.Errorf("url param %q", gotURL)
		}
		if gotKey != "test-key" {
			t.Errorf("api key header %q", gotKey)
		}
	})

	t.Run("AwaitDownload", func(t *testing.T) {
		t.Run("immediately available job needs no polling", func(t *testing.T) {
			server, polls := conversionServer(t, ConversionJob{})
			defer server.Close()

			svc := newTestConverter(server)
			job := &ConversionJob{ID: "j1", Status: StatusAvailable, DownloadURL: "https://cdn.test/a.mp3"}

			url, err := svc.AwaitDownload(ctx, job)
			if err != nil {
				t.Fatalf("AwaitDownload failed: %v", err)
			}
			if url != "https://cdn.test/a.mp3" {
				t.Errorf("url %q", url)
			}
			if polls.Load() != 0 {
				t.Errorf("expected no polls, got %d", polls.Load())
			}
		})

		t.Run("polls while converting", func(t *testing.T) {
			server, polls := conversionServer(t, ConversionJob{},
				ConversionJob{Status: StatusConverting},
				ConversionJob{Status: StatusConverting},
				ConversionJob{Status: StatusAvailable, DownloadURL: "https://cdn.test/b.mp3"},
			)
			defer server.Close()

			svc := newTestConverter(server)
			job := &ConversionJob{ID: "j2", Status: StatusConverting}

			url, err := svc.AwaitDownload(ctx, job)
			if err != nil {
				t.Fatalf("AwaitDownload failed: %v", err)
			}
			if url != "https://cdn.test/b.mp3" {
				t.Errorf("url %q", url)
			}
			if polls.Load() != 3 {
				t.Errorf("expected 3 polls, got %d", polls.Load())
			}
		})

		t.Run("reported failure maps to conversion error", func(t *testing.T) {
			server, _ := conversionServer(t, ConversionJob{},
				ConversionJob{Status: StatusConversionError},
			)
			defer server.Close()

			svc := newTestConverter(server)
			job := &ConversionJob{ID: "j3", Status: StatusConverting}

			if _, err := svc.AwaitDownload(ctx, job); !errors.Is(err, shared.ErrConversionFailed) {
				t.Errorf("expected conversion failure, got %v", err)
			}
		})

		t.Run("immediate error status fails without polling", func(t *testing.T) {
			server, polls := conversionServer(t, ConversionJob{})
			defer server.Close()

			svc := newTestConverter(server)
			job := &ConversionJob{ID: "j4", Status: StatusConversionError}

			if _, err := svc.AwaitDownload(ctx, job); !errors.Is(err, shared.ErrConversionFailed) {
				t.Errorf("expected conversion failure, got %v", err)
			}
			if polls.Load() != 0 {
				t.Errorf("expected no polls, got %d", polls.Load())
			}
		})

		t.Run("exhausted budget times out", func(t *testing.T) {
			server, polls := conversionServer(t, ConversionJob{},
				ConversionJob{Status: StatusConverting},
			)
			defer server.Close()

			svc := newTestConverter(server)
			job := &ConversionJob{ID: "j5", Status: StatusConverting}

			if _, err := svc.AwaitDownload(ctx, job); !errors.Is(err, shared.ErrConversionTimeout) {
				t.Errorf("expected timeout, got %v", err)
			}
			if polls.Load() != 30 {
				t.Errorf("expected 30 polls, got %d", polls.Load())
			}
		})

		t.Run("cancellation stops polling", func(t *testing.T) {
			server, _ := conversionServer(t, ConversionJob{},
				ConversionJob{Status: StatusConverting},
			)
			defer server.Close()

			svc := NewConverterService(server.URL, "", server.Client())
			svc.sleep = 50 * time.Millisecond
			job := &ConversionJob{ID: "j6", Status: StatusConverting}

			cancelCtx, cancel := context.WithCancel(ctx)
			cancel()

			if _, err := svc.AwaitDownload(cancelCtx, job); !errors.Is(err, context.Canceled) {
				t.Errorf("expected context error, got %v", err)
			}
		})

		t.Run("converting job without an id is rejected", func(t *testing.T) {
			server, _ := conversionServer(t, ConversionJob{})
			defer server.Close()

			svc := newTestConverter(server)
			job := &ConversionJob{Status: StatusConverting}

			if _, err := svc.AwaitDownload(ctx, job); !errors.Is(err, shared.ErrConversionFailed) {
				t.Errorf("expected failure, got %v", err)
			}
		})
	})

	t.Run("doRequest surfaces API error payloads", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"error":"quota exceeded"}`)
		}))
		defer server.Close()

		svc := newTestConverter(server)
		_, err := svc.Convert(ctx, "https://youtu.be/abc123xyz")
		if err == nil {
			t.Fatal("expected error")
		}
		if got := err.Error(); !strings.Contains(got, "quota exceeded") {
			t.Errorf("error %q missing API message", got)
		}
	})
}
