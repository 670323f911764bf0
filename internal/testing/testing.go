// package testing contains shared testing utilities
package testing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/tunify/internal/services"
)

// MockStorage is a test double for [services.ObjectStorage]. It records
// every upload and can be primed to fail.
type MockStorage struct {
	mu      sync.Mutex
	Err     error
	Uploads []MockUpload
}

// MockUpload captures one Upload call.
type MockUpload struct {
	Bucket      string
	Key         string
	ContentType string
	Data        []byte
}

func (m *MockStorage) Upload(ctx context.Context, bucket, key string, body io.Reader, contentType string) error {
	if m.Err != nil {
		return m.Err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Uploads = append(m.Uploads, MockUpload{Bucket: bucket, Key: key, ContentType: contentType, Data: data})
	return nil
}

func (m *MockStorage) PublicURL(bucket, key string) string {
	return fmt.Sprintf("https://storage.test/object/public/%s/%s", bucket, key)
}

// Count returns the number of recorded uploads.
func (m *MockStorage) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Uploads)
}

// MockConverter is a test double for [services.Converter].
type MockConverter struct {
	ConvertErr  error
	AwaitErr    error
	DownloadURL string
	ConvertN    int
	AwaitN      int
}

func (m *MockConverter) Convert(ctx context.Context, videoURL string) (*services.ConversionJob, error) {
	m.ConvertN++
	if m.ConvertErr != nil {
		return nil, m.ConvertErr
	}
	return &services.ConversionJob{ID: "job-1", Status: services.StatusConverting}, nil
}

func (m *MockConverter) AwaitDownload(ctx context.Context, job *services.ConversionJob) (string, error) {
	m.AwaitN++
	if m.AwaitErr != nil {
		return "", m.AwaitErr
	}
	return m.DownloadURL, nil
}

// MockFetcher is a test double for [services.AudioFetcher].
type MockFetcher struct {
	Err   error
	Data  []byte
	Calls []string
}

func (m *MockFetcher) FetchAudio(ctx context.Context, url string) ([]byte, error) {
	m.Calls = append(m.Calls, url)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Data, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// SequenceRoundTripper returns canned responses in order, repeating the last
// one once the sequence is exhausted.
type SequenceRoundTripper struct {
	mu        sync.Mutex
	responses []*http.Response
	idx       int
}

func NewSequenceRoundTripper(responses ...*http.Response) *SequenceRoundTripper {
	return &SequenceRoundTripper{responses: responses}
}

func (s *SequenceRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.responses) == 0 {
		return nil, errors.New("no responses configured")
	}
	resp := s.responses[s.idx]
	if s.idx < len(s.responses)-1 {
		s.idx++
	}
	return resp, nil
}

// JSONResponse builds an *http.Response with a JSON string body.
func JSONResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
