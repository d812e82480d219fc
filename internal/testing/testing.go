// Package testing holds the test doubles shared by gourmet's packages: failing writers and bodies,
// a canned [http.RoundTripper], a fake timer scheduler, a scripted event-stream server and an
// in-memory recipe service.
package testing

import (
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"
)

var errWrite = errors.New("write failed")

// FWriter fails every Write, with Err when set.
type FWriter struct {
	Err error
}

func (f *FWriter) Write(p []byte) (int, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	return 0, errWrite
}

// LimitedWriter forwards the first n writes to its target and fails the rest.
type LimitedWriter struct {
	target io.Writer
	left   int
}

// NewLimitedWriter returns a writer that accepts n writes.
func NewLimitedWriter(target io.Writer, n int) *LimitedWriter {
	return &LimitedWriter{target: target, left: n}
}

func (l *LimitedWriter) Write(p []byte) (int, error) {
	if l.left <= 0 {
		return 0, errors.New("write limit exceeded")
	}
	l.left--
	return l.target.Write(p)
}

// MockRoundTripper answers every request with the same response or error and records the requests it saw.
type MockRoundTripper struct {
	response *http.Response
	err      error

	mu       sync.Mutex
	requests []*http.Request
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

// Requests returns the requests seen so far.
func (m *MockRoundTripper) Requests() []*http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*http.Request(nil), m.requests...)
}

// FailingBody is a response body whose reads fail.
type FailingBody struct {
	closed bool
}

func (f *FailingBody) Read(p []byte) (int, error) {
	return 0, errors.New("read failed")
}

func (f *FailingBody) Close() error {
	f.closed = true
	return nil
}

// Closed reports whether Close was called.
func (f *FailingBody) Closed() bool {
	return f.closed
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected %s to exist: %v", path, err)
		return
	}
	if info.Size() == 0 && !info.IsDir() {
		t.Errorf("expected %s to have content", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(content)
}
