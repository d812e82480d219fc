package testing

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"time"
)

// SSEResponse describes what the test server writes for one request.
//
// Chunks are flushed one by one. When Hold is set the handler keeps the connection open until the client goes away.
// A non-2xx Status writes no body.
type SSEResponse struct {
	Status int
	Chunks []string
	Gap    time.Duration
	Hold   bool
}

// SSEServer serves scripted event streams, one [SSEResponse] per incoming request.
//
// Requests beyond the script receive the last entry again.
type SSEServer struct {
	*httptest.Server

	mu       sync.Mutex
	script   []SSEResponse
	requests []*http.Request
	hits     atomic.Int32
	arrived  chan int
	done     chan struct{}
	once     sync.Once
}

// NewSSEServer starts a server that replays script.
func NewSSEServer(script ...SSEResponse) *SSEServer {
	s := &SSEServer{script: script, arrived: make(chan int, 64), done: make(chan struct{})}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

func (s *SSEServer) serve(w http.ResponseWriter, r *http.Request) {
	n := int(s.hits.Add(1))

	s.mu.Lock()
	s.requests = append(s.requests, r.Clone(r.Context()))
	resp := SSEResponse{Status: http.StatusOK}
	if len(s.script) > 0 {
		resp = s.script[min(n, len(s.script))-1]
	}
	s.mu.Unlock()

	select {
	case s.arrived <- n:
	default:
	}

	if resp.Status == 0 {
		resp.Status = http.StatusOK
	}
	if resp.Status < 200 || resp.Status >= 300 {
		w.WriteHeader(resp.Status)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(resp.Status)
	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	for _, chunk := range resp.Chunks {
		if _, err := w.Write([]byte(chunk)); err != nil {
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
		if resp.Gap > 0 {
			time.Sleep(resp.Gap)
		}
	}

	if resp.Hold {
		select {
		case <-r.Context().Done():
		case <-s.done:
		}
	}
}

// Close releases held streams and shuts the server down.
func (s *SSEServer) Close() {
	s.once.Do(func() { close(s.done) })
	s.Server.Close()
}

// Hits returns the number of requests served.
func (s *SSEServer) Hits() int {
	return int(s.hits.Load())
}

// WaitForHit waits until the nth request arrives. Returns false on timeout.
func (s *SSEServer) WaitForHit(n int, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		if s.Hits() >= n {
			return true
		}
		select {
		case <-s.arrived:
		case <-deadline:
			return s.Hits() >= n
		}
	}
}

// Requests returns copies of the requests received so far.
func (s *SSEServer) Requests() []*http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*http.Request(nil), s.requests...)
}
