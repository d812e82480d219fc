package tasks

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/desertthunder/gourmet/internal/models"
	"github.com/desertthunder/gourmet/internal/shared"
	"github.com/desertthunder/gourmet/internal/stream"
	tu "github.com/desertthunder/gourmet/internal/testing"
)

func TestParseLikeCount(t *testing.T) {
	tc := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "42", want: 42},
		{in: " 7 ", want: 7},
		{in: "0", want: 0},
		{in: "-3", want: -3},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "4.5", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLikeCount(tt.in)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidPayload) {
					t.Errorf("expected ErrInvalidPayload, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseLikeCount(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func newTestCounter(t *testing.T, url string) (*LikeCounter, *tu.FakeScheduler) {
	t.Helper()
	sched := tu.NewFakeScheduler()
	l := NewLikeCounter(LikeCounterOpts{
		RecipeID: "r1",
		URL:      url,
		Logger:   shared.NewLogger(io.Discard),
		Scheduler: stream.SchedulerFunc(func(d time.Duration, f func()) stream.Timer {
			return sched.Schedule(d, f)
		}),
	})
	t.Cleanup(l.Stop)
	return l, sched
}

func waitUpdate(t *testing.T, l *LikeCounter) models.LikeCount {
	t.Helper()
	select {
	case u := <-l.Updates():
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for like update")
		return models.LikeCount{}
	}
}

func TestLikeCounter(t *testing.T) {
	t.Run("Tracks the latest count", func(t *testing.T) {
		srv := tu.NewSSEServer(tu.SSEResponse{
			Chunks: []string{"event: count\ndata: 42\n\n", "event: count\ndata: 43\n\n"},
			Gap:    20 * time.Millisecond,
			Hold:   true,
		})
		defer srv.Close()

		l, _ := newTestCounter(t, srv.URL)
		if _, known := l.Count(); known {
			t.Error("count should be unknown before the first event")
		}
		l.Start()

		first := waitUpdate(t, l)
		if first.Count != 42 || first.RecipeID != "r1" {
			t.Errorf("unexpected first update %+v", first)
		}
		if second := waitUpdate(t, l); second.Count != 43 {
			t.Errorf("expected 43, got %d", second.Count)
		}

		if n, known := l.Count(); !known || n != 43 {
			t.Errorf("expected count 43, got %d (known=%v)", n, known)
		}
		if l.State() != stream.StateOpen {
			t.Errorf("expected open stream, got %s", l.State())
		}
	})

	t.Run("Passes headers to the stream", func(t *testing.T) {
		srv := tu.NewSSEServer(tu.SSEResponse{Hold: true})
		defer srv.Close()

		l := NewLikeCounter(LikeCounterOpts{
			RecipeID: "r1",
			URL:      srv.URL,
			Headers:  map[string]string{"Authorization": "Bearer jwt-123"},
			Logger:   shared.NewLogger(io.Discard),
		})
		t.Cleanup(l.Stop)
		l.Start()

		if !srv.WaitForHit(1, 2*time.Second) {
			t.Fatal("server never received a request")
		}
		if got := srv.Requests()[0].Header.Get("Authorization"); got != "Bearer jwt-123" {
			t.Errorf("expected bearer header, got %q", got)
		}
	})

	t.Run("Discards non-numeric payloads", func(t *testing.T) {
		srv := tu.NewSSEServer(tu.SSEResponse{
			Chunks: []string{"event: count\ndata: 5\n\nevent: count\ndata: lots\n\nevent: count\ndata: 6\n\n"},
			Hold:   true,
		})
		defer srv.Close()

		l, _ := newTestCounter(t, srv.URL)
		l.Start()

		if u := waitUpdate(t, l); u.Count != 5 {
			t.Errorf("expected 5, got %d", u.Count)
		}
		if u := waitUpdate(t, l); u.Count != 6 {
			t.Errorf("expected 6 after the bad payload, got %d", u.Count)
		}
	})

	t.Run("Ignores other event types", func(t *testing.T) {
		srv := tu.NewSSEServer(tu.SSEResponse{
			Chunks: []string{"data: 99\n\nevent: count\ndata: 1\n\n"},
			Hold:   true,
		})
		defer srv.Close()

		l, _ := newTestCounter(t, srv.URL)
		l.Start()

		if u := waitUpdate(t, l); u.Count != 1 {
			t.Errorf("expected only the count event, got %d", u.Count)
		}
	})

	t.Run("Stop ends the subscription", func(t *testing.T) {
		srv := tu.NewSSEServer(tu.SSEResponse{Hold: true})
		defer srv.Close()

		l, sched := newTestCounter(t, srv.URL)
		l.Start()
		if !srv.WaitForHit(1, 2*time.Second) {
			t.Fatal("expected a stream request")
		}

		l.Stop()
		if l.State() != stream.StateClosed {
			t.Errorf("expected closed, got %s", l.State())
		}
		if timer := sched.Next(100 * time.Millisecond); timer != nil {
			t.Error("stopped counter should not reconnect")
		}
	})
}
