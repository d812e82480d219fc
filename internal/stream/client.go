package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/gourmet/internal/shared"
)

const defaultReadSize = 4096

// State is the lifecycle phase of a [Client].
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateOpen
	StateWaiting
	StateDormant
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateWaiting:
		return "waiting"
	case StateDormant:
		return "dormant"
	case StateClosed:
		return "closed"
	default:
		return ""
	}
}

// ClientOpts contains configuration options for creating a [Client].
type ClientOpts struct {
	URL        string
	Headers    map[string]string
	HTTPClient *http.Client
	Logger     *log.Logger
	Backoff    Backoff
	Scheduler  Scheduler
	ReadSize   int
}

// Client owns one subscription to a server-sent event stream.
//
// The zero value is not usable; create clients with [NewClient].
type Client struct {
	id        string
	url       string
	headers   map[string]string
	http      *http.Client
	logger    *log.Logger
	backoff   Backoff
	scheduler Scheduler
	registry  *Registry
	readSize  int

	mu       sync.Mutex
	closed   bool
	attempts int
	state    State
	gen      uint64
	cancel   context.CancelFunc
	timer    Timer
}

// NewClient creates a [Client] bound to opts.URL. Nothing is requested until [Client.Connect].
func NewClient(opts ClientOpts) *Client {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Scheduler == nil {
		opts.Scheduler = RealScheduler
	}
	if opts.ReadSize <= 0 {
		opts.ReadSize = defaultReadSize
	}

	headers := make(map[string]string, len(opts.Headers))
	for k, v := range opts.Headers {
		headers[k] = v
	}

	id := shared.GenerateID()
	return &Client{
		id:        id,
		url:       opts.URL,
		headers:   headers,
		http:      opts.HTTPClient,
		logger:    shared.WithLogger(opts.Logger, "subscription", id[:8], "url", opts.URL),
		backoff:   opts.Backoff.withDefaults(),
		scheduler: opts.Scheduler,
		registry:  NewRegistry(),
		readSize:  opts.ReadSize,
	}
}

// ID returns the subscription identifier used in log entries.
func (c *Client) ID() string { return c.id }

// URL returns the stream endpoint.
func (c *Client) URL() string { return c.url }

// AddEventListener registers h for every later event of eventType.
func (c *Client) AddEventListener(eventType string, h Handler) {
	c.registry.Add(eventType, h)
}

// Connect (re)establishes the stream and restarts the attempt counter.
//
// It returns immediately; reading happens on a separate goroutine. Calling Connect after [Client.Close] does nothing.
func (c *Client) Connect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.attempts = 0
	c.stopTimerLocked()
	c.dialLocked()
}

// Close cancels the in-flight request and any pending reconnect. No handler runs and no reconnect starts afterwards.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	c.state = StateClosed
	c.stopTimerLocked()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.logger.Debug("subscription closed")
}

// Attempts returns the number of reconnection attempts made since the stream last opened.
func (c *Client) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

// State returns the current lifecycle phase.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Closed reports whether [Client.Close] has been called.
func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Client) dialLocked() {
	if c.cancel != nil {
		c.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.gen++
	c.state = StateConnecting

	go c.run(ctx, c.gen)
}

func (c *Client) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// current reports whether the connection identified by gen may still produce side effects.
func (c *Client) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && gen == c.gen
}

// opened marks the stream as open and resets the attempt counter.
func (c *Client) opened(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.gen {
		return false
	}
	c.attempts = 0
	c.state = StateOpen
	return true
}

func (c *Client) run(ctx context.Context, gen uint64) {
	err := c.consume(ctx, gen)
	if !c.current(gen) {
		return
	}

	// A graceful end of stream reconnects exactly like a failure.
	if err == nil {
		c.logger.Info("stream complete")
	} else {
		c.logger.Error("stream failed", "error", err)
	}
	c.scheduleReconnect(gen)
}

func (c *Client) consume(ctx context.Context, gen uint64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", shared.ErrStreamTransport, err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrStreamTransport, err)
	}
	if resp.Body == nil {
		return fmt.Errorf("%w: response has no body", shared.ErrStreamTransport)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrStreamTransport, resp.StatusCode)
	}

	if !c.opened(gen) {
		return context.Canceled
	}
	c.logger.Debug("stream open")

	framer := NewFramer()
	defer func() {
		if dropped := framer.Reset(); strings.TrimSpace(dropped) != "" {
			c.logger.Debug("discarding incomplete frame", "bytes", len(dropped))
		}
	}()

	buf := make([]byte, c.readSize)
	for {
		n, readErr := resp.Body.Read(buf)
		if !c.current(gen) {
			return context.Canceled
		}

		if n > 0 {
			events, decodeErr := framer.Feed(buf[:n])
			if decodeErr != nil {
				c.logger.Warn("failed to decode chunk", "error", decodeErr)
			}
			for _, ev := range events {
				if !c.dispatch(ev, gen) {
					return context.Canceled
				}
			}
		}

		if errors.Is(readErr, io.EOF) {
			return nil
		}
		if readErr != nil {
			return fmt.Errorf("%w: read failed: %w", shared.ErrStreamTransport, readErr)
		}
	}
}

// dispatch invokes the handlers for ev in registration order. Returns false once the connection is no longer current.
func (c *Client) dispatch(ev Event, gen uint64) bool {
	for _, h := range c.registry.Handlers(ev.Type) {
		if !c.current(gen) {
			return false
		}
		c.invoke(h, ev)
	}
	return c.current(gen)
}

func (c *Client) invoke(h Handler, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("event handler panicked", "event", ev.Type, "panic", r)
		}
	}()
	h(ev)
}

func (c *Client) scheduleReconnect(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || gen != c.gen {
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	if c.attempts >= c.backoff.MaxRetries {
		c.state = StateDormant
		c.logger.Error("giving up on stream", "error", shared.ErrRetriesExhausted, "attempts", c.attempts)
		return
	}

	delay := c.backoff.Delay(c.attempts)
	c.attempts++
	c.state = StateWaiting
	c.logger.Info("scheduling reconnect", "attempt", c.attempts, "max", c.backoff.MaxRetries, "delay", delay)

	c.timer = c.scheduler.AfterFunc(delay, func() { c.reconnect(gen) })
}

func (c *Client) reconnect(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || gen != c.gen {
		return
	}
	c.timer = nil
	c.dialLocked()
}
