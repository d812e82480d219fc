package tasks

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/gourmet/internal/models"
	"github.com/desertthunder/gourmet/internal/shared"
	"github.com/desertthunder/gourmet/internal/stream"
)

// LikeEventType is the event carrying a recipe's like total on its stars stream.
const LikeEventType = "count"

// LikeCounterOpts configures a [LikeCounter].
type LikeCounterOpts struct {
	RecipeID   string
	URL        string
	Headers    map[string]string // e.g. Authorization
	HTTPClient *http.Client
	Logger     *log.Logger
	Backoff    stream.Backoff
	Scheduler  stream.Scheduler
}

// LikeCounter follows the live like total of one recipe.
//
// Each "count" event replaces the total. Payloads that are not integers are logged and dropped.
type LikeCounter struct {
	recipeID string
	client   *stream.Client
	logger   *log.Logger
	updates  chan models.LikeCount

	mu    sync.RWMutex
	count int
	known bool
}

// NewLikeCounter subscribes to opts.URL without connecting. Call [LikeCounter.Start] to begin streaming.
func NewLikeCounter(opts LikeCounterOpts) *LikeCounter {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	l := &LikeCounter{
		recipeID: opts.RecipeID,
		logger:   shared.WithLogger(opts.Logger, "recipe", opts.RecipeID),
		updates:  make(chan models.LikeCount, 16),
	}

	l.client = stream.NewClient(stream.ClientOpts{
		URL:        opts.URL,
		Headers:    opts.Headers,
		HTTPClient: opts.HTTPClient,
		Logger:     l.logger,
		Backoff:    opts.Backoff,
		Scheduler:  opts.Scheduler,
	})
	l.client.AddEventListener(LikeEventType, l.handle)
	return l
}

// RecipeID returns the recipe being followed.
func (l *LikeCounter) RecipeID() string { return l.recipeID }

// Start opens the stream, or reopens it with a fresh retry budget.
func (l *LikeCounter) Start() {
	l.client.Connect()
}

// Stop closes the stream. The counter cannot be restarted afterwards.
func (l *LikeCounter) Stop() {
	l.client.Close()
}

// Count returns the latest total and whether one has been received.
func (l *LikeCounter) Count() (int, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.count, l.known
}

// Updates delivers every accepted total. Sends never block, so slow readers miss intermediate values.
// The channel is never closed.
func (l *LikeCounter) Updates() <-chan models.LikeCount {
	return l.updates
}

// State exposes the stream lifecycle, e.g. to show a reconnecting indicator.
func (l *LikeCounter) State() stream.State {
	return l.client.State()
}

func (l *LikeCounter) handle(ev stream.Event) {
	n, err := ParseLikeCount(ev.Data)
	if err != nil {
		l.logger.Warn("discarding like payload", "error", err)
		return
	}

	l.mu.Lock()
	l.count, l.known = n, true
	l.mu.Unlock()

	update := models.LikeCount{RecipeID: l.recipeID, Count: n, At: time.Now()}
	select {
	case l.updates <- update:
	default:
	}
}

// ParseLikeCount parses a count payload as a base-10 integer.
func ParseLikeCount(data string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(data))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", shared.ErrInvalidPayload, data)
	}
	return n, nil
}
