package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/gourmet/internal/models"
	"github.com/desertthunder/gourmet/internal/repositories"
	"github.com/desertthunder/gourmet/internal/services"
	"github.com/desertthunder/gourmet/internal/shared"
	"github.com/desertthunder/gourmet/internal/stream"
	"github.com/desertthunder/gourmet/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config       *shared.Config
	service      services.RecipeService
	api          *services.APIService
	streamClient *http.Client
	logger       *log.Logger
	output       io.Writer
	openBrowser  func(string) error

	session models.Session

	dbOnce  sync.Once
	db      *sql.DB
	dbErr   error
	tokens  *repositories.TokenRepository
	recipes *repositories.RecipeRepository
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config       *shared.Config
	Service      services.RecipeService
	API          *services.APIService
	StreamClient *http.Client // used for event streams; must not time out
	Logger       *log.Logger
	Output       io.Writer
	DB           *sql.DB // opened from Config.Database on first use when nil
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.StreamClient == nil {
		opts.StreamClient = &http.Client{}
	}
	if opts.Service == nil {
		gourmet := services.NewGourmetServiceFromConfig(opts.Config.API)
		opts.Service = gourmet
		if opts.API == nil {
			opts.API = gourmet.API()
		}
	}
	if opts.API == nil {
		opts.API = services.NewAPIService(opts.Config.API.BaseURL, nil)
	}

	r := &Runner{
		config:       opts.Config,
		service:      opts.Service,
		api:          opts.API,
		streamClient: opts.StreamClient,
		logger:       opts.Logger,
		output:       opts.Output,
		openBrowser:  shared.OpenBrowser,
	}

	if opts.DB != nil {
		r.dbOnce.Do(func() { r.attach(opts.DB) })
	}
	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, recipesCommand, favoritesCommand, cacheCommand, apiCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger, e.g. to keep log lines out of the TUI.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Close releases the database, if one was opened.
func (r *Runner) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Runner) attach(db *sql.DB) {
	r.db = db
	r.tokens = repositories.NewTokenRepository(db)
	r.recipes = repositories.NewRecipeRepository(db)
}

// store opens the configured database and runs pending migrations, once.
func (r *Runner) store() error {
	r.dbOnce.Do(func() {
		r.logger.Debug("opening database", "path", r.config.Database.Path)
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			r.dbErr = err
			return
		}
		r.attach(db)
	})
	return r.dbErr
}

// engine returns a task engine backed by the recipe cache when the database is reachable.
func (r *Runner) engine() *tasks.Engine {
	if err := r.store(); err != nil {
		r.logger.Warn("recipe cache unavailable", "error", err)
		return tasks.NewEngine(r.service, nil, r.logger)
	}
	return tasks.NewEngine(r.service, r.recipes, r.logger)
}

// restoreSession loads the stored login and installs its token on the service.
//
// A missing session is not an error; callers check [models.Session.Authenticated].
func (r *Runner) restoreSession(ctx context.Context) (models.Session, error) {
	if err := r.store(); err != nil {
		return models.Session{}, err
	}

	r.session = models.Session{}
	session, err := r.tokens.LoadSession()
	if err != nil {
		return session, err
	}
	if !session.Authenticated() {
		return session, nil
	}

	if err := r.service.Authenticate(ctx, session.Token); err != nil {
		return session, err
	}
	r.session = session
	return session, nil
}

// requireSession is [Runner.restoreSession] for commands that cannot run anonymously.
func (r *Runner) requireSession(ctx context.Context) (models.Session, error) {
	session, err := r.restoreSession(ctx)
	if err != nil {
		return session, err
	}
	if !session.Authenticated() {
		return session, fmt.Errorf("%w: no stored session", shared.ErrNotAuthenticated)
	}
	return session, nil
}

// backoff converts the [stream] config section into a reconnection policy.
func (r *Runner) backoff() stream.Backoff {
	return stream.Backoff{
		MaxRetries: r.config.Stream.MaxRetries,
		Base:       r.config.Stream.BaseDelay(),
		Max:        r.config.Stream.MaxDelay(),
	}
}

// likeCounter builds an unstarted counter for recipeID's stars stream.
//
// The stream carries the restored session's bearer token, if any.
func (r *Runner) likeCounter(recipeID string) *tasks.LikeCounter {
	var headers map[string]string
	if r.session.Authenticated() {
		headers = map[string]string{"Authorization": "Bearer " + r.session.Token}
	}

	return tasks.NewLikeCounter(tasks.LikeCounterOpts{
		RecipeID:   recipeID,
		URL:        r.service.StarsURL(recipeID),
		Headers:    headers,
		HTTPClient: r.streamClient,
		Logger:     r.logger,
		Backoff:    r.backoff(),
	})
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
