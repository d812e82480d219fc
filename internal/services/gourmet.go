// gourmet API [RecipeService] implementation
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/gourmet/internal/models"
	"github.com/desertthunder/gourmet/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const defaultWebURL string = "https://lambda.cours.quimerch.com"

// GourmetOpts configures a [GourmetService].
type GourmetOpts struct {
	BaseURL           string
	WebURL            string
	HTTPClient        *http.Client
	RequestsPerSecond float64 // zero disables throttling
	Burst             int
	Timeout           time.Duration
}

// GourmetService implements [RecipeService] over the gourmet REST API.
//
// Authenticated calls go through an [oauth2] transport that injects the stored bearer token.
type GourmetService struct {
	api    *APIService
	base   *http.Client
	webURL string
	token  string
}

// NewGourmetService creates a gourmet API client from opts.
func NewGourmetService(opts GourmetOpts) *GourmetService {
	base := opts.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: opts.Timeout}
	}

	webURL := opts.WebURL
	if webURL == "" {
		webURL = defaultWebURL
	}

	api := NewAPIService(opts.BaseURL, base)
	if opts.RequestsPerSecond > 0 {
		burst := max(opts.Burst, 1)
		api.WithLimiter(rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst))
	}

	return &GourmetService{
		api:    api,
		base:   base,
		webURL: strings.TrimRight(webURL, "/"),
	}
}

// NewGourmetServiceFromConfig builds the client described by the [api] config section.
func NewGourmetServiceFromConfig(cfg shared.APIConfig) *GourmetService {
	return NewGourmetService(GourmetOpts{
		BaseURL:           cfg.BaseURL,
		WebURL:            cfg.WebURL,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
		Timeout:           cfg.Timeout(),
	})
}

// API exposes the raw request layer.
func (s *GourmetService) API() *APIService {
	return s.api
}

// StreamHTTPClient returns a client for long-lived event streams: same transport, no overall timeout.
func (s *GourmetService) StreamHTTPClient() *http.Client {
	return &http.Client{Transport: s.base.Transport}
}

// Authenticated reports whether a bearer token is installed.
func (s *GourmetService) Authenticated() bool {
	return s.token != ""
}

// Authenticate installs token as the bearer credential for every subsequent request.
func (s *GourmetService) Authenticate(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: empty token", shared.ErrNotAuthenticated)
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	client := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, s.base), src)
	client.Timeout = s.base.Timeout

	s.api.SetClient(client)
	s.token = token
	return nil
}

// Login calls POST /login and authenticates the service with the returned token.
func (s *GourmetService) Login(ctx context.Context, credentials models.Credentials) (*models.Session, error) {
	if err := credentials.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	body, err := json.Marshal(credentials)
	if err != nil {
		return nil, fmt.Errorf("failed to encode credentials: %w", err)
	}

	resp, err := s.api.Post(ctx, "/login", body)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			return nil, fmt.Errorf("%w: %w", shared.ErrInvalidCredentials, err)
		}
		return nil, fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}

	var login models.LoginResponse
	if err := resp.Decode(&login); err != nil {
		return nil, err
	}
	if login.Token == "" {
		return nil, fmt.Errorf("%w: response carried no token", shared.ErrAuthFailed)
	}

	if err := s.Authenticate(ctx, login.Token); err != nil {
		return nil, err
	}
	return &models.Session{Token: login.Token, Username: credentials.Username}, nil
}

// Me calls GET /me.
func (s *GourmetService) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := s.doRequest(ctx, http.MethodGet, "/me", true, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Recipes calls GET /recipes.
func (s *GourmetService) Recipes(ctx context.Context) ([]models.Recipe, error) {
	recipes := []models.Recipe{}
	if err := s.doRequest(ctx, http.MethodGet, "/recipes", false, &recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// Recipe calls GET /recipes/{id}.
func (s *GourmetService) Recipe(ctx context.Context, id string) (*models.Recipe, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: recipe id", shared.ErrMissingArgument)
	}

	var recipe models.Recipe
	err := s.doRequest(ctx, http.MethodGet, "/recipes/"+url.PathEscape(id), false, &recipe)
	if statusOf(err) == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", shared.ErrRecipeNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &recipe, nil
}

// Favorites calls GET /favorites and unwraps the {recipe} entries.
func (s *GourmetService) Favorites(ctx context.Context) ([]models.Recipe, error) {
	var favorites []models.Favorite
	if err := s.doRequest(ctx, http.MethodGet, "/favorites", true, &favorites); err != nil {
		return nil, err
	}

	recipes := make([]models.Recipe, 0, len(favorites))
	for _, f := range favorites {
		recipes = append(recipes, f.Recipe)
	}
	return recipes, nil
}

// AddFavorite calls POST /users/{username}/favorites?recipeID={id}.
func (s *GourmetService) AddFavorite(ctx context.Context, username, recipeID string) error {
	return s.toggleFavorite(ctx, http.MethodPost, username, recipeID)
}

// RemoveFavorite calls DELETE /users/{username}/favorites?recipeID={id}.
func (s *GourmetService) RemoveFavorite(ctx context.Context, username, recipeID string) error {
	return s.toggleFavorite(ctx, http.MethodDelete, username, recipeID)
}

func (s *GourmetService) toggleFavorite(ctx context.Context, method, username, recipeID string) error {
	if username == "" {
		return fmt.Errorf("%w: username", shared.ErrMissingArgument)
	}
	if recipeID == "" {
		return fmt.Errorf("%w: recipe id", shared.ErrMissingArgument)
	}

	endpoint := fmt.Sprintf("/users/%s/favorites?recipeID=%s", url.PathEscape(username), url.QueryEscape(recipeID))
	return s.doRequest(ctx, method, endpoint, true, nil)
}

// StarsURL returns the /recipes/{id}/stars event stream URL.
func (s *GourmetService) StarsURL(recipeID string) string {
	return fmt.Sprintf("%s/recipes/%s/stars", s.api.BaseURL(), url.PathEscape(recipeID))
}

// RecipeWebURL returns the recipe page on the web app.
func (s *GourmetService) RecipeWebURL(recipeID string) string {
	return fmt.Sprintf("%s/recettes/%s", s.webURL, url.PathEscape(recipeID))
}

// doRequest performs a request and decodes a 2xx JSON body into result when it is non-nil.
func (s *GourmetService) doRequest(ctx context.Context, method, endpoint string, auth bool, result any) error {
	if auth && s.token == "" {
		return fmt.Errorf("%w: log in first", shared.ErrNotAuthenticated)
	}

	resp, err := s.api.Do(ctx, method, endpoint, nil)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}

	if result != nil && len(resp.Body) > 0 {
		return resp.Decode(result)
	}
	return nil
}

func statusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

var _ RecipeService = (*GourmetService)(nil)
