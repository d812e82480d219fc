// package models defines the data model for the gourmet recipe client
package models

import (
	"fmt"
	"strings"
	"time"
)

// Session storage keys, shared with the web app's local storage.
const (
	TokenKey    = "jwt_token"
	UsernameKey = "username"
)

// Recipe is a recipe as served by the gourmet API.
type Recipe struct {
	ID           string    `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	Description  string    `json:"description" yaml:"description"`
	ImageURL     string    `json:"image_url" yaml:"image_url"`
	PrepTime     int       `json:"prep_time" yaml:"prep_time"`
	CookTime     int       `json:"cook_time" yaml:"cook_time"`
	TotalTime    int       `json:"total_time" yaml:"total_time"`
	WhenToEat    string    `json:"when_to_eat" yaml:"when_to_eat"`
	Category     string    `json:"category" yaml:"category"`
	Ingredients  []string  `json:"ingredients" yaml:"ingredients"`
	Instructions string    `json:"instructions" yaml:"instructions"`
	Calories     int       `json:"calories" yaml:"calories"`
	Servings     int       `json:"servings" yaml:"servings"`
	Cost         float64   `json:"cost" yaml:"cost"`
	Difficulty   string    `json:"difficulty" yaml:"difficulty"`
	CreatedBy    string    `json:"created_by" yaml:"created_by"`
	CreatedAt    Timestamp `json:"created_at" yaml:"created_at"`
	IsFeatured   bool      `json:"is_featured" yaml:"is_featured"`
	Published    bool      `json:"published" yaml:"published"`
	Disclaimer   string    `json:"disclaimer" yaml:"disclaimer"`
}

// Duration returns the total time in minutes, falling back to prep plus cook time when the API omits it.
func (r Recipe) Duration() int {
	if r.TotalTime > 0 {
		return r.TotalTime
	}
	return r.PrepTime + r.CookTime
}

// Validate checks the fields every other component relies on.
func (r Recipe) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("recipe id is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("recipe %s: name is required", r.ID)
	}
	return nil
}

// Favorite wraps a recipe in the shape returned by GET /favorites.
type Favorite struct {
	Recipe Recipe `json:"recipe"`
}

// User is the authenticated account as returned by GET /me.
type User struct {
	Username string `json:"username"`
}

// Credentials is the POST /login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate reports missing credential fields.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Username) == "" {
		return fmt.Errorf("username is required")
	}
	if c.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// LoginResponse is the POST /login response body.
type LoginResponse struct {
	Token string `json:"token"`
}

// Session is the locally persisted login.
type Session struct {
	Token    string
	Username string
}

// Authenticated reports whether the session carries a token.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// LikeCount is a like total observed on a recipe's stars stream.
type LikeCount struct {
	RecipeID string
	Count    int
	At       time.Time
}

// Timestamp decodes the API's created_at values, which are RFC 3339 strings that may be empty.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

// UnmarshalJSON accepts null, "" and the layouts the API has been seen to emit.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

// MarshalJSON writes the zero time as an empty string.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + t.Format(time.RFC3339) + `"`), nil
}

// MarshalYAML writes RFC 3339 text.
func (t Timestamp) MarshalYAML() (any, error) {
	if t.IsZero() {
		return "", nil
	}
	return t.Format(time.RFC3339), nil
}

// TokenStore persists session values by key.
type TokenStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// RecipeCache stores fetched recipes for offline listing.
type RecipeCache interface {
	Save(recipes []Recipe) error
	List(whenToEat string) ([]Recipe, error)
	Get(id string) (*Recipe, error)
	Clear() (int, error)
}
