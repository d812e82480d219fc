package testing

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/gourmet/internal/models"
)

// MockRecipeService is an in-memory test double for services.RecipeService.
type MockRecipeService struct {
	mu sync.Mutex

	RecipeList []models.Recipe
	Favs       map[string]bool
	Token      string
	Username   string
	Err        error
	BaseURL    string
	Calls      []string
}

// NewMockRecipeService returns a service serving recipes.
func NewMockRecipeService(recipes ...models.Recipe) *MockRecipeService {
	return &MockRecipeService{RecipeList: recipes, Favs: map[string]bool{}, BaseURL: "http://gourmet.test"}
}

func (m *MockRecipeService) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
}

func (m *MockRecipeService) Login(ctx context.Context, c models.Credentials) (*models.Session, error) {
	m.record("Login")
	if m.Err != nil {
		return nil, m.Err
	}
	m.Token, m.Username = "token-"+c.Username, c.Username
	return &models.Session{Token: m.Token, Username: c.Username}, nil
}

func (m *MockRecipeService) Authenticate(ctx context.Context, token string) error {
	m.record("Authenticate")
	m.Token = token
	return m.Err
}

func (m *MockRecipeService) Me(ctx context.Context) (*models.User, error) {
	m.record("Me")
	if m.Err != nil {
		return nil, m.Err
	}
	return &models.User{Username: m.Username}, nil
}

func (m *MockRecipeService) Recipes(ctx context.Context) ([]models.Recipe, error) {
	m.record("Recipes")
	if m.Err != nil {
		return nil, m.Err
	}
	return m.RecipeList, nil
}

func (m *MockRecipeService) Recipe(ctx context.Context, id string) (*models.Recipe, error) {
	m.record("Recipe")
	if m.Err != nil {
		return nil, m.Err
	}
	for _, r := range m.RecipeList {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, fmt.Errorf("recipe %s not found", id)
}

func (m *MockRecipeService) Favorites(ctx context.Context) ([]models.Recipe, error) {
	m.record("Favorites")
	if m.Err != nil {
		return nil, m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var favorites []models.Recipe
	for _, r := range m.RecipeList {
		if m.Favs[r.ID] {
			favorites = append(favorites, r)
		}
	}
	return favorites, nil
}

func (m *MockRecipeService) AddFavorite(ctx context.Context, username, recipeID string) error {
	m.record("AddFavorite")
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	m.Favs[recipeID] = true
	m.mu.Unlock()
	return nil
}

func (m *MockRecipeService) RemoveFavorite(ctx context.Context, username, recipeID string) error {
	m.record("RemoveFavorite")
	if m.Err != nil {
		return m.Err
	}
	m.mu.Lock()
	delete(m.Favs, recipeID)
	m.mu.Unlock()
	return nil
}

func (m *MockRecipeService) StarsURL(recipeID string) string {
	return fmt.Sprintf("%s/recipes/%s/stars", m.BaseURL, recipeID)
}

func (m *MockRecipeService) RecipeWebURL(recipeID string) string {
	return fmt.Sprintf("%s/recettes/%s", m.BaseURL, recipeID)
}

// CallCount returns how many times method was called.
func (m *MockRecipeService) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c == method {
			n++
		}
	}
	return n
}
