// package services defines interface RecipeService for the gourmet recipe API
package services

import (
	"context"

	"github.com/desertthunder/gourmet/internal/models"
)

// RecipeService defines the operations the client performs against the recipe API.
type RecipeService interface {
	// Login exchanges credentials for a bearer token and authenticates subsequent calls with it.
	Login(ctx context.Context, credentials models.Credentials) (*models.Session, error)

	// Authenticate installs a previously stored bearer token.
	Authenticate(ctx context.Context, token string) error

	// Me returns the authenticated user.
	Me(ctx context.Context) (*models.User, error)

	// Recipes lists every published recipe.
	Recipes(ctx context.Context) ([]models.Recipe, error)

	// Recipe retrieves a single recipe by ID.
	Recipe(ctx context.Context, id string) (*models.Recipe, error)

	// Favorites lists the authenticated user's favorite recipes.
	Favorites(ctx context.Context) ([]models.Recipe, error)

	// AddFavorite and RemoveFavorite toggle a recipe in username's favorites.
	AddFavorite(ctx context.Context, username, recipeID string) error
	RemoveFavorite(ctx context.Context, username, recipeID string) error

	// StarsURL returns the event stream URL publishing a recipe's like count.
	StarsURL(recipeID string) string

	// RecipeWebURL returns the recipe's page on the web app.
	RecipeWebURL(recipeID string) string
}
