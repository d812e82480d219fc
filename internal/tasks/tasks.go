package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/gourmet/internal/models"
	"github.com/desertthunder/gourmet/internal/services"
	"github.com/desertthunder/gourmet/internal/shared"
)

// Engine runs recipe workflows against a [services.RecipeService] and an optional [models.RecipeCache].
type Engine struct {
	service services.RecipeService
	cache   models.RecipeCache
	logger  *log.Logger
}

// NewEngine creates a new Engine. cache may be nil.
func NewEngine(service services.RecipeService, cache models.RecipeCache, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{service: service, cache: cache, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Recipes lists recipes from the API and refreshes the cache with them.
//
// When offline is set, or the API fails and the cache holds recipes, the cached copy is returned instead.
// The second return value reports whether the result came from the cache.
func (e *Engine) Recipes(ctx context.Context, offline bool, progress chan<- ProgressUpdate) ([]models.Recipe, bool, error) {
	if offline {
		if e.cache == nil {
			return nil, false, fmt.Errorf("%w: no recipe cache configured", shared.ErrMissingConfig)
		}
		recipes, err := e.cache.List("")
		return recipes, true, err
	}

	e.sendProgress(progress, fetchingRecipesUpdate())
	recipes, err := e.service.Recipes(ctx)
	if err != nil {
		if cached, ok := e.fromCache(); ok {
			e.logger.Warn("serving cached recipes", "error", err, "count", len(cached))
			return cached, true, nil
		}
		return nil, false, err
	}

	if e.cache != nil && len(recipes) > 0 {
		e.sendProgress(progress, cachingRecipesUpdate(len(recipes)))
		if err := e.cache.Save(recipes); err != nil {
			e.logger.Warn("failed to cache recipes", "error", err)
		}
	}
	return recipes, false, nil
}

func (e *Engine) fromCache() ([]models.Recipe, bool) {
	if e.cache == nil {
		return nil, false
	}
	cached, err := e.cache.List("")
	if err != nil || len(cached) == 0 {
		return nil, false
	}
	return cached, true
}

// Recipe fetches one recipe, falling back to the cache when the API is unreachable.
func (e *Engine) Recipe(ctx context.Context, id string) (*models.Recipe, error) {
	recipe, err := e.service.Recipe(ctx, id)
	if err == nil {
		return recipe, nil
	}
	if errors.Is(err, shared.ErrRecipeNotFound) || e.cache == nil {
		return nil, err
	}

	if cached, cacheErr := e.cache.Get(id); cacheErr == nil {
		e.logger.Warn("serving cached recipe", "id", id, "error", err)
		return cached, nil
	}
	return nil, err
}

// SyncCache downloads every recipe into the cache and returns how many were stored.
func (e *Engine) SyncCache(ctx context.Context, progress chan<- ProgressUpdate) (int, error) {
	if e.cache == nil {
		return 0, fmt.Errorf("%w: no recipe cache configured", shared.ErrMissingConfig)
	}

	e.sendProgress(progress, fetchingRecipesUpdate())
	recipes, err := e.service.Recipes(ctx)
	if err != nil {
		return 0, err
	}

	e.sendProgress(progress, cachingRecipesUpdate(len(recipes)))
	if err := e.cache.Save(recipes); err != nil {
		return 0, err
	}
	return len(recipes), nil
}

// Favorites lists the authenticated user's favorites and returns them with a lookup set.
func (e *Engine) Favorites(ctx context.Context, progress chan<- ProgressUpdate) ([]models.Recipe, FavoriteSet, error) {
	e.sendProgress(progress, fetchingFavoritesUpdate())
	favorites, err := e.service.Favorites(ctx)
	if err != nil {
		return nil, nil, err
	}
	return favorites, NewFavoriteSet(favorites), nil
}

// ToggleFavorite adds or removes recipeID from username's favorites and updates set to match.
//
// Returns the new favorite state.
func (e *Engine) ToggleFavorite(ctx context.Context, set FavoriteSet, username, recipeID string) (bool, error) {
	if set.Has(recipeID) {
		if err := e.service.RemoveFavorite(ctx, username, recipeID); err != nil {
			return true, err
		}
		delete(set, recipeID)
		return false, nil
	}

	if err := e.service.AddFavorite(ctx, username, recipeID); err != nil {
		return false, err
	}
	set[recipeID] = struct{}{}
	return true, nil
}

// FavoriteSet holds favorite recipe IDs.
type FavoriteSet map[string]struct{}

// NewFavoriteSet indexes recipes by ID.
func NewFavoriteSet(recipes []models.Recipe) FavoriteSet {
	set := make(FavoriteSet, len(recipes))
	for _, r := range recipes {
		set[r.ID] = struct{}{}
	}
	return set
}

// Has reports whether id is a favorite. Safe on a nil set.
func (s FavoriteSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}
