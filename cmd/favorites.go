package main

import (
	"context"

	"github.com/desertthunder/gourmet/internal/formatter"
	"github.com/urfave/cli/v3"
)

// FavoritesList prints the logged in user's favorite recipes.
func (r *Runner) FavoritesList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	if _, err := r.requireSession(ctx); err != nil {
		return err
	}

	favorites, _, err := r.engine().Favorites(ctx, nil)
	if err != nil {
		return err
	}
	return r.writeRecipes(favorites, format)
}

// FavoritesAdd adds a recipe to the logged in user's favorites.
func (r *Runner) FavoritesAdd(ctx context.Context, cmd *cli.Command) error {
	return r.setFavorite(ctx, cmd, true)
}

// FavoritesRemove removes a recipe from the logged in user's favorites.
func (r *Runner) FavoritesRemove(ctx context.Context, cmd *cli.Command) error {
	return r.setFavorite(ctx, cmd, false)
}

func (r *Runner) setFavorite(ctx context.Context, cmd *cli.Command, on bool) error {
	id, err := recipeID(cmd)
	if err != nil {
		return err
	}

	session, err := r.requireSession(ctx)
	if err != nil {
		return err
	}

	if on {
		if err := r.service.AddFavorite(ctx, session.Username, id); err != nil {
			return err
		}
		r.logger.Info("favorite added", "recipe", id, "username", session.Username)
		return r.writePlain("✓ Added %s to favorites\n", id)
	}

	if err := r.service.RemoveFavorite(ctx, session.Username, id); err != nil {
		return err
	}
	r.logger.Info("favorite removed", "recipe", id, "username", session.Username)
	return r.writePlain("✓ Removed %s from favorites\n", id)
}
