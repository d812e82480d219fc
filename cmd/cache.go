package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/gourmet/internal/tasks"
	"github.com/urfave/cli/v3"
)

// CacheRecipes downloads every recipe into the local cache for offline listing.
func (r *Runner) CacheRecipes(ctx context.Context, cmd *cli.Command) error {
	if err := r.store(); err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 4)
	n, err := r.engine().SyncCache(ctx, progress)
	close(progress)
	for u := range progress {
		r.logger.Debug(u.Message, "phase", u.Phase)
	}
	if err != nil {
		return fmt.Errorf("failed to cache recipes: %w", err)
	}

	r.logger.Infof("cached %d recipes in %v", n, r.config.Database.Path)
	return r.writePlain("✓ Cached %d recipes\n", n)
}

// CacheClear empties the recipe cache.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.store(); err != nil {
		return err
	}

	n, err := r.recipes.Clear()
	if err != nil {
		return err
	}
	return r.writePlain("✓ Removed %d cached recipes\n", n)
}
