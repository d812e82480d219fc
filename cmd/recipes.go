package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/desertthunder/gourmet/internal/formatter"
	"github.com/desertthunder/gourmet/internal/models"
	"github.com/desertthunder/gourmet/internal/shared"
	"github.com/desertthunder/gourmet/internal/stream"
	"github.com/desertthunder/gourmet/internal/tasks"
	"github.com/urfave/cli/v3"
)

const likeStatePoll = 250 * time.Millisecond

// RecipesList lists recipes, optionally filtered by category or read from the cache.
func (r *Runner) RecipesList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	recipes, cached, err := r.engine().Recipes(ctx, cmd.Bool("offline"), nil)
	if err != nil {
		return fmt.Errorf("failed to list recipes: %w", err)
	}
	if cached {
		r.logger.Warn("showing cached recipes", "count", len(recipes))
	}

	recipes = tasks.FilterByCategory(recipes, cmd.String("category"))
	return r.writeRecipes(recipes, format)
}

// RecipesShow prints one recipe.
func (r *Runner) RecipesShow(ctx context.Context, cmd *cli.Command) error {
	id, err := recipeID(cmd)
	if err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	recipe, err := r.engine().Recipe(ctx, id)
	if err != nil {
		return err
	}
	return r.writeRecipe(*recipe, format)
}

// RecipesCategories prints every when_to_eat category with its recipe count.
func (r *Runner) RecipesCategories(ctx context.Context, cmd *cli.Command) error {
	recipes, _, err := r.engine().Recipes(ctx, false, nil)
	if err != nil {
		return fmt.Errorf("failed to list recipes: %w", err)
	}

	for _, c := range tasks.Categories(recipes) {
		r.writePlain("%-16s %d\n", c, len(tasks.FilterByCategory(recipes, c)))
	}
	return nil
}

// RecipesFeatured prints the featured recipe.
func (r *Runner) RecipesFeatured(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	recipes, _, err := r.engine().Recipes(ctx, false, nil)
	if err != nil {
		return fmt.Errorf("failed to list recipes: %w", err)
	}

	featured, ok := tasks.Featured(recipes)
	if !ok {
		return fmt.Errorf("%w: no recipes available", shared.ErrRecipeNotFound)
	}
	return r.writeRecipe(*featured, format)
}

// RecipesLikes follows a recipe's stars stream and prints every like count.
//
// Returns when interrupted, after --count updates, after --timeout, or with
// [shared.ErrRetriesExhausted] once the stream stops reconnecting.
func (r *Runner) RecipesLikes(ctx context.Context, cmd *cli.Command) error {
	id, err := recipeID(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	if timeout := cmd.Duration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if _, err := r.restoreSession(ctx); err != nil {
		r.logger.Warn("following likes without session", "error", err)
	}

	counter := r.likeCounter(id)
	counter.Start()
	defer counter.Stop()

	r.logger.Info("following likes", "recipe", id, "url", r.service.StarsURL(id))

	limit := cmd.Int("count")
	ticker := time.NewTicker(likeStatePoll)
	defer ticker.Stop()

	for seen := 0; limit <= 0 || seen < limit; {
		select {
		case <-ctx.Done():
			return nil
		case u := <-counter.Updates():
			seen++
			r.writePlain("%s  ♥ %d\n", u.At.Format(time.TimeOnly), u.Count)
		case <-ticker.C:
			if counter.State() == stream.StateDormant {
				return fmt.Errorf("%w: recipe %s", shared.ErrRetriesExhausted, id)
			}
		}
	}
	return nil
}

// RecipesOpen opens the recipe's page on the web app.
func (r *Runner) RecipesOpen(ctx context.Context, cmd *cli.Command) error {
	id, err := recipeID(cmd)
	if err != nil {
		return err
	}

	url := r.service.RecipeWebURL(id)
	r.writePlain("%s\n", url)
	if err := r.openBrowser(url); err != nil {
		r.logger.Warn("could not open browser", "error", err)
	}
	return nil
}

// RecipesExport writes the given recipes, or all of them with --all, to an output directory.
func (r *Runner) RecipesExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	engine := r.engine()
	ids := cmd.Args().Slice()
	if cmd.Bool("all") {
		if len(ids) > 0 {
			return fmt.Errorf("%w: pass recipe ids or --all, not both", shared.ErrInvalidArgument)
		}

		recipes, _, err := engine.Recipes(ctx, false, nil)
		if err != nil {
			return fmt.Errorf("failed to list recipes: %w", err)
		}
		ids = make([]string, 0, len(recipes))
		for _, recipe := range recipes {
			ids = append(ids, recipe.ID)
		}
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: pass recipe ids or --all", shared.ErrMissingArgument)
	}

	progress := make(chan tasks.ProgressUpdate, 32)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case u := <-progress:
				r.logger.Info(u.Message, "phase", u.Phase, "step", u.Step, "total", u.Total)
			case <-done:
				return
			}
		}
	}()

	result, err := engine.BulkExport(ctx, progress, ids, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
		WithImages: cmd.Bool("images"),
	})
	close(done)
	if err != nil {
		return err
	}

	r.writePlainHeader("Export Complete")
	r.writePlain("Directory: %s\n", result.OutputDirectory)
	r.writePlain("Exported:  %d/%d\n", result.SuccessfulExports, result.TotalRecipes)
	for _, res := range result.Results {
		if !res.Success {
			r.writePlain("  ✗ %s: %s\n", res.RecipeName, res.ErrorText)
		}
	}
	return r.writePlain("Manifest:  %s\n", result.ManifestPath)
}

func recipeID(cmd *cli.Command) (string, error) {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return "", fmt.Errorf("%w: recipe id", shared.ErrMissingArgument)
	}
	return id, nil
}

// writeRecipes prints a table for text output and the formatter's document otherwise.
func (r *Runner) writeRecipes(recipes []models.Recipe, format formatter.Format) error {
	if format != formatter.FormatText {
		data, err := formatter.ExportRecipes(recipes, format)
		if err != nil {
			return err
		}
		return r.writePlain("%s\n", data)
	}

	r.writePlainHeader(fmt.Sprintf("Recipes (%d)", len(recipes)))
	for _, recipe := range recipes {
		name := recipe.Name
		if recipe.IsFeatured {
			name += " ★"
		}
		r.writePlain("%-10s %-32s %-12s %s\n", recipe.ID, name, recipe.WhenToEat, shared.FormatMinutes(recipe.Duration()))
	}
	return nil
}

func (r *Runner) writeRecipe(recipe models.Recipe, format formatter.Format) error {
	var data []byte
	var err error

	switch format {
	case formatter.FormatText:
		data, err = formatter.ExportToText(recipe)
	case formatter.FormatMarkdown:
		data, err = formatter.ExportToMarkdown(recipe, "")
	case formatter.FormatCSV:
		data, err = formatter.ExportToCSV([]models.Recipe{recipe})
	case formatter.FormatYAML:
		data, err = formatter.ExportToYAML(recipe)
	default:
		data, err = formatter.ExportToJSON(recipe)
	}
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", data)
}
