package tasks

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/gourmet/internal/formatter"
	"github.com/desertthunder/gourmet/internal/models"
	"github.com/desertthunder/gourmet/internal/shared"
	"golang.org/x/time/rate"
)

// BulkExportOpts contains configuration for bulk recipe exports.
type BulkExportOpts struct {
	Format      formatter.Format // Export format
	OutputDir   string           // Base output directory (default: gourmet_export_{epoch})
	NumWorkers  int              // Concurrent workers (default: 4)
	RateLimit   float64          // Recipe fetches per second (default: 5)
	WithImages  bool             // Download images for markdown exports
	ImageClient *http.Client
}

// RecipeExportJob is a fetched recipe waiting to be written.
type RecipeExportJob struct {
	RecipeID string
	Recipe   *models.Recipe
}

// RecipeExportResult is the outcome of exporting one recipe.
type RecipeExportResult struct {
	RecipeID   string   `json:"recipe_id"`
	RecipeName string   `json:"recipe_name"`
	Success    bool     `json:"success"`
	Files      []string `json:"files,omitempty"`
	Error      error    `json:"-"`
	ErrorText  string   `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk export and doubles as its manifest.
type BulkExportResult struct {
	Format            formatter.Format     `json:"format"`
	TotalRecipes      int                  `json:"total_recipes"`
	SuccessfulExports int                  `json:"successful_exports"`
	FailedExports     int                  `json:"failed_exports"`
	OutputDirectory   string               `json:"output_directory"`
	ExportedAt        time.Time            `json:"exported_at"`
	Results           []RecipeExportResult `json:"results"`
	ManifestPath      string               `json:"-"`
}

// BulkExport fetches and exports recipes concurrently.
//
// A producer fetches each recipe through a rate limiter and hands it to a pool of workers that write the files.
// Failures are recorded per recipe; a manifest summarizing every result is written to the output directory.
func (e *Engine) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, ids []string, opts BulkExportOpts) (*BulkExportResult, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}

	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("gourmet_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		Format:          opts.Format,
		TotalRecipes:    len(ids),
		OutputDirectory: opts.OutputDir,
		ExportedAt:      time.Now().UTC(),
		Results:         make([]RecipeExportResult, 0, len(ids)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan RecipeExportJob, len(ids))
	results := make(chan RecipeExportResult, len(ids))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, id := range ids {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			e.sendProgress(prog, fetchingRecipeUpdate(i+1, len(ids), id))
			recipe, err := e.Recipe(ctx, id)
			if err != nil {
				results <- RecipeExportResult{
					RecipeID:   id,
					RecipeName: fmt.Sprintf("Unknown (%s)", id),
					Error:      fmt.Errorf("failed to fetch recipe: %w", err),
				}
				continue
			}

			jobs <- RecipeExportJob{RecipeID: id, Recipe: recipe}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		if res.Error != nil {
			res.ErrorText = res.Error.Error()
		}
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.RecipeName, len(res.Files)))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(ids), res.RecipeName, res.Error))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("export interrupted: %w", err)
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	e.sendProgress(prog, writingManifestUpdate(manifestPath))
	if err := formatter.WriteManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker is a worker goroutine that writes recipes from the jobs channel.
func (e *Engine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan RecipeExportJob,
	results chan<- RecipeExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			return
		}
		results <- e.exportSingleRecipe(ctx, job, opts)
	}
}

// exportSingleRecipe writes one recipe in the requested format.
func (e *Engine) exportSingleRecipe(ctx context.Context, j RecipeExportJob, opts BulkExportOpts) RecipeExportResult {
	result := RecipeExportResult{
		RecipeID:   j.RecipeID,
		RecipeName: j.Recipe.Name,
		Files:      []string{},
	}

	var image []byte
	if opts.WithImages && opts.Format == formatter.FormatMarkdown && j.Recipe.ImageURL != "" {
		data, err := formatter.DownloadImage(ctx, opts.ImageClient, j.Recipe.ImageURL)
		if err != nil {
			e.logger.Warn("failed to download recipe image", "recipe", j.RecipeID, "error", err)
		} else {
			image = data
		}
	}

	files, err := formatter.WriteRecipeExport(*j.Recipe, opts.Format, opts.OutputDir, image)
	if err != nil {
		result.Error = fmt.Errorf("%s export failed: %w", opts.Format, err)
		return result
	}

	result.Files = files
	result.Success = true
	return result
}
