package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchRecipes Phase = iota
	FetchRecipe
	FetchFavorites
	CacheRecipes
	ExportRecipe
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case FetchRecipes:
		return "fetch_recipes"
	case FetchRecipe:
		return "fetch_recipe"
	case FetchFavorites:
		return "fetch_favorites"
	case CacheRecipes:
		return "cache_recipes"
	case ExportRecipe:
		return "export_recipe"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func fetchingRecipesUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: FetchRecipes, Step: 1, Total: 1, Message: "Fetching recipes..."}
}

func fetchingFavoritesUpdate() ProgressUpdate {
	return ProgressUpdate{Phase: FetchFavorites, Step: 1, Total: 1, Message: "Fetching favorites..."}
}

func cachingRecipesUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CacheRecipes,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Caching %d recipes...", count),
		Data:    count,
	}
}

func fetchingRecipeUpdate(step, total int, id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchRecipe,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching recipe %s...", id),
	}
}

func exportCompletedUpdate(step, total int, name string, files int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportRecipe,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Exported %s (%d files)", name, files),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportRecipe,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Failed to export %s: %v", name, err),
		Data:    err,
	}
}

func writingManifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{Phase: WriteManifest, Step: 1, Total: 1, Message: fmt.Sprintf("Writing manifest %s", path)}
}
