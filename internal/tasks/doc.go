// Package tasks holds the recipe workflows shared by the CLI and the TUI.
//
// # Engine
//
// [Engine] combines a [services.RecipeService] with an optional [models.RecipeCache]:
//   - [Engine.Recipes] lists recipes, refreshing the cache and falling back to it when the API is down
//   - [Engine.SyncCache] downloads the catalog for offline use
//   - [Engine.Favorites] and [Engine.ToggleFavorite] manage the user's favorites through a [FavoriteSet]
//   - [Engine.BulkExport] fetches recipes through a rate limiter and writes them with a worker pool
//
// # Catalog
//
// [Categories], [FilterByCategory] and [CategoryFilter] group recipes by when_to_eat. Selecting the current
// category again clears the filter. [Featured] picks the highlighted recipe.
//
// # Likes
//
// [LikeCounter] follows a recipe's stars stream with a [stream.Client] and keeps the latest "count" total.
//
// # Progress Reporting
//
// Long operations send [ProgressUpdate] values with select/default, so a slow or absent reader never blocks them.
package tasks
