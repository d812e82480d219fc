// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI has two views:
//  1. [RecipeListView] : Browse recipes, filter by when_to_eat with the number keys (pressing the selected
//     category again clears it) and spot the featured recipe (★) and favorites (♥)
//  2. [RecipeDetailView] : Read a recipe while its like total updates live from the stars stream
//
// Opening a recipe starts a [tasks.LikeCounter]; leaving the view stops it. The counter's stream state is
// polled to show a reconnecting or offline indicator, and r reconnects a dormant stream with a fresh retry budget.
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
