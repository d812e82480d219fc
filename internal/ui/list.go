package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/gourmet/internal/models"
	"github.com/desertthunder/gourmet/internal/shared"
)

var (
	_ list.Item = recipeItem{}
)

// recipeItem wraps [models.Recipe] to implement [list.Item].
type recipeItem struct {
	recipe   models.Recipe
	favorite bool
	featured bool
}

func (i recipeItem) FilterValue() string { return i.recipe.Name }

func (i recipeItem) Title() string {
	title := i.recipe.Name
	if i.favorite {
		title = "♥ " + title
	}
	if i.featured {
		title += " ★"
	}
	return title
}

func (i recipeItem) Description() string {
	parts := []string{}
	if i.recipe.WhenToEat != "" {
		parts = append(parts, i.recipe.WhenToEat)
	}
	if d := i.recipe.Duration(); d > 0 {
		parts = append(parts, shared.FormatMinutes(d))
	}
	if i.recipe.Difficulty != "" {
		parts = append(parts, i.recipe.Difficulty)
	}
	if len(parts) == 0 {
		return fmt.Sprintf("recipe %s", i.recipe.ID)
	}
	return strings.Join(parts, " • ")
}
