package tasks

import "github.com/desertthunder/gourmet/internal/models"

// Categories returns the distinct when_to_eat values in order of first appearance. Empty values are skipped.
func Categories(recipes []models.Recipe) []string {
	seen := make(map[string]bool)
	categories := []string{}
	for _, r := range recipes {
		if r.WhenToEat == "" || seen[r.WhenToEat] {
			continue
		}
		seen[r.WhenToEat] = true
		categories = append(categories, r.WhenToEat)
	}
	return categories
}

// FilterByCategory returns the recipes eaten at category. An empty category matches everything.
func FilterByCategory(recipes []models.Recipe, category string) []models.Recipe {
	if category == "" {
		return recipes
	}

	filtered := []models.Recipe{}
	for _, r := range recipes {
		if r.WhenToEat == category {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// CategoryFilter is the category selection of a recipe listing.
type CategoryFilter struct {
	selected string
}

// Toggle selects category, or clears the selection when category is already selected. Returns the new selection.
func (f *CategoryFilter) Toggle(category string) string {
	if category == f.selected {
		f.selected = ""
	} else {
		f.selected = category
	}
	return f.selected
}

// Clear removes the selection.
func (f *CategoryFilter) Clear() {
	f.selected = ""
}

// Selected returns the selected category, or "" when showing everything.
func (f *CategoryFilter) Selected() string {
	return f.selected
}

// Apply filters recipes by the selected category.
func (f *CategoryFilter) Apply(recipes []models.Recipe) []models.Recipe {
	return FilterByCategory(recipes, f.selected)
}

// Featured returns the recipe to highlight: the first one flagged is_featured, else the first recipe.
func Featured(recipes []models.Recipe) (*models.Recipe, bool) {
	if len(recipes) == 0 {
		return nil, false
	}
	for i := range recipes {
		if recipes[i].IsFeatured {
			return &recipes[i], true
		}
	}
	return &recipes[0], true
}

// FindRecipe looks a recipe up by ID.
func FindRecipe(recipes []models.Recipe, id string) (*models.Recipe, bool) {
	for i := range recipes {
		if recipes[i].ID == id {
			return &recipes[i], true
		}
	}
	return nil, false
}
