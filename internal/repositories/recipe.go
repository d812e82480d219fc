package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/desertthunder/gourmet/internal/models"
	"github.com/desertthunder/gourmet/internal/shared"
)

// RecipeRepository implements [models.RecipeCache] on the recipes table.
//
// Each row keeps the full API payload as JSON next to the columns used for filtering.
type RecipeRepository struct {
	db *sql.DB
}

// NewRecipeRepository creates a new [RecipeRepository] with the given database connection
func NewRecipeRepository(db *sql.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// Save upserts recipes in a single transaction. Invalid recipes abort the whole batch.
func (r *RecipeRepository) Save(recipes []models.Recipe) error {
	return withTx(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO recipes (id, name, when_to_eat, is_featured, payload, fetched_at)
			VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				when_to_eat = excluded.when_to_eat,
				is_featured = excluded.is_featured,
				payload = excluded.payload,
				fetched_at = excluded.fetched_at
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, recipe := range recipes {
			if err := recipe.Validate(); err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			payload, err := json.Marshal(recipe)
			if err != nil {
				return fmt.Errorf("failed to encode recipe %s: %w", recipe.ID, err)
			}

			if _, err := stmt.Exec(recipe.ID, recipe.Name, recipe.WhenToEat, recipe.IsFeatured, string(payload)); err != nil {
				return fmt.Errorf("failed to save recipe %s: %w", recipe.ID, err)
			}
		}
		return nil
	})
}

// List returns cached recipes ordered by name. A non-empty whenToEat restricts the result to that category.
func (r *RecipeRepository) List(whenToEat string) ([]models.Recipe, error) {
	query := "SELECT payload FROM recipes"
	var args []any
	if whenToEat != "" {
		query += " WHERE when_to_eat = ?"
		args = append(args, whenToEat)
	}
	query += " ORDER BY name COLLATE NOCASE"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}
	defer rows.Close()

	recipes := []models.Recipe{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}

		var recipe models.Recipe
		if err := json.Unmarshal([]byte(payload), &recipe); err != nil {
			return nil, fmt.Errorf("failed to decode cached recipe: %w", err)
		}
		recipes = append(recipes, recipe)
	}

	return recipes, rows.Err()
}

// Get returns a cached recipe, or [shared.ErrRecipeNotFound].
func (r *RecipeRepository) Get(id string) (*models.Recipe, error) {
	var payload string
	err := r.db.QueryRow("SELECT payload FROM recipes WHERE id = ?", id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrRecipeNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query recipe: %w", err)
	}

	var recipe models.Recipe
	if err := json.Unmarshal([]byte(payload), &recipe); err != nil {
		return nil, fmt.Errorf("failed to decode cached recipe: %w", err)
	}
	return &recipe, nil
}

// Clear deletes every cached recipe and returns how many were removed.
func (r *RecipeRepository) Clear() (int, error) {
	result, err := r.db.Exec("DELETE FROM recipes")
	if err != nil {
		return 0, fmt.Errorf("failed to clear recipes: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count cleared recipes: %w", err)
	}
	return int(n), nil
}
