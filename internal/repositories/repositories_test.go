package repositories

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/desertthunder/gourmet/internal/models"
	"github.com/desertthunder/gourmet/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func TestTokenRepository(t *testing.T) {
	t.Run("Set and Get", func(t *testing.T) {
		repo := NewTokenRepository(setupTestDB(t))

		if err := repo.Set(models.TokenKey, "abc"); err != nil {
			t.Fatalf("failed to set token: %v", err)
		}

		got, err := repo.Get(models.TokenKey)
		if err != nil {
			t.Fatalf("failed to get token: %v", err)
		}
		if got != "abc" {
			t.Errorf("expected abc, got %s", got)
		}
	})

	t.Run("Set overwrites", func(t *testing.T) {
		repo := NewTokenRepository(setupTestDB(t))

		_ = repo.Set(models.TokenKey, "old")
		if err := repo.Set(models.TokenKey, "new"); err != nil {
			t.Fatalf("failed to overwrite token: %v", err)
		}

		got, _ := repo.Get(models.TokenKey)
		if got != "new" {
			t.Errorf("expected new, got %s", got)
		}
	})

	t.Run("Get missing", func(t *testing.T) {
		repo := NewTokenRepository(setupTestDB(t))

		_, err := repo.Get("nope")
		if !errors.Is(err, shared.ErrTokenNotFound) {
			t.Errorf("expected ErrTokenNotFound, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewTokenRepository(setupTestDB(t))

		_ = repo.Set(models.UsernameKey, "chef")
		if err := repo.Delete(models.UsernameKey); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if _, err := repo.Get(models.UsernameKey); !errors.Is(err, shared.ErrTokenNotFound) {
			t.Errorf("expected key to be gone, got %v", err)
		}
		if err := repo.Delete(models.UsernameKey); err != nil {
			t.Errorf("deleting a missing key should succeed: %v", err)
		}
	})

	t.Run("Session round trip", func(t *testing.T) {
		repo := NewTokenRepository(setupTestDB(t))

		empty, err := repo.LoadSession()
		if err != nil {
			t.Fatalf("failed to load empty session: %v", err)
		}
		if empty.Authenticated() {
			t.Error("fresh database should have no session")
		}

		if err := repo.SaveSession(models.Session{Token: "jwt", Username: "chef"}); err != nil {
			t.Fatalf("failed to save session: %v", err)
		}

		session, err := repo.LoadSession()
		if err != nil {
			t.Fatalf("failed to load session: %v", err)
		}
		if session.Token != "jwt" || session.Username != "chef" {
			t.Errorf("unexpected session: %+v", session)
		}

		if err := repo.ClearSession(); err != nil {
			t.Fatalf("failed to clear session: %v", err)
		}
		session, _ = repo.LoadSession()
		if session.Authenticated() || session.Username != "" {
			t.Errorf("expected cleared session, got %+v", session)
		}
	})
}

func TestRecipeRepository(t *testing.T) {
	recipes := []models.Recipe{
		{ID: "1", Name: "Pancakes", WhenToEat: "breakfast", Ingredients: []string{"flour", "eggs"}},
		{ID: "2", Name: "lasagna", WhenToEat: "dinner", IsFeatured: true},
		{ID: "3", Name: "Granola", WhenToEat: "breakfast"},
	}

	t.Run("Save and List", func(t *testing.T) {
		repo := NewRecipeRepository(setupTestDB(t))

		if err := repo.Save(recipes); err != nil {
			t.Fatalf("failed to save recipes: %v", err)
		}

		all, err := repo.List("")
		if err != nil {
			t.Fatalf("failed to list recipes: %v", err)
		}
		if len(all) != 3 {
			t.Fatalf("expected 3 recipes, got %d", len(all))
		}

		want := []string{"Granola", "lasagna", "Pancakes"}
		for i, name := range want {
			if all[i].Name != name {
				t.Errorf("position %d: expected %s, got %s", i, name, all[i].Name)
			}
		}
	})

	t.Run("List by category", func(t *testing.T) {
		repo := NewRecipeRepository(setupTestDB(t))
		_ = repo.Save(recipes)

		breakfast, err := repo.List("breakfast")
		if err != nil {
			t.Fatalf("failed to list recipes: %v", err)
		}
		if len(breakfast) != 2 {
			t.Errorf("expected 2 breakfast recipes, got %d", len(breakfast))
		}

		none, err := repo.List("brunch")
		if err != nil {
			t.Fatalf("failed to list recipes: %v", err)
		}
		if none == nil || len(none) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", none)
		}
	})

	t.Run("Save upserts", func(t *testing.T) {
		repo := NewRecipeRepository(setupTestDB(t))
		_ = repo.Save(recipes)

		updated := recipes[0]
		updated.Name = "Fluffy Pancakes"
		if err := repo.Save([]models.Recipe{updated}); err != nil {
			t.Fatalf("failed to upsert: %v", err)
		}

		got, err := repo.Get("1")
		if err != nil {
			t.Fatalf("failed to get recipe: %v", err)
		}
		if got.Name != "Fluffy Pancakes" {
			t.Errorf("expected updated name, got %s", got.Name)
		}
		if len(got.Ingredients) != 2 {
			t.Errorf("expected payload to keep ingredients, got %v", got.Ingredients)
		}
	})

	t.Run("Save rejects invalid batch", func(t *testing.T) {
		repo := NewRecipeRepository(setupTestDB(t))

		err := repo.Save([]models.Recipe{{ID: "9", Name: "Ok"}, {ID: "", Name: "Broken"}})
		if err == nil {
			t.Fatal("expected validation error")
		}

		all, _ := repo.List("")
		if len(all) != 0 {
			t.Errorf("expected batch to roll back, got %d rows", len(all))
		}
	})

	t.Run("Get missing", func(t *testing.T) {
		repo := NewRecipeRepository(setupTestDB(t))

		if _, err := repo.Get("404"); !errors.Is(err, shared.ErrRecipeNotFound) {
			t.Errorf("expected ErrRecipeNotFound, got %v", err)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		repo := NewRecipeRepository(setupTestDB(t))
		_ = repo.Save(recipes)

		n, err := repo.Clear()
		if err != nil {
			t.Fatalf("failed to clear: %v", err)
		}
		if n != 3 {
			t.Errorf("expected 3 cleared, got %d", n)
		}
	})
}
