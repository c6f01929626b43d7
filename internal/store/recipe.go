package store

import (
	"database/sql"
	"fmt"

	"github.com/wenqilu/mealweek/internal/model"
)

type RecipeStore struct {
	db *sql.DB
}

func NewRecipeStore(db *sql.DB) *RecipeStore {
	return &RecipeStore{db: db}
}

func scanRecipe(scanner interface{ Scan(...any) error }) (*model.Recipe, error) {
	var r model.Recipe
	err := scanner.Scan(&r.ID, &r.Title, &r.CookingTime, &r.Difficulty, &r.CoverImage, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

const recipeCols = `id, title, cooking_time, difficulty, cover_image, created_at`

// GetRecipe returns the recipe with its ingredient list, or (nil, nil)
// if no such recipe exists. The nil-nil shape is what the aggregator's
// skip-on-unresolved contract keys off.
func (s *RecipeStore) GetRecipe(id int64) (*model.Recipe, error) {
	row := s.db.QueryRow(`SELECT `+recipeCols+` FROM recipes WHERE id = ?`, id)
	r, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}

	r.Ingredients, err = s.ingredients(id)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *RecipeStore) ingredients(recipeID int64) ([]model.Ingredient, error) {
	rows, err := s.db.Query(
		`SELECT name, quantity FROM recipe_ingredients WHERE recipe_id = ? ORDER BY sort_order ASC, id ASC`,
		recipeID,
	)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	defer rows.Close()

	var ingredients []model.Ingredient
	for rows.Next() {
		var ing model.Ingredient
		if err := rows.Scan(&ing.Name, &ing.Quantity); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		ingredients = append(ingredients, ing)
	}
	return ingredients, rows.Err()
}

func (s *RecipeStore) Create(title string, cookingTime int, difficulty, coverImage string, ingredients []model.Ingredient) (*model.Recipe, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO recipes (title, cooking_time, difficulty, cover_image) VALUES (?, ?, ?, ?)`,
		title, cookingTime, difficulty, coverImage,
	)
	if err != nil {
		return nil, fmt.Errorf("insert recipe: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if err := insertIngredients(tx, id, ingredients); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetRecipe(id)
}

func (s *RecipeStore) Update(id int64, title string, cookingTime int, difficulty, coverImage string, ingredients []model.Ingredient) (*model.Recipe, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`UPDATE recipes SET title = ?, cooking_time = ?, difficulty = ?, cover_image = ? WHERE id = ?`,
		title, cookingTime, difficulty, coverImage, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}

	// Ingredient lists are replaced wholesale.
	if _, err := tx.Exec(`DELETE FROM recipe_ingredients WHERE recipe_id = ?`, id); err != nil {
		return nil, fmt.Errorf("clear ingredients: %w", err)
	}
	if err := insertIngredients(tx, id, ingredients); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetRecipe(id)
}

func insertIngredients(tx *sql.Tx, recipeID int64, ingredients []model.Ingredient) error {
	for i, ing := range ingredients {
		_, err := tx.Exec(
			`INSERT INTO recipe_ingredients (recipe_id, name, quantity, sort_order) VALUES (?, ?, ?, ?)`,
			recipeID, ing.Name, ing.Quantity, i,
		)
		if err != nil {
			return fmt.Errorf("insert ingredient: %w", err)
		}
	}
	return nil
}

// List returns recipe summaries without ingredient lists, newest first.
func (s *RecipeStore) List() ([]model.Recipe, error) {
	rows, err := s.db.Query(`SELECT ` + recipeCols + ` FROM recipes ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	var recipes []model.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, *r)
	}
	return recipes, rows.Err()
}

func (s *RecipeStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return nil
}
