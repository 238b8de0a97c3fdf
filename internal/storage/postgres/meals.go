package postgres

import (
	"context"
	"fmt"

	"github.com/fdg312/family-hub/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type mealsStorage struct {
	pool *pgxpool.Pool
}

const mealColumns = `id, meal_date::text, meal_type, recipe_id, recipe_name, prep_minutes, cook_minutes, portions, created_at, updated_at`

func scanMeal(row pgx.Row, m *storage.Meal) error {
	return row.Scan(
		&m.ID,
		&m.Date,
		&m.MealType,
		&m.RecipeID,
		&m.RecipeName,
		&m.PrepMinutes,
		&m.CookMinutes,
		&m.Portions,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
}

func (s *mealsStorage) ListInRange(ctx context.Context, from, to string) ([]storage.Meal, error) {
	query := `
		SELECT ` + mealColumns + `
		FROM meals
		WHERE meal_date BETWEEN $1::date AND $2::date
		ORDER BY meal_date, id
	`

	rows, err := s.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}
	return collect(rows, scanMeal)
}

func (s *mealsStorage) Get(ctx context.Context, id uuid.UUID) (*storage.Meal, error) {
	query := `SELECT ` + mealColumns + ` FROM meals WHERE id = $1`
	return scanOne(s.pool.QueryRow(ctx, query, id), scanMeal, "meal")
}

func (s *mealsStorage) Upsert(ctx context.Context, m *storage.Meal) error {
	if m.ID == uuid.Nil {
		query := `
			INSERT INTO meals (id, meal_date, meal_type, recipe_id, recipe_name, prep_minutes, cook_minutes, portions)
			VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8)
			RETURNING ` + mealColumns
		row := s.pool.QueryRow(ctx, query,
			uuid.New(), m.Date, m.MealType, m.RecipeID, m.RecipeName, m.PrepMinutes, m.CookMinutes, m.Portions)
		if err := scanMeal(row, m); err != nil {
			return fmt.Errorf("failed to create meal: %w", err)
		}
		return nil
	}

	query := `
		UPDATE meals
		SET meal_date = $2::date, meal_type = $3, recipe_id = $4, recipe_name = $5,
		    prep_minutes = $6, cook_minutes = $7, portions = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + mealColumns
	row := s.pool.QueryRow(ctx, query,
		m.ID, m.Date, m.MealType, m.RecipeID, m.RecipeName, m.PrepMinutes, m.CookMinutes, m.Portions)
	updated, err := scanOne(row, scanMeal, "meal")
	if err != nil {
		return err
	}
	*m = *updated
	return nil
}

func (s *mealsStorage) Delete(ctx context.Context, id uuid.UUID) error {
	return execDelete(ctx, s.pool, `DELETE FROM meals WHERE id = $1`, id)
}
