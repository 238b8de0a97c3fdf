package postgres

import (
	"context"
	"fmt"

	"github.com/fdg312/family-hub/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type activitiesStorage struct {
	pool *pgxpool.Pool
}

const activityColumns = `id, title, activity_date::text, start_minutes, end_minutes, location, estimated_cost, for_child, created_at, updated_at`

func scanActivity(row pgx.Row, a *storage.Activity) error {
	return row.Scan(
		&a.ID,
		&a.Title,
		&a.Date,
		&a.StartMinutes,
		&a.EndMinutes,
		&a.Location,
		&a.EstimatedCost,
		&a.ForChild,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
}

func (s *activitiesStorage) ListInRange(ctx context.Context, from, to string) ([]storage.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE activity_date BETWEEN $1::date AND $2::date
		ORDER BY activity_date, start_minutes NULLS LAST, id
	`

	rows, err := s.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return collect(rows, scanActivity)
}

func (s *activitiesStorage) Get(ctx context.Context, id uuid.UUID) (*storage.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE id = $1`
	return scanOne(s.pool.QueryRow(ctx, query, id), scanActivity, "activity")
}

func (s *activitiesStorage) Upsert(ctx context.Context, a *storage.Activity) error {
	if a.ID == uuid.Nil {
		query := `
			INSERT INTO activities (id, title, activity_date, start_minutes, end_minutes, location, estimated_cost, for_child)
			VALUES ($1, $2, $3::date, $4, $5, $6, $7, $8)
			RETURNING ` + activityColumns
		row := s.pool.QueryRow(ctx, query,
			uuid.New(), a.Title, a.Date, a.StartMinutes, a.EndMinutes, a.Location, a.EstimatedCost, a.ForChild)
		if err := scanActivity(row, a); err != nil {
			return fmt.Errorf("failed to create activity: %w", err)
		}
		return nil
	}

	query := `
		UPDATE activities
		SET title = $2, activity_date = $3::date, start_minutes = $4, end_minutes = $5,
		    location = $6, estimated_cost = $7, for_child = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + activityColumns
	row := s.pool.QueryRow(ctx, query,
		a.ID, a.Title, a.Date, a.StartMinutes, a.EndMinutes, a.Location, a.EstimatedCost, a.ForChild)
	updated, err := scanOne(row, scanActivity, "activity")
	if err != nil {
		return err
	}
	*a = *updated
	return nil
}

func (s *activitiesStorage) Delete(ctx context.Context, id uuid.UUID) error {
	return execDelete(ctx, s.pool, `DELETE FROM activities WHERE id = $1`, id)
}
