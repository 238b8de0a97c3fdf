package postgres

import (
	"context"
	"fmt"

	"github.com/fdg312/family-hub/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type routinesStorage struct {
	pool *pgxpool.Pool
}

const routineColumns = `id, routine_name, task_date::text, time_minutes, done, created_at, updated_at`

func scanRoutine(row pgx.Row, r *storage.RoutineTask) error {
	return row.Scan(
		&r.ID,
		&r.RoutineName,
		&r.Date,
		&r.TimeMinutes,
		&r.Done,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
}

func (s *routinesStorage) ListInRange(ctx context.Context, from, to string) ([]storage.RoutineTask, error) {
	query := `
		SELECT ` + routineColumns + `
		FROM routine_tasks
		WHERE task_date BETWEEN $1::date AND $2::date
		ORDER BY task_date, time_minutes NULLS LAST, id
	`

	rows, err := s.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list routine tasks: %w", err)
	}
	return collect(rows, scanRoutine)
}

func (s *routinesStorage) Get(ctx context.Context, id uuid.UUID) (*storage.RoutineTask, error) {
	query := `SELECT ` + routineColumns + ` FROM routine_tasks WHERE id = $1`
	return scanOne(s.pool.QueryRow(ctx, query, id), scanRoutine, "routine task")
}

func (s *routinesStorage) Upsert(ctx context.Context, r *storage.RoutineTask) error {
	if r.ID == uuid.Nil {
		query := `
			INSERT INTO routine_tasks (id, routine_name, task_date, time_minutes, done)
			VALUES ($1, $2, $3::date, $4, $5)
			RETURNING ` + routineColumns
		row := s.pool.QueryRow(ctx, query, uuid.New(), r.RoutineName, r.Date, r.TimeMinutes, r.Done)
		if err := scanRoutine(row, r); err != nil {
			return fmt.Errorf("failed to create routine task: %w", err)
		}
		return nil
	}

	query := `
		UPDATE routine_tasks
		SET routine_name = $2, task_date = $3::date, time_minutes = $4, done = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + routineColumns
	row := s.pool.QueryRow(ctx, query, r.ID, r.RoutineName, r.Date, r.TimeMinutes, r.Done)
	updated, err := scanOne(row, scanRoutine, "routine task")
	if err != nil {
		return err
	}
	*r = *updated
	return nil
}

func (s *routinesStorage) Delete(ctx context.Context, id uuid.UUID) error {
	return execDelete(ctx, s.pool, `DELETE FROM routine_tasks WHERE id = $1`, id)
}
