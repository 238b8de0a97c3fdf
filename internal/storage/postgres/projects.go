package postgres

import (
	"context"
	"fmt"

	"github.com/fdg312/family-hub/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type projectsStorage struct {
	pool *pgxpool.Pool
}

const projectColumns = `id, name, priority, status, due_date::text, created_at, updated_at`

func scanProject(row pgx.Row, p *storage.ProjectTask) error {
	return row.Scan(
		&p.ID,
		&p.Name,
		&p.Priority,
		&p.Status,
		&p.DueDate,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

func (s *projectsStorage) ListInRange(ctx context.Context, from, to string) ([]storage.ProjectTask, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM project_tasks
		WHERE due_date BETWEEN $1::date AND $2::date
		ORDER BY due_date, id
	`

	rows, err := s.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list project tasks: %w", err)
	}
	return collect(rows, scanProject)
}

func (s *projectsStorage) Get(ctx context.Context, id uuid.UUID) (*storage.ProjectTask, error) {
	query := `SELECT ` + projectColumns + ` FROM project_tasks WHERE id = $1`
	return scanOne(s.pool.QueryRow(ctx, query, id), scanProject, "project task")
}

func (s *projectsStorage) Upsert(ctx context.Context, p *storage.ProjectTask) error {
	if p.ID == uuid.Nil {
		query := `
			INSERT INTO project_tasks (id, name, priority, status, due_date)
			VALUES ($1, $2, $3, $4, $5::date)
			RETURNING ` + projectColumns
		row := s.pool.QueryRow(ctx, query, uuid.New(), p.Name, p.Priority, p.Status, p.DueDate)
		if err := scanProject(row, p); err != nil {
			return fmt.Errorf("failed to create project task: %w", err)
		}
		return nil
	}

	query := `
		UPDATE project_tasks
		SET name = $2, priority = $3, status = $4, due_date = $5::date, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + projectColumns
	row := s.pool.QueryRow(ctx, query, p.ID, p.Name, p.Priority, p.Status, p.DueDate)
	updated, err := scanOne(row, scanProject, "project task")
	if err != nil {
		return err
	}
	*p = *updated
	return nil
}

func (s *projectsStorage) Delete(ctx context.Context, id uuid.UUID) error {
	return execDelete(ctx, s.pool, `DELETE FROM project_tasks WHERE id = $1`, id)
}
