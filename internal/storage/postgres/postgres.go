package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/fdg312/family-hub/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStorage is the Postgres implementation of storage.HouseholdStorage.
type PostgresStorage struct {
	pool       *pgxpool.Pool
	meals      *mealsStorage
	activities *activitiesStorage
	events     *eventsStorage
	projects   *projectsStorage
	routines   *routinesStorage
}

// New opens a pool and checks connectivity.
func New(ctx context.Context, databaseURL string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStorage{
		pool:       pool,
		meals:      &mealsStorage{pool: pool},
		activities: &activitiesStorage{pool: pool},
		events:     &eventsStorage{pool: pool},
		projects:   &projectsStorage{pool: pool},
		routines:   &routinesStorage{pool: pool},
	}, nil
}

func (p *PostgresStorage) Meals() storage.MealsStorage           { return p.meals }
func (p *PostgresStorage) Activities() storage.ActivitiesStorage { return p.activities }
func (p *PostgresStorage) Events() storage.EventsStorage         { return p.events }
func (p *PostgresStorage) Projects() storage.ProjectsStorage     { return p.projects }
func (p *PostgresStorage) Routines() storage.RoutinesStorage     { return p.routines }

// Close closes the connection pool.
func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

// collect scans every row of a query with scan.
func collect[T any](rows pgx.Rows, scan func(pgx.Row, *T) error) ([]T, error) {
	defer rows.Close()

	result := []T{}
	for rows.Next() {
		var item T
		if err := scan(rows, &item); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

// scanOne maps pgx.ErrNoRows to storage.ErrNotFound.
func scanOne[T any](row pgx.Row, scan func(pgx.Row, *T) error, what string) (*T, error) {
	var item T
	if err := scan(row, &item); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", what, err)
	}
	return &item, nil
}

func execDelete(ctx context.Context, pool *pgxpool.Pool, query string, args ...any) error {
	tag, err := pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
