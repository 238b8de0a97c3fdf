package postgres

import (
	"context"
	"fmt"

	"github.com/fdg312/family-hub/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type eventsStorage struct {
	pool *pgxpool.Pool
}

const eventColumns = `id, title, kind, event_date::text, start_minutes, end_minutes, location, color, created_at, updated_at`

func scanEvent(row pgx.Row, e *storage.CalendarEvent) error {
	return row.Scan(
		&e.ID,
		&e.Title,
		&e.Kind,
		&e.Date,
		&e.StartMinutes,
		&e.EndMinutes,
		&e.Location,
		&e.Color,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
}

func (s *eventsStorage) ListInRange(ctx context.Context, from, to string) ([]storage.CalendarEvent, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM calendar_events
		WHERE event_date BETWEEN $1::date AND $2::date
		ORDER BY event_date, start_minutes NULLS LAST, id
	`

	rows, err := s.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar events: %w", err)
	}
	return collect(rows, scanEvent)
}

func (s *eventsStorage) Get(ctx context.Context, id uuid.UUID) (*storage.CalendarEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM calendar_events WHERE id = $1`
	return scanOne(s.pool.QueryRow(ctx, query, id), scanEvent, "calendar event")
}

func (s *eventsStorage) Upsert(ctx context.Context, e *storage.CalendarEvent) error {
	if e.ID == uuid.Nil {
		query := `
			INSERT INTO calendar_events (id, title, kind, event_date, start_minutes, end_minutes, location, color)
			VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8)
			RETURNING ` + eventColumns
		row := s.pool.QueryRow(ctx, query,
			uuid.New(), e.Title, e.Kind, e.Date, e.StartMinutes, e.EndMinutes, e.Location, e.Color)
		if err := scanEvent(row, e); err != nil {
			return fmt.Errorf("failed to create calendar event: %w", err)
		}
		return nil
	}

	query := `
		UPDATE calendar_events
		SET title = $2, kind = $3, event_date = $4::date, start_minutes = $5, end_minutes = $6,
		    location = $7, color = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + eventColumns
	row := s.pool.QueryRow(ctx, query,
		e.ID, e.Title, e.Kind, e.Date, e.StartMinutes, e.EndMinutes, e.Location, e.Color)
	updated, err := scanOne(row, scanEvent, "calendar event")
	if err != nil {
		return err
	}
	*e = *updated
	return nil
}

func (s *eventsStorage) Delete(ctx context.Context, id uuid.UUID) error {
	return execDelete(ctx, s.pool, `DELETE FROM calendar_events WHERE id = $1`, id)
}
