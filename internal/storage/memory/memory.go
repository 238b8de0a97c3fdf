package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fdg312/family-hub/internal/storage"
	"github.com/google/uuid"
)

// MemoryStorage is the in-memory implementation of storage.HouseholdStorage.
type MemoryStorage struct {
	meals      *table[storage.Meal]
	activities *table[storage.Activity]
	events     *table[storage.CalendarEvent]
	projects   *table[storage.ProjectTask]
	routines   *table[storage.RoutineTask]
}

// New creates an empty MemoryStorage.
func New() *MemoryStorage {
	return &MemoryStorage{
		meals: newTable(accessor[storage.Meal]{
			id:      func(m *storage.Meal) *uuid.UUID { return &m.ID },
			date:    func(m *storage.Meal) string { return m.Date },
			minutes: func(m *storage.Meal) *int { return nil },
			stamps:  func(m *storage.Meal) (*time.Time, *time.Time) { return &m.CreatedAt, &m.UpdatedAt },
		}),
		activities: newTable(accessor[storage.Activity]{
			id:      func(a *storage.Activity) *uuid.UUID { return &a.ID },
			date:    func(a *storage.Activity) string { return a.Date },
			minutes: func(a *storage.Activity) *int { return a.StartMinutes },
			stamps:  func(a *storage.Activity) (*time.Time, *time.Time) { return &a.CreatedAt, &a.UpdatedAt },
		}),
		events: newTable(accessor[storage.CalendarEvent]{
			id:      func(e *storage.CalendarEvent) *uuid.UUID { return &e.ID },
			date:    func(e *storage.CalendarEvent) string { return e.Date },
			minutes: func(e *storage.CalendarEvent) *int { return e.StartMinutes },
			stamps:  func(e *storage.CalendarEvent) (*time.Time, *time.Time) { return &e.CreatedAt, &e.UpdatedAt },
		}),
		projects: newTable(accessor[storage.ProjectTask]{
			id:      func(p *storage.ProjectTask) *uuid.UUID { return &p.ID },
			date:    func(p *storage.ProjectTask) string { return p.DueDate },
			minutes: func(p *storage.ProjectTask) *int { return nil },
			stamps:  func(p *storage.ProjectTask) (*time.Time, *time.Time) { return &p.CreatedAt, &p.UpdatedAt },
		}),
		routines: newTable(accessor[storage.RoutineTask]{
			id:      func(r *storage.RoutineTask) *uuid.UUID { return &r.ID },
			date:    func(r *storage.RoutineTask) string { return r.Date },
			minutes: func(r *storage.RoutineTask) *int { return r.TimeMinutes },
			stamps:  func(r *storage.RoutineTask) (*time.Time, *time.Time) { return &r.CreatedAt, &r.UpdatedAt },
		}),
	}
}

func (m *MemoryStorage) Meals() storage.MealsStorage           { return m.meals }
func (m *MemoryStorage) Activities() storage.ActivitiesStorage { return m.activities }
func (m *MemoryStorage) Events() storage.EventsStorage         { return m.events }
func (m *MemoryStorage) Projects() storage.ProjectsStorage     { return m.projects }
func (m *MemoryStorage) Routines() storage.RoutinesStorage     { return m.routines }

// Close is a no-op for memory storage.
func (m *MemoryStorage) Close() error {
	return nil
}

// accessor exposes the fields the generic table needs from a row type.
type accessor[T any] struct {
	id      func(*T) *uuid.UUID
	date    func(*T) string
	minutes func(*T) *int
	stamps  func(*T) (created *time.Time, updated *time.Time)
}

// table is a mutex-guarded map of rows keyed by ID. Rows are stored and
// returned by value so callers never share memory with the store.
type table[T any] struct {
	mu   sync.RWMutex
	rows map[uuid.UUID]T
	acc  accessor[T]
	now  func() time.Time
}

func newTable[T any](acc accessor[T]) *table[T] {
	return &table[T]{
		rows: make(map[uuid.UUID]T),
		acc:  acc,
		now:  time.Now,
	}
}

func (t *table[T]) ListInRange(ctx context.Context, from, to string) ([]T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]T, 0)
	for _, row := range t.rows {
		d := t.acc.date(&row)
		if d >= from && d <= to {
			result = append(result, row)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		a, b := &result[i], &result[j]
		da, db := t.acc.date(a), t.acc.date(b)
		if da != db {
			return da < db
		}
		ma, mb := t.acc.minutes(a), t.acc.minutes(b)
		switch {
		case ma != nil && mb != nil && *ma != *mb:
			return *ma < *mb
		case ma != nil && mb == nil:
			return true
		case ma == nil && mb != nil:
			return false
		}
		return t.acc.id(a).String() < t.acc.id(b).String()
	})

	return result, nil
}

func (t *table[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	row, ok := t.rows[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &row, nil
}

func (t *table[T]) Upsert(ctx context.Context, item *T) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now().UTC()
	id := t.acc.id(item)
	created, updated := t.acc.stamps(item)

	if *id == uuid.Nil {
		*id = uuid.New()
		*created = now
	} else {
		existing, ok := t.rows[*id]
		if !ok {
			return storage.ErrNotFound
		}
		prevCreated, _ := t.acc.stamps(&existing)
		*created = *prevCreated
	}
	*updated = now

	t.rows[*id] = *item
	return nil
}

func (t *table[T]) Delete(ctx context.Context, id uuid.UUID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[id]; !ok {
		return storage.ErrNotFound
	}
	delete(t.rows, id)
	return nil
}
