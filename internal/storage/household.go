package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Get/Upsert/Delete when the row does not exist.
var ErrNotFound = errors.New("not found")

// EntityStore is the read/write contract every household entity kind offers.
// ListInRange returns the rows whose date falls in [from, to] (YYYY-MM-DD,
// inclusive), ordered by date, then time of day (rows without a time last),
// then id. It is a single range query; callers never query day by day.
type EntityStore[T any] interface {
	ListInRange(ctx context.Context, from, to string) ([]T, error)
	Get(ctx context.Context, id uuid.UUID) (*T, error)
	// Upsert creates the row when ID is uuid.Nil (assigning a new ID) and
	// updates it otherwise. Updating an unknown ID returns ErrNotFound.
	Upsert(ctx context.Context, item *T) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type (
	MealsStorage      = EntityStore[Meal]
	ActivitiesStorage = EntityStore[Activity]
	EventsStorage     = EntityStore[CalendarEvent]
	ProjectsStorage   = EntityStore[ProjectTask]
	RoutinesStorage   = EntityStore[RoutineTask]
)

// HouseholdStorage groups the per-kind stores of one backend.
type HouseholdStorage interface {
	Meals() MealsStorage
	Activities() ActivitiesStorage
	Events() EventsStorage
	Projects() ProjectsStorage
	Routines() RoutinesStorage
	Close() error
}

// Meal is one planned meal.
type Meal struct {
	ID          uuid.UUID  `json:"id"`
	Date        string     `json:"date"`      // YYYY-MM-DD
	MealType    string     `json:"meal_type"` // breakfast | lunch | dinner | snack
	RecipeID    *uuid.UUID `json:"recipe_id,omitempty"`
	RecipeName  string     `json:"recipe_name"`
	PrepMinutes int        `json:"prep_minutes"`
	CookMinutes int        `json:"cook_minutes"`
	Portions    int        `json:"portions"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Activity is one family outing or activity.
type Activity struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Date          string    `json:"date"`
	StartMinutes  *int      `json:"start_minutes,omitempty"` // minutes from midnight
	EndMinutes    *int      `json:"end_minutes,omitempty"`
	Location      string    `json:"location"`
	EstimatedCost float64   `json:"estimated_cost"`
	ForChild      bool      `json:"for_child"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CalendarEvent is a generic calendar entry (appointment, birthday, ...).
type CalendarEvent struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Kind         string    `json:"kind"`
	Date         string    `json:"date"`
	StartMinutes *int      `json:"start_minutes,omitempty"`
	EndMinutes   *int      `json:"end_minutes,omitempty"`
	Location     string    `json:"location"`
	Color        string    `json:"color"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProjectTask is a household project, placed in the week by its due date.
type ProjectTask struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Priority  string    `json:"priority"` // low | medium | high | urgent
	Status    string    `json:"status"`   // todo | in_progress | done
	DueDate   string    `json:"due_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RoutineTask is one materialized instance of a recurring routine.
type RoutineTask struct {
	ID          uuid.UUID `json:"id"`
	RoutineName string    `json:"routine_name"`
	Date        string    `json:"date"`
	TimeMinutes *int      `json:"time_minutes,omitempty"`
	Done        bool      `json:"done"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
