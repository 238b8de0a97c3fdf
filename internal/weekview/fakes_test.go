package weekview

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/fdg312/family-hub/internal/storage"
	"github.com/fdg312/family-hub/internal/storage/memory"
)

// countingStore records every range query made against the wrapped store.
type countingStore[T any] struct {
	storage.EntityStore[T]
	calls  atomic.Int32
	mu     sync.Mutex
	ranges [][2]string
	err    error
}

func (c *countingStore[T]) ListInRange(ctx context.Context, from, to string) ([]T, error) {
	c.calls.Add(1)
	c.mu.Lock()
	c.ranges = append(c.ranges, [2]string{from, to})
	c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return c.EntityStore.ListInRange(ctx, from, to)
}

type fakeHousehold struct {
	mem        *memory.MemoryStorage
	meals      *countingStore[storage.Meal]
	activities *countingStore[storage.Activity]
	events     *countingStore[storage.CalendarEvent]
	projects   *countingStore[storage.ProjectTask]
	routines   *countingStore[storage.RoutineTask]
}

func newFakeHousehold() *fakeHousehold {
	mem := memory.New()
	return &fakeHousehold{
		mem:        mem,
		meals:      &countingStore[storage.Meal]{EntityStore: mem.Meals()},
		activities: &countingStore[storage.Activity]{EntityStore: mem.Activities()},
		events:     &countingStore[storage.CalendarEvent]{EntityStore: mem.Events()},
		projects:   &countingStore[storage.ProjectTask]{EntityStore: mem.Projects()},
		routines:   &countingStore[storage.RoutineTask]{EntityStore: mem.Routines()},
	}
}

func (f *fakeHousehold) Meals() storage.MealsStorage           { return f.meals }
func (f *fakeHousehold) Activities() storage.ActivitiesStorage { return f.activities }
func (f *fakeHousehold) Events() storage.EventsStorage         { return f.events }
func (f *fakeHousehold) Projects() storage.ProjectsStorage     { return f.projects }
func (f *fakeHousehold) Routines() storage.RoutinesStorage     { return f.routines }
func (f *fakeHousehold) Close() error                          { return nil }

// loadCalls is the number of range queries per kind, or -1 when kinds differ.
func (f *fakeHousehold) loadCalls() int32 {
	n := f.meals.calls.Load()
	for _, c := range []int32{f.activities.calls.Load(), f.events.calls.Load(), f.projects.calls.Load(), f.routines.calls.Load()} {
		if c != n {
			return -1
		}
	}
	return n
}

// rawStore lets tests insert rows the API would reject.
type rawStore[T any] struct {
	rows []T
}

func (r *rawStore[T]) ListInRange(ctx context.Context, from, to string) ([]T, error) {
	out := make([]T, len(r.rows))
	copy(out, r.rows)
	return out, nil
}
func (r *rawStore[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) { return nil, storage.ErrNotFound }
func (r *rawStore[T]) Upsert(ctx context.Context, item *T) error          { return errors.New("read only") }
func (r *rawStore[T]) Delete(ctx context.Context, id uuid.UUID) error     { return errors.New("read only") }

// sharedStore hands out its own backing slice, like a store serving from a
// read cache.
type sharedStore[T any] struct {
	rawStore[T]
}

func (s *sharedStore[T]) ListInRange(ctx context.Context, from, to string) ([]T, error) {
	return s.rows, nil
}

func intp(v int) *int { return &v }

func seed(t interface{ Fatalf(string, ...any) }, f *fakeHousehold) {
	ctx := context.Background()
	must := func(err error) {
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	for _, m := range []storage.Meal{
		{Date: "2024-01-03", MealType: "breakfast", RecipeName: "Porridge", PrepMinutes: 10, CookMinutes: 10, Portions: 3},
		{Date: "2024-01-03", MealType: "lunch", RecipeName: "Gratin", PrepMinutes: 20, CookMinutes: 30, Portions: 3},
		{Date: "2024-01-03", MealType: "dinner", RecipeName: "Soupe", PrepMinutes: 30, CookMinutes: 50, Portions: 3},
		{Date: "2024-01-05", MealType: "dinner", RecipeName: "Pâtes", PrepMinutes: 5, CookMinutes: 10, Portions: 3},
		{Date: "2024-01-09", MealType: "dinner", RecipeName: "Semaine suivante", PrepMinutes: 5, CookMinutes: 10, Portions: 3},
	} {
		m := m
		must(f.mem.Meals().Upsert(ctx, &m))
	}
	for _, a := range []storage.Activity{
		{Title: "Piscine", Date: "2024-01-03", StartMinutes: intp(600), EstimatedCost: 12.5},
		{Title: "Musée", Date: "2024-01-03", StartMinutes: intp(840), EstimatedCost: 30},
		{Title: "Parc", Date: "2024-01-06", ForChild: true},
	} {
		a := a
		must(f.mem.Activities().Upsert(ctx, &a))
	}
	ev := storage.CalendarEvent{Title: "Dentiste", Kind: "rdv", Date: "2024-01-04", StartMinutes: intp(540)}
	must(f.mem.Events().Upsert(ctx, &ev))
	p := storage.ProjectTask{Name: "Déclaration", Priority: "urgent", Status: "todo", DueDate: "2024-01-03"}
	must(f.mem.Projects().Upsert(ctx, &p))
	r := storage.RoutineTask{RoutineName: "Poubelles", Date: "2024-01-01", TimeMinutes: intp(1200)}
	must(f.mem.Routines().Upsert(ctx, &r))
}
