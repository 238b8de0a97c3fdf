package weekview

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/fdg312/family-hub/internal/storage"
)

// ErrDataAccess matches any failure of an entity loader's underlying read.
var ErrDataAccess = errors.New("data access failed")

// LoadError identifies the entity kind whose read failed.
type LoadError struct {
	Kind string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrDataAccess }

// Items holds the validated rows of a date range, per kind, in storage order.
type Items struct {
	Meals      []storage.Meal
	Activities []storage.Activity
	Events     []storage.CalendarEvent
	Projects   []storage.ProjectTask
	Routines   []storage.RoutineTask
}

// Loaders fetch every entity kind for a date range, one range query per kind.
type Loaders struct {
	meals      storage.MealsStorage
	activities storage.ActivitiesStorage
	events     storage.EventsStorage
	projects   storage.ProjectsStorage
	routines   storage.RoutinesStorage
	logger     logrus.FieldLogger
}

func NewLoaders(s storage.HouseholdStorage, logger logrus.FieldLogger) *Loaders {
	return &Loaders{
		meals:      s.Meals(),
		activities: s.Activities(),
		events:     s.Events(),
		projects:   s.Projects(),
		routines:   s.Routines(),
		logger:     logger,
	}
}

// Load runs the five loaders concurrently over [from, to]. Malformed rows are
// skipped and logged; a failed read fails the whole load with a *LoadError.
func (l *Loaders) Load(ctx context.Context, from, to string) (*Items, error) {
	var items Items
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		items.Meals, err = loadKind(gctx, l, "meals", l.meals, from, to, validateMeal, func(m *storage.Meal) uuid.UUID { return m.ID })
		return err
	})
	g.Go(func() (err error) {
		items.Activities, err = loadKind(gctx, l, "activities", l.activities, from, to, validateActivity, func(a *storage.Activity) uuid.UUID { return a.ID })
		return err
	})
	g.Go(func() (err error) {
		items.Events, err = loadKind(gctx, l, "events", l.events, from, to, validateEvent, func(e *storage.CalendarEvent) uuid.UUID { return e.ID })
		return err
	})
	g.Go(func() (err error) {
		items.Projects, err = loadKind(gctx, l, "projects", l.projects, from, to, validateProject, func(p *storage.ProjectTask) uuid.UUID { return p.ID })
		return err
	})
	g.Go(func() (err error) {
		items.Routines, err = loadKind(gctx, l, "routines", l.routines, from, to, validateRoutine, func(r *storage.RoutineTask) uuid.UUID { return r.ID })
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &items, nil
}

func loadKind[T any](
	ctx context.Context,
	l *Loaders,
	kind string,
	store storage.EntityStore[T],
	from, to string,
	validate func(*T, string, string) error,
	id func(*T) uuid.UUID,
) ([]T, error) {
	rows, err := store.ListInRange(ctx, from, to)
	if err != nil {
		return nil, &LoadError{Kind: kind, Err: err}
	}

	// rows may be shared with the store, so filter into a new slice.
	valid := make([]T, 0, len(rows))
	for i := range rows {
		if err := validate(&rows[i], from, to); err != nil {
			l.logger.WithFields(logrus.Fields{
				"kind":   kind,
				"id":     id(&rows[i]).String(),
				"reason": err.Error(),
			}).Warn("skipping malformed item")
			continue
		}
		valid = append(valid, rows[i])
	}
	return valid, nil
}

func validateDateIn(date, from, to string) error {
	if date == "" {
		return errors.New("missing date")
	}
	if _, err := ParseDate(date); err != nil {
		return fmt.Errorf("unparseable date %q", date)
	}
	if date < from || date > to {
		return fmt.Errorf("date %s outside %s..%s", date, from, to)
	}
	return nil
}

func validateMinutes(field string, v *int) error {
	if v != nil && (*v < 0 || *v > 24*60) {
		return fmt.Errorf("%s out of range: %d", field, *v)
	}
	return nil
}

func validateMeal(m *storage.Meal, from, to string) error {
	if err := validateDateIn(m.Date, from, to); err != nil {
		return err
	}
	if !mealTypes[m.MealType] {
		return fmt.Errorf("unknown meal type %q", m.MealType)
	}
	if m.PrepMinutes < 0 || m.CookMinutes < 0 {
		return errors.New("negative duration")
	}
	return nil
}

func validateActivity(a *storage.Activity, from, to string) error {
	if err := validateDateIn(a.Date, from, to); err != nil {
		return err
	}
	if err := validateMinutes("start", a.StartMinutes); err != nil {
		return err
	}
	if err := validateMinutes("end", a.EndMinutes); err != nil {
		return err
	}
	if a.EstimatedCost < 0 {
		return errors.New("negative cost")
	}
	return nil
}

func validateEvent(e *storage.CalendarEvent, from, to string) error {
	if err := validateDateIn(e.Date, from, to); err != nil {
		return err
	}
	if err := validateMinutes("start", e.StartMinutes); err != nil {
		return err
	}
	return validateMinutes("end", e.EndMinutes)
}

func validateProject(p *storage.ProjectTask, from, to string) error {
	if err := validateDateIn(p.DueDate, from, to); err != nil {
		return err
	}
	if !priorities[p.Priority] {
		return fmt.Errorf("unknown priority %q", p.Priority)
	}
	if !statuses[p.Status] {
		return fmt.Errorf("unknown status %q", p.Status)
	}
	return nil
}

func validateRoutine(r *storage.RoutineTask, from, to string) error {
	if err := validateDateIn(r.Date, from, to); err != nil {
		return err
	}
	return validateMinutes("time", r.TimeMinutes)
}
