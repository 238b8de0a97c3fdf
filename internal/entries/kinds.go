package entries

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fdg312/family-hub/internal/storage"
	"github.com/fdg312/family-hub/internal/weekview"
)

// Services bundles the CRUD services of every household entity kind.
type Services struct {
	Meals      *Service[storage.Meal]
	Activities *Service[storage.Activity]
	Events     *Service[storage.CalendarEvent]
	Projects   *Service[storage.ProjectTask]
	Routines   *Service[storage.RoutineTask]
}

func NewServices(h storage.HouseholdStorage, weeks Invalidator, logger logrus.FieldLogger) *Services {
	return &Services{
		Meals: NewService(Kind[storage.Meal]{
			Name:     "meals",
			Store:    h.Meals(),
			ID:       func(m *storage.Meal) *uuid.UUID { return &m.ID },
			Date:     func(m *storage.Meal) string { return m.Date },
			Validate: validateMeal,
		}, weeks, logger),
		Activities: NewService(Kind[storage.Activity]{
			Name:     "activities",
			Store:    h.Activities(),
			ID:       func(a *storage.Activity) *uuid.UUID { return &a.ID },
			Date:     func(a *storage.Activity) string { return a.Date },
			Validate: validateActivity,
		}, weeks, logger),
		Events: NewService(Kind[storage.CalendarEvent]{
			Name:     "events",
			Store:    h.Events(),
			ID:       func(e *storage.CalendarEvent) *uuid.UUID { return &e.ID },
			Date:     func(e *storage.CalendarEvent) string { return e.Date },
			Validate: validateEvent,
		}, weeks, logger),
		Projects: NewService(Kind[storage.ProjectTask]{
			Name:     "projects",
			Store:    h.Projects(),
			ID:       func(p *storage.ProjectTask) *uuid.UUID { return &p.ID },
			Date:     func(p *storage.ProjectTask) string { return p.DueDate },
			Validate: validateProject,
		}, weeks, logger),
		Routines: NewService(Kind[storage.RoutineTask]{
			Name:     "routines",
			Store:    h.Routines(),
			ID:       func(r *storage.RoutineTask) *uuid.UUID { return &r.ID },
			Date:     func(r *storage.RoutineTask) string { return r.Date },
			Validate: validateRoutine,
		}, weeks, logger),
	}
}

// Register mounts /v1/{kind} and /v1/{kind}/{id} for every kind.
func (s *Services) Register(mux *http.ServeMux) {
	register(mux, s.Meals)
	register(mux, s.Activities)
	register(mux, s.Events)
	register(mux, s.Projects)
	register(mux, s.Routines)
}

func register[T any](mux *http.ServeMux, svc *Service[T]) {
	h := NewHandler(svc)
	base := "/v1/" + svc.kind.Name
	mux.HandleFunc("GET "+base, h.HandleList)
	mux.HandleFunc("POST "+base, h.HandleCreate)
	mux.HandleFunc("GET "+base+"/{id}", h.HandleGet)
	mux.HandleFunc("PUT "+base+"/{id}", h.HandleUpdate)
	mux.HandleFunc("DELETE "+base+"/{id}", h.HandleDelete)
}

func validateDate(date string) error {
	if _, err := weekview.ParseDate(date); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	return nil
}

func validateTimeWindow(start, end *int) error {
	for _, v := range []*int{start, end} {
		if v != nil && (*v < 0 || *v > 24*60) {
			return errors.New("time must be within 0..1440 minutes")
		}
	}
	if start != nil && end != nil && *end < *start {
		return errors.New("end_minutes must not be before start_minutes")
	}
	return nil
}

func validateMeal(m *storage.Meal) error {
	if err := validateDate(m.Date); err != nil {
		return err
	}
	switch m.MealType {
	case "breakfast", "lunch", "dinner", "snack":
	default:
		return errors.New("meal_type must be breakfast, lunch, dinner or snack")
	}
	if m.PrepMinutes < 0 || m.CookMinutes < 0 {
		return errors.New("prep_minutes and cook_minutes must be >= 0")
	}
	if m.Portions < 0 {
		return errors.New("portions must be >= 0")
	}
	m.RecipeName = strings.TrimSpace(m.RecipeName)
	return nil
}

func validateActivity(a *storage.Activity) error {
	a.Title = strings.TrimSpace(a.Title)
	if a.Title == "" {
		return errors.New("title is required")
	}
	if err := validateDate(a.Date); err != nil {
		return err
	}
	if err := validateTimeWindow(a.StartMinutes, a.EndMinutes); err != nil {
		return err
	}
	if a.EstimatedCost < 0 {
		return errors.New("estimated_cost must be >= 0")
	}
	return nil
}

func validateEvent(e *storage.CalendarEvent) error {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return errors.New("title is required")
	}
	if err := validateDate(e.Date); err != nil {
		return err
	}
	return validateTimeWindow(e.StartMinutes, e.EndMinutes)
}

func validateProject(p *storage.ProjectTask) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return errors.New("name is required")
	}
	if err := validateDate(p.DueDate); err != nil {
		return fmt.Errorf("due_%w", err)
	}
	switch p.Priority {
	case weekview.PriorityLow, weekview.PriorityMedium, weekview.PriorityHigh, weekview.PriorityUrgent:
	default:
		return errors.New("priority must be low, medium, high or urgent")
	}
	if p.Status == "" {
		p.Status = weekview.StatusTodo
	}
	switch p.Status {
	case weekview.StatusTodo, weekview.StatusInProgress, weekview.StatusDone:
	default:
		return errors.New("status must be todo, in_progress or done")
	}
	return nil
}

func validateRoutine(r *storage.RoutineTask) error {
	r.RoutineName = strings.TrimSpace(r.RoutineName)
	if r.RoutineName == "" {
		return errors.New("routine_name is required")
	}
	if err := validateDate(r.Date); err != nil {
		return err
	}
	return validateTimeWindow(r.TimeMinutes, nil)
}
