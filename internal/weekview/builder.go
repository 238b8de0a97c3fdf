package weekview

import (
	"time"

	"github.com/fdg312/family-hub/internal/storage"
)

// BuildDays groups items by date into the seven days starting at monday.
// Days without items are present with empty lists. Score, label, alerts and
// suggestions are left zero.
func BuildDays(monday time.Time, items *Items) []Day {
	days := make([]Day, 7)
	index := make(map[string]int, 7)
	for i := range days {
		date := FormatDate(monday.AddDate(0, 0, i))
		days[i] = Day{
			Date:        date,
			Repas:       []MealItem{},
			Activites:   []ActivityItem{},
			Evenements:  []CalendarEventItem{},
			Projets:     []ProjectTaskRef{},
			Routines:    []RoutineTaskRef{},
			Alertes:     []string{},
			Suggestions: []string{},
		}
		index[date] = i
	}
	if items == nil {
		return days
	}

	for _, m := range items.Meals {
		if i, ok := index[m.Date]; ok {
			days[i].Repas = append(days[i].Repas, mealItem(m))
		}
	}
	for _, a := range items.Activities {
		if i, ok := index[a.Date]; ok {
			days[i].Activites = append(days[i].Activites, activityItem(a))
			days[i].BudgetJour += a.EstimatedCost
		}
	}
	for _, e := range items.Events {
		if i, ok := index[e.Date]; ok {
			days[i].Evenements = append(days[i].Evenements, eventItem(e))
		}
	}
	for _, p := range items.Projects {
		if i, ok := index[p.DueDate]; ok {
			days[i].Projets = append(days[i].Projets, projectRef(p))
		}
	}
	for _, r := range items.Routines {
		if i, ok := index[r.Date]; ok {
			days[i].Routines = append(days[i].Routines, routineRef(r))
		}
	}

	return days
}

func mealItem(m storage.Meal) MealItem {
	return MealItem{
		ID:          m.ID,
		MealType:    m.MealType,
		RecipeID:    m.RecipeID,
		RecipeName:  m.RecipeName,
		PrepMinutes: m.PrepMinutes,
		CookMinutes: m.CookMinutes,
		Portions:    m.Portions,
	}
}

func activityItem(a storage.Activity) ActivityItem {
	return ActivityItem{
		ID:            a.ID,
		Title:         a.Title,
		StartMinutes:  a.StartMinutes,
		EndMinutes:    a.EndMinutes,
		Location:      a.Location,
		EstimatedCost: a.EstimatedCost,
		ForChild:      a.ForChild,
	}
}

func eventItem(e storage.CalendarEvent) CalendarEventItem {
	return CalendarEventItem{
		ID:           e.ID,
		Title:        e.Title,
		Kind:         e.Kind,
		StartMinutes: e.StartMinutes,
		EndMinutes:   e.EndMinutes,
		Location:     e.Location,
		Color:        e.Color,
	}
}

func projectRef(p storage.ProjectTask) ProjectTaskRef {
	return ProjectTaskRef{
		ID:       p.ID,
		Name:     p.Name,
		Priority: p.Priority,
		Status:   p.Status,
		DueDate:  p.DueDate,
	}
}

func routineRef(r storage.RoutineTask) RoutineTaskRef {
	return RoutineTaskRef{
		ID:          r.ID,
		RoutineName: r.RoutineName,
		TimeMinutes: r.TimeMinutes,
		Done:        r.Done,
	}
}
