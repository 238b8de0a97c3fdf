package weekview

import (
	"fmt"
	"strings"
	"time"

	"github.com/fdg312/family-hub/internal/config"
)

// AlertRules are the thresholds of the day and week alerts.
type AlertRules struct {
	OverloadScore     int
	DayBudgetMax      float64
	MaxMealsPerDay    int
	UrgentHorizonDays int

	MaxIntenseDays int
	WeekBudgetMax  float64

	// ChildName is used in the child activity messages.
	ChildName string
}

func DefaultAlertRules() AlertRules {
	return AlertRules{
		OverloadScore:     80,
		DayBudgetMax:      100,
		MaxMealsPerDay:    3,
		UrgentHorizonDays: 2,
		MaxIntenseDays:    2,
		WeekBudgetMax:     500,
		ChildName:         "l'enfant",
	}
}

func RulesFromConfig(cfg config.AlertConfig, childName string) AlertRules {
	r := AlertRules{
		OverloadScore:     cfg.OverloadScore,
		DayBudgetMax:      cfg.DayBudgetMax,
		MaxMealsPerDay:    cfg.MaxMealsPerDay,
		UrgentHorizonDays: cfg.UrgentHorizonDays,
		MaxIntenseDays:    cfg.MaxIntenseDays,
		WeekBudgetMax:     cfg.WeekBudgetMax,
		ChildName:         childName,
	}
	if r.ChildName == "" {
		r.ChildName = DefaultAlertRules().ChildName
	}
	return r
}

// dayFindings records which day rules fired. Every rule is evaluated.
type dayFindings struct {
	overload       bool
	noChild        bool
	urgentProjects []string
	highBudget     bool
	tooManyMeals   bool
}

func evaluateDay(day Day, rules AlertRules, today time.Time) dayFindings {
	var f dayFindings

	f.overload = day.ChargeScore > rules.OverloadScore
	f.noChild = len(day.Activites) > 0 && day.ChildActivities() == 0

	for _, p := range day.Projets {
		if p.Open() && (p.Priority == PriorityUrgent || dueSoon(p.DueDate, today, rules.UrgentHorizonDays)) {
			f.urgentProjects = append(f.urgentProjects, p.Name)
		}
	}

	f.highBudget = day.BudgetJour > rules.DayBudgetMax
	f.tooManyMeals = len(day.Repas) > rules.MaxMealsPerDay

	return f
}

// dueSoon reports whether due falls no later than horizon days after today.
// Overdue tasks count as due soon.
func dueSoon(due string, today time.Time, horizon int) bool {
	d, err := ParseDate(due)
	if err != nil {
		return false
	}
	return daysBetween(today, d) <= horizon
}

// DetectDayAlerts returns the day alerts in rule order: overload, missing
// child activity, urgent projects, budget, meal count.
func DetectDayAlerts(day Day, rules AlertRules, today time.Time) []string {
	f := evaluateDay(day, rules, today)
	alerts := []string{}

	if f.overload {
		alerts = append(alerts, fmt.Sprintf("Journée surchargée (charge %d/100)", day.ChargeScore))
	}
	if f.noChild {
		alerts = append(alerts, fmt.Sprintf("Aucune activité prévue pour %s", rules.ChildName))
	}
	if len(f.urgentProjects) > 0 {
		alerts = append(alerts, "Projet urgent : "+strings.Join(f.urgentProjects, ", "))
	}
	if f.highBudget {
		alerts = append(alerts, fmt.Sprintf("Budget du jour élevé : %.2f € (max %.2f €)", day.BudgetJour, rules.DayBudgetMax))
	}
	if f.tooManyMeals {
		alerts = append(alerts, fmt.Sprintf("Trop de repas prévus : %d (max %d)", len(day.Repas), rules.MaxMealsPerDay))
	}

	return alerts
}

// SuggestForDay turns the fired day rules into advice.
func SuggestForDay(day Day, rules AlertRules, today time.Time) []string {
	f := evaluateDay(day, rules, today)
	suggestions := []string{}

	if f.overload {
		suggestions = append(suggestions, "Déplacer une tâche ou une activité vers un jour plus léger")
	}
	if f.noChild {
		suggestions = append(suggestions, fmt.Sprintf("Prévoir une activité adaptée à %s", rules.ChildName))
	}
	for _, name := range f.urgentProjects {
		suggestions = append(suggestions, "Traiter en priorité : "+name)
	}
	if f.highBudget {
		suggestions = append(suggestions, "Remplacer une sortie payante par une activité gratuite")
	}
	if f.tooManyMeals {
		suggestions = append(suggestions, "Regrouper des repas ou cuisiner en plus grande quantité")
	}

	return suggestions
}

// DetectWeekAlerts evaluates the week rules over the aggregated week statistics.
func DetectWeekAlerts(stats WeekStats, rules AlertRules) []string {
	alerts := []string{}

	if stats.JoursIntenses > rules.MaxIntenseDays {
		alerts = append(alerts, fmt.Sprintf("%d jours intenses cette semaine (max %d)", stats.JoursIntenses, rules.MaxIntenseDays))
	}
	if stats.ActivitesEnfant == 0 {
		alerts = append(alerts, fmt.Sprintf("Aucune activité pour %s cette semaine", rules.ChildName))
	}
	if stats.BudgetTotal > rules.WeekBudgetMax {
		alerts = append(alerts, fmt.Sprintf("Budget de la semaine élevé : %.2f € (max %.2f €)", stats.BudgetTotal, rules.WeekBudgetMax))
	}

	return alerts
}
