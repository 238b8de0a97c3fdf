package weekview

import (
	"sort"

	"github.com/google/uuid"
)

// Charge labels, from lightest to heaviest.
const (
	LabelFaible  = "faible"
	LabelNormal  = "normal"
	LabelIntense = "intense"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"

	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

var (
	mealTypes  = map[string]bool{"breakfast": true, "lunch": true, "dinner": true, "snack": true}
	priorities = map[string]bool{PriorityLow: true, PriorityMedium: true, PriorityHigh: true, PriorityUrgent: true}
	statuses   = map[string]bool{StatusTodo: true, StatusInProgress: true, StatusDone: true}
)

type MealItem struct {
	ID          uuid.UUID  `json:"id"`
	MealType    string     `json:"type"`
	RecipeID    *uuid.UUID `json:"recette_id,omitempty"`
	RecipeName  string     `json:"recette"`
	PrepMinutes int        `json:"temps_preparation"`
	CookMinutes int        `json:"temps_cuisson"`
	Portions    int        `json:"portions"`
}

// TotalMinutes is prep plus cook time.
func (m MealItem) TotalMinutes() int {
	return m.PrepMinutes + m.CookMinutes
}

type ActivityItem struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"titre"`
	StartMinutes  *int      `json:"debut,omitempty"`
	EndMinutes    *int      `json:"fin,omitempty"`
	Location      string    `json:"lieu"`
	EstimatedCost float64   `json:"cout_estime"`
	ForChild      bool      `json:"pour_enfant"`
}

type CalendarEventItem struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"titre"`
	Kind         string    `json:"type"`
	StartMinutes *int      `json:"debut,omitempty"`
	EndMinutes   *int      `json:"fin,omitempty"`
	Location     string    `json:"lieu"`
	Color        string    `json:"couleur"`
}

type ProjectTaskRef struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"nom"`
	Priority string    `json:"priorite"`
	Status   string    `json:"statut"`
	DueDate  string    `json:"echeance"`
}

// Open reports whether the task still weighs on the household.
func (p ProjectTaskRef) Open() bool {
	return p.Status != StatusDone
}

type RoutineTaskRef struct {
	ID          uuid.UUID `json:"id"`
	RoutineName string    `json:"routine"`
	TimeMinutes *int      `json:"heure,omitempty"`
	Done        bool      `json:"fait"`
}

// Day is the aggregate of one calendar day. ChargeScore and Charge are always
// set together from ComputeCharge.
type Day struct {
	Date        string              `json:"date"`
	Charge      string              `json:"charge"`
	ChargeScore int                 `json:"charge_score"`
	Repas       []MealItem          `json:"repas"`
	Activites   []ActivityItem      `json:"activites"`
	Evenements  []CalendarEventItem `json:"evenements"`
	Projets     []ProjectTaskRef    `json:"projets"`
	Routines    []RoutineTaskRef    `json:"routines"`
	BudgetJour  float64             `json:"budget_jour"`
	Alertes     []string            `json:"alertes"`
	Suggestions []string            `json:"suggestions"`
}

// ChildActivities counts the activities flagged for the child.
func (d Day) ChildActivities() int {
	n := 0
	for _, a := range d.Activites {
		if a.ForChild {
			n++
		}
	}
	return n
}

type WeekStats struct {
	TotalRepas      int     `json:"total_repas"`
	TotalActivites  int     `json:"total_activites"`
	ActivitesEnfant int     `json:"activites_enfant"`
	TotalProjets    int     `json:"total_projets"`
	TotalEvenements int     `json:"total_evenements"`
	TotalRoutines   int     `json:"total_routines"`
	BudgetTotal     float64 `json:"budget_total"`
	ScoreMoyen      int     `json:"score_moyen"`
	JoursIntenses   int     `json:"jours_intenses"`
}

// Week is seven consecutive days starting on a Monday. Alertes holds the
// week-level alerts only; see OrderedAlerts for the combined list.
type Week struct {
	SemaineDebut  string         `json:"semaine_debut"`
	SemaineFin    string         `json:"semaine_fin"`
	Jours         map[string]Day `json:"jours"`
	Stats         WeekStats      `json:"stats"`
	ChargeGlobale string         `json:"charge_globale"`
	Alertes       []string       `json:"alertes"`
}

// Days returns the days in date order.
func (w *Week) Days() []Day {
	dates := make([]string, 0, len(w.Jours))
	for d := range w.Jours {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	days := make([]Day, len(dates))
	for i, d := range dates {
		days[i] = w.Jours[d]
	}
	return days
}

// OrderedAlerts lists day alerts in date order, each prefixed by its date,
// followed by the week alerts.
func (w *Week) OrderedAlerts() []string {
	var out []string
	for _, d := range w.Days() {
		for _, a := range d.Alertes {
			out = append(out, d.Date+" : "+a)
		}
	}
	return append(out, w.Alertes...)
}
