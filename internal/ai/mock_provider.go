package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// MockProvider answers with a deterministic plan derived from the payload.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

type mockPayload struct {
	WeekStart   string `json:"week_start"`
	Constraints struct {
		BudgetMax   float64  `json:"budget_max"`
		EnergyLevel string   `json:"energy_level"`
		Objectives  []string `json:"objectives"`
	} `json:"constraints"`
	Household struct {
		ChildName string `json:"child_name"`
	} `json:"household"`
	CurrentWeek []struct {
		Date   string `json:"date"`
		Charge string `json:"charge"`
		Score  int    `json:"score"`
	} `json:"current_week"`
}

type mockMeal struct {
	Date        string `json:"date"`
	MealType    string `json:"meal_type"`
	RecipeName  string `json:"recipe_name"`
	PrepMinutes int    `json:"prep_minutes"`
}

type mockActivity struct {
	Date          string  `json:"date"`
	Title         string  `json:"title"`
	EstimatedCost float64 `json:"estimated_cost"`
	ForChild      bool    `json:"for_child"`
}

type mockProject struct {
	Name     string `json:"name"`
	Priority string `json:"priority"`
	Date     string `json:"date"`
}

type mockProposal struct {
	Meals      []mockMeal     `json:"meals"`
	Activities []mockActivity `json:"activities"`
	Projects   []mockProject  `json:"projects"`
	Rationale  string         `json:"rationale"`
	Reasons    []string       `json:"reasons"`
}

var (
	mockRecipes    = []string{"Soupe de légumes", "Gratin de pâtes", "Poulet rôti", "Omelette aux herbes", "Curry de lentilles", "Pizza maison", "Pot-au-feu"}
	mockActivities = []string{"Parc et toboggan", "Bibliothèque, heure du conte", "Balade en forêt"}
	activityDays   = []int{2, 5, 6}
)

func (p *MockProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return CompletionResponse{}, err
	}

	var in mockPayload
	if err := json.Unmarshal(req.Payload, &in); err != nil {
		return CompletionResponse{}, fmt.Errorf("mock provider: invalid payload: %w", err)
	}
	start, err := time.Parse("2006-01-02", in.WeekStart)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("mock provider: invalid week_start: %w", err)
	}

	prep, nActivities := 35, 2
	switch in.Constraints.EnergyLevel {
	case "low":
		prep, nActivities = 20, 1
	case "high":
		prep, nActivities = 50, 3
	}

	out := mockProposal{Meals: []mockMeal{}, Activities: []mockActivity{}, Projects: []mockProject{}, Reasons: []string{}}
	for i := 0; i < 7; i++ {
		out.Meals = append(out.Meals, mockMeal{
			Date:        start.AddDate(0, 0, i).Format("2006-01-02"),
			MealType:    "dinner",
			RecipeName:  mockRecipes[i],
			PrepMinutes: prep,
		})
	}

	costEach := 0.0
	if in.Constraints.BudgetMax > 0 {
		costEach = math.Min(30, math.Floor(in.Constraints.BudgetMax/float64(nActivities)))
	}
	for i := 0; i < nActivities; i++ {
		out.Activities = append(out.Activities, mockActivity{
			Date:          start.AddDate(0, 0, activityDays[i]).Format("2006-01-02"),
			Title:         mockActivities[i],
			EstimatedCost: costEach,
			ForChild:      true,
		})
	}

	for _, d := range in.CurrentWeek {
		if d.Charge == "intense" {
			out.Projects = append(out.Projects, mockProject{
				Name:     "Alléger la journée du " + d.Date,
				Priority: "medium",
				Date:     d.Date,
			})
			out.Reasons = append(out.Reasons, fmt.Sprintf("Le %s est déjà chargé (%d/100)", d.Date, d.Score))
		}
	}
	for _, o := range in.Constraints.Objectives {
		out.Reasons = append(out.Reasons, "Objectif pris en compte : "+o)
	}

	child := in.Household.ChildName
	if child == "" {
		child = "l'enfant"
	}
	out.Rationale = fmt.Sprintf(
		"Semaine du %s : repas simples (%d min), %d sortie(s) pour %s, budget activités %.0f €.",
		in.WeekStart, prep, nActivities, child, costEach*float64(nActivities),
	)

	content, err := json.Marshal(out)
	if err != nil {
		return CompletionResponse{}, err
	}
	return CompletionResponse{Content: string(content), Model: "mock"}, nil
}

func (p *MockProvider) Close() error {
	return nil
}
