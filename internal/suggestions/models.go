package suggestions

import (
	"errors"
	"fmt"
)

var ErrInvalidConstraints = errors.New("invalid constraints")

const (
	EnergyLow    = "low"
	EnergyMedium = "medium"
	EnergyHigh   = "high"
)

// Reasons a proposal is unavailable.
const (
	ReasonRateLimited     = "rate_limited"
	ReasonTimeout         = "timeout"
	ReasonProviderError   = "provider_error"
	ReasonInvalidResponse = "invalid_response"
)

type Constraints struct {
	BudgetMax   float64  `json:"budget_max"`
	EnergyLevel string   `json:"energy_level"`
	Objectives  []string `json:"objectives"`
}

func (c Constraints) Validate() error {
	if c.BudgetMax < 0 {
		return fmt.Errorf("%w: budget_max must be >= 0", ErrInvalidConstraints)
	}
	switch normalizeEnergy(c.EnergyLevel) {
	case EnergyLow, EnergyMedium, EnergyHigh:
	default:
		return fmt.Errorf("%w: energy_level must be low, medium or high", ErrInvalidConstraints)
	}
	if len(c.Objectives) > 20 {
		return fmt.Errorf("%w: at most 20 objectives", ErrInvalidConstraints)
	}
	return nil
}

// HouseholdContext carries the facts the plan is tailored to.
type HouseholdContext struct {
	ChildName      string   `json:"child_name"`
	ChildAgeMonths int      `json:"child_age_months"`
	Adults         int      `json:"adults"`
	DietaryNotes   []string `json:"dietary_notes"`
}

type ProposedMeal struct {
	Date        string `json:"date"`
	MealType    string `json:"meal_type"`
	RecipeName  string `json:"recipe_name"`
	PrepMinutes int    `json:"prep_minutes"`
}

type ProposedActivity struct {
	Date          string  `json:"date"`
	Title         string  `json:"title"`
	EstimatedCost float64 `json:"estimated_cost"`
	ForChild      bool    `json:"for_child"`
}

type ProposedProject struct {
	Name     string `json:"name"`
	Priority string `json:"priority"`
	Date     string `json:"date"`
}

// Proposal is an AI-suggested week. It is never applied automatically.
type Proposal struct {
	WeekStart  string             `json:"week_start"`
	Meals      []ProposedMeal     `json:"meals"`
	Activities []ProposedActivity `json:"activities"`
	Projects   []ProposedProject  `json:"projects"`
	Rationale  string             `json:"rationale"`
	Reasons    []string           `json:"reasons"`
}

// Result is either an available proposal or the reason there is none.
type Result struct {
	Available bool      `json:"available"`
	Proposal  *Proposal `json:"proposal,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Cached    bool      `json:"cached"`
}

func unavailable(reason string) Result {
	return Result{Available: false, Reason: reason}
}

type GenerateRequest struct {
	Constraints Constraints       `json:"constraints"`
	Household   *HouseholdContext `json:"household,omitempty"`
}
