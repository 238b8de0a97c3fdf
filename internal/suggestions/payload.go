package suggestions

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/fdg312/family-hub/internal/weekview"
)

// Instructions sent with every request. The answer must be a Proposal document.
const Instructions = `Tu aides un foyer à équilibrer sa semaine. Réponds uniquement par un objet JSON ` +
	`{"meals":[{"date","meal_type","recipe_name","prep_minutes"}],` +
	`"activities":[{"date","title","estimated_cost","for_child"}],` +
	`"projects":[{"name","priority","date"}],"rationale":"...","reasons":["..."]} ` +
	`en respectant budget_max, energy_level et les objectifs du document fourni.`

// Payload is the normalized request document. Equal inputs always marshal to
// the same bytes.
type Payload struct {
	WeekStart   string           `json:"week_start"`
	WeekEnd     string           `json:"week_end"`
	Constraints Constraints      `json:"constraints"`
	Household   HouseholdContext `json:"household"`
	CurrentWeek []DaySnapshot    `json:"current_week,omitempty"`
}

// DaySnapshot summarizes one day of the currently planned week.
type DaySnapshot struct {
	Date   string `json:"date"`
	Charge string `json:"charge"`
	Score  int    `json:"score"`
	Alerts int    `json:"alerts"`
}

// BuildPayload normalizes the request. week may be nil.
func BuildPayload(weekStart time.Time, c Constraints, hc HouseholdContext, week *weekview.Week) Payload {
	monday := weekview.MondayOf(weekStart)

	p := Payload{
		WeekStart: weekview.FormatDate(monday),
		WeekEnd:   weekview.FormatDate(monday.AddDate(0, 0, 6)),
		Constraints: Constraints{
			BudgetMax:   math.Round(c.BudgetMax*100) / 100,
			EnergyLevel: normalizeEnergy(c.EnergyLevel),
			Objectives:  dedupe(c.Objectives),
		},
		Household: HouseholdContext{
			ChildName:      strings.TrimSpace(hc.ChildName),
			ChildAgeMonths: hc.ChildAgeMonths,
			Adults:         hc.Adults,
			DietaryNotes:   sortedNotes(hc.DietaryNotes),
		},
	}

	if week != nil {
		for _, d := range week.Days() {
			p.CurrentWeek = append(p.CurrentWeek, DaySnapshot{
				Date:   d.Date,
				Charge: d.Charge,
				Score:  d.ChargeScore,
				Alerts: len(d.Alertes),
			})
		}
	}
	return p
}

// Canonical returns the JSON encoding used both as request body and cache key
// material.
func (p Payload) Canonical() ([]byte, error) {
	return json.Marshal(p)
}

// CacheKey derives the proposal cache key from the canonical payload.
func CacheKey(canonical []byte) string {
	sum := sha256.Sum256(canonical)
	return "proposal:" + hex.EncodeToString(sum[:])
}

func normalizeEnergy(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return EnergyMedium
	}
	return s
}

// dedupe trims, drops empties and removes case-insensitive duplicates,
// keeping first occurrences in order.
func dedupe(items []string) []string {
	out := []string{}
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		key := strings.ToLower(it)
		if it == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, it)
	}
	return out
}

func sortedNotes(notes []string) []string {
	out := dedupe(notes)
	sort.Strings(out)
	return out
}
