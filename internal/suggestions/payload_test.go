package suggestions

import (
	"bytes"
	"testing"
)

func TestBuildPayloadIsDeterministic(t *testing.T) {
	a := BuildPayload(monday.AddDate(0, 0, 4),
		Constraints{BudgetMax: 49.999, EnergyLevel: " LOW ", Objectives: []string{"Sport", " sport ", "", "Lecture"}},
		HouseholdContext{ChildName: " Léa ", DietaryNotes: []string{"sans porc", "végétarien le lundi"}},
		nil)
	b := BuildPayload(monday,
		Constraints{BudgetMax: 50, EnergyLevel: "low", Objectives: []string{"Sport", "Lecture"}},
		HouseholdContext{ChildName: "Léa", DietaryNotes: []string{"végétarien le lundi", "sans porc"}},
		nil)

	ca, err := a.Canonical()
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	cb, err := b.Canonical()
	if err != nil {
		t.Fatalf("Canonical: %v", err)
	}
	if !bytes.Equal(ca, cb) {
		t.Fatalf("equivalent requests differ:\n%s\n%s", ca, cb)
	}
	if CacheKey(ca) != CacheKey(cb) {
		t.Fatal("equivalent requests must share a cache key")
	}
	if a.WeekStart != "2024-01-01" || a.WeekEnd != "2024-01-07" {
		t.Fatalf("week not normalized: %s..%s", a.WeekStart, a.WeekEnd)
	}
}

func TestCacheKeyVariesWithConstraints(t *testing.T) {
	base := BuildPayload(monday, Constraints{BudgetMax: 50, EnergyLevel: "low"}, HouseholdContext{}, nil)
	other := BuildPayload(monday, Constraints{BudgetMax: 60, EnergyLevel: "low"}, HouseholdContext{}, nil)

	cb, _ := base.Canonical()
	co, _ := other.Canonical()
	if CacheKey(cb) == CacheKey(co) {
		t.Fatal("different budgets must not share a cache key")
	}
}

func TestParseProposal(t *testing.T) {
	p, err := ParseProposal("Voici :\n" + validAnswer)
	if err != nil {
		t.Fatalf("ParseProposal: %v", err)
	}
	if p.Rationale != "Semaine calme" || len(p.Meals) != 1 || p.Activities == nil {
		t.Fatalf("unexpected proposal %+v", p)
	}
}
