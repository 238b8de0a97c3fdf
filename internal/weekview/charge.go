package weekview

import "github.com/fdg312/family-hub/internal/config"

// ChargeWeights are the tunable constants of the workload score.
type ChargeWeights struct {
	// MealMinutesDivisor scales total prep+cook minutes down to points.
	MealMinutesDivisor int
	ActivityWeight     int
	// ProjectWeights by priority; only tasks not done count.
	ProjectWeights map[string]int
	// RoutineWeight per routine task not done.
	RoutineWeight int

	// Band boundaries: score < NormalFrom is faible, score >= IntenseFrom is intense.
	NormalFrom  int
	IntenseFrom int
}

// DefaultChargeWeights puts a day with three 50-minute meals and nothing else
// in the faible band, and two activities plus an urgent project on top of that
// in the intense band.
func DefaultChargeWeights() ChargeWeights {
	return ChargeWeights{
		MealMinutesDivisor: 5,
		ActivityWeight:     15,
		ProjectWeights: map[string]int{
			PriorityLow:    5,
			PriorityMedium: 10,
			PriorityHigh:   15,
			PriorityUrgent: 25,
		},
		RoutineWeight: 3,
		NormalFrom:    34,
		IntenseFrom:   70,
	}
}

// WeightsFromConfig overrides the defaults with the configured values.
// Zero project weights keep their default.
func WeightsFromConfig(cfg config.ChargeConfig) ChargeWeights {
	w := DefaultChargeWeights()
	if cfg.MealMinutesDivisor > 0 {
		w.MealMinutesDivisor = cfg.MealMinutesDivisor
	}
	if cfg.ActivityWeight >= 0 {
		w.ActivityWeight = cfg.ActivityWeight
	}
	if cfg.RoutineWeight >= 0 {
		w.RoutineWeight = cfg.RoutineWeight
	}
	for priority, weight := range map[string]int{
		PriorityLow:    cfg.ProjectWeightLow,
		PriorityMedium: cfg.ProjectWeightMedium,
		PriorityHigh:   cfg.ProjectWeightHigh,
		PriorityUrgent: cfg.ProjectWeightUrgent,
	} {
		if weight > 0 {
			w.ProjectWeights[priority] = weight
		}
	}
	// bands are only taken as a consistent pair
	if cfg.NormalFrom > 0 && cfg.NormalFrom < cfg.IntenseFrom && cfg.IntenseFrom <= 100 {
		w.NormalFrom = cfg.NormalFrom
		w.IntenseFrom = cfg.IntenseFrom
	}
	return w
}

// ComputeCharge returns the workload score in [0, 100] and its label.
func ComputeCharge(meals []MealItem, activities []ActivityItem, projects []ProjectTaskRef, routines []RoutineTaskRef, w ChargeWeights) (int, string) {
	divisor := w.MealMinutesDivisor
	if divisor <= 0 {
		divisor = 1
	}

	minutes := 0
	for _, m := range meals {
		minutes += m.TotalMinutes()
	}
	raw := minutes / divisor

	raw += len(activities) * w.ActivityWeight

	for _, p := range projects {
		if p.Open() {
			raw += w.ProjectWeights[p.Priority]
		}
	}

	for _, r := range routines {
		if !r.Done {
			raw += w.RoutineWeight
		}
	}

	score := clamp(raw, 0, 100)
	return score, LabelFor(score, w)
}

// LabelFor maps a score to its band. Days and the week share this mapping.
func LabelFor(score int, w ChargeWeights) string {
	switch {
	case score >= w.IntenseFrom:
		return LabelIntense
	case score >= w.NormalFrom:
		return LabelNormal
	default:
		return LabelFaible
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
