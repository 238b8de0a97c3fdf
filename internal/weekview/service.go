package weekview

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fdg312/family-hub/internal/telemetry"
)

// Service builds week views from storage. It performs no writes.
type Service struct {
	loaders  *Loaders
	weights  ChargeWeights
	rules    AlertRules
	location *time.Location
	now      func() time.Time
	metrics  *telemetry.Metrics
	logger   logrus.FieldLogger
}

// NewService creates a week view service. A nil location means UTC.
func NewService(loaders *Loaders, weights ChargeWeights, rules AlertRules, location *time.Location, metrics *telemetry.Metrics, logger logrus.FieldLogger) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		loaders:  loaders,
		weights:  weights,
		rules:    rules,
		location: location,
		now:      time.Now,
		metrics:  metrics,
		logger:   logger,
	}
}

// BuildWeek loads and assembles the week containing start.
func (s *Service) BuildWeek(ctx context.Context, start time.Time) (*Week, error) {
	began := time.Now()
	monday := MondayOf(start)
	from := FormatDate(monday)
	to := FormatDate(monday.AddDate(0, 0, 6))

	items, err := s.loaders.Load(ctx, from, to)
	if err != nil {
		s.metrics.ObserveBuild(time.Since(began), err)
		s.logger.WithError(err).WithField("week", from).Error("week build failed")
		return nil, err
	}

	today := dateOnly(s.now().In(s.location))
	week := AssembleWeek(monday, items, s.weights, s.rules, today)
	s.metrics.ObserveBuild(time.Since(began), nil)
	return week, nil
}

// AssembleWeek runs the pure part of a build: days, charge, day alerts and
// suggestions, statistics, week alerts.
func AssembleWeek(monday time.Time, items *Items, weights ChargeWeights, rules AlertRules, today time.Time) *Week {
	days := BuildDays(monday, items)

	for i := range days {
		d := &days[i]
		d.ChargeScore, d.Charge = ComputeCharge(d.Repas, d.Activites, d.Projets, d.Routines, weights)
	}
	for i := range days {
		days[i].Alertes = DetectDayAlerts(days[i], rules, today)
		days[i].Suggestions = SuggestForDay(days[i], rules, today)
	}

	stats := computeStats(days, weights)

	week := &Week{
		SemaineDebut:  days[0].Date,
		SemaineFin:    days[6].Date,
		Jours:         make(map[string]Day, len(days)),
		Stats:         stats,
		ChargeGlobale: LabelFor(stats.ScoreMoyen, weights),
		Alertes:       DetectWeekAlerts(stats, rules),
	}
	for _, d := range days {
		week.Jours[d.Date] = d
	}
	return week
}

func computeStats(days []Day, weights ChargeWeights) WeekStats {
	var st WeekStats
	totalScore := 0
	for _, d := range days {
		st.TotalRepas += len(d.Repas)
		st.TotalActivites += len(d.Activites)
		st.ActivitesEnfant += d.ChildActivities()
		st.TotalProjets += len(d.Projets)
		st.TotalEvenements += len(d.Evenements)
		st.TotalRoutines += len(d.Routines)
		st.BudgetTotal += d.BudgetJour
		totalScore += d.ChargeScore
		if LabelFor(d.ChargeScore, weights) == LabelIntense {
			st.JoursIntenses++
		}
	}
	if n := len(days); n > 0 {
		// mean rounded half up
		st.ScoreMoyen = (2*totalScore + n) / (2 * n)
	}
	return st
}
