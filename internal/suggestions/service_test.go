package suggestions

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fdg312/family-hub/internal/ai"
	"github.com/fdg312/family-hub/internal/cache"
	"github.com/fdg312/family-hub/internal/logging"
	"github.com/fdg312/family-hub/internal/weekview"
)

var monday = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type fakeProvider struct {
	calls   atomic.Int32
	content string
	err     error
	block   bool
	last    ai.CompletionRequest
}

func (f *fakeProvider) Complete(ctx context.Context, req ai.CompletionRequest) (ai.CompletionResponse, error) {
	f.calls.Add(1)
	f.last = req
	if f.block {
		<-ctx.Done()
		return ai.CompletionResponse{}, ctx.Err()
	}
	if f.err != nil {
		return ai.CompletionResponse{}, f.err
	}
	return ai.CompletionResponse{Content: f.content}, nil
}

func (f *fakeProvider) Close() error { return nil }

type fakeWeeks struct {
	week *weekview.Week
	err  error
}

func (f *fakeWeeks) GetOrBuild(ctx context.Context, start time.Time) (*weekview.Week, error) {
	return f.week, f.err
}

const validAnswer = "```json\n{\"meals\":[{\"date\":\"2024-01-01\",\"meal_type\":\"dinner\",\"recipe_name\":\"Soupe\",\"prep_minutes\":20}],\"rationale\":\"Semaine calme\",\"reasons\":[\"budget\"]}\n```"

func newTestGenerator(p ai.Provider, opts Options) *Generator {
	return NewGenerator(p, cache.NewMemory(time.Minute), nil, opts, nil, logging.Discard())
}

func constraints() Constraints {
	return Constraints{BudgetMax: 80, EnergyLevel: "medium", Objectives: []string{"plus de sorties"}}
}

func TestGenerateReturnsProposalAndCaches(t *testing.T) {
	p := &fakeProvider{content: validAnswer}
	g := newTestGenerator(p, DefaultOptions())
	ctx := context.Background()

	res, err := g.Generate(ctx, monday.AddDate(0, 0, 2), constraints(), HouseholdContext{ChildName: "Léa"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !res.Available || res.Proposal == nil || res.Cached {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Proposal.WeekStart != "2024-01-01" || len(res.Proposal.Meals) != 1 || res.Proposal.Projects == nil {
		t.Fatalf("unexpected proposal %+v", res.Proposal)
	}

	again, err := g.Generate(ctx, monday, constraints(), HouseholdContext{ChildName: "Léa"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !again.Cached || p.calls.Load() != 1 {
		t.Fatalf("expected cache hit, provider calls=%d cached=%v", p.calls.Load(), again.Cached)
	}

	other := constraints()
	other.EnergyLevel = "low"
	if _, err := g.Generate(ctx, monday, other, HouseholdContext{ChildName: "Léa"}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if p.calls.Load() != 2 {
		t.Fatalf("different constraints must not share a cache entry")
	}
}

func TestGenerateTimeoutIsUnavailable(t *testing.T) {
	p := &fakeProvider{block: true}
	opts := DefaultOptions()
	opts.Timeout = 30 * time.Millisecond
	g := newTestGenerator(p, opts)

	began := time.Now()
	res, err := g.Generate(context.Background(), monday, constraints(), HouseholdContext{})
	if err != nil {
		t.Fatalf("timeout must not surface as an error: %v", err)
	}
	if res.Available || res.Reason != ReasonTimeout {
		t.Fatalf("expected timeout result, got %+v", res)
	}
	if time.Since(began) > time.Second {
		t.Fatal("timeout not enforced")
	}
}

func TestGenerateProviderErrorIsUnavailable(t *testing.T) {
	g := newTestGenerator(&fakeProvider{err: errors.New("503 from upstream")}, DefaultOptions())

	res, err := g.Generate(context.Background(), monday, constraints(), HouseholdContext{})
	if err != nil || res.Available || res.Reason != ReasonProviderError {
		t.Fatalf("expected provider_error result, got %+v, %v", res, err)
	}
}

func TestGenerateInvalidResponseIsUnavailable(t *testing.T) {
	for _, content := range []string{"désolé, je ne peux pas", "{}", "{not json}"} {
		g := newTestGenerator(&fakeProvider{content: content}, DefaultOptions())
		res, err := g.Generate(context.Background(), monday, constraints(), HouseholdContext{})
		if err != nil || res.Available || res.Reason != ReasonInvalidResponse {
			t.Fatalf("content %q: expected invalid_response, got %+v, %v", content, res, err)
		}
	}
}

func TestGenerateRateLimit(t *testing.T) {
	p := &fakeProvider{content: validAnswer}
	opts := DefaultOptions()
	opts.RateLimitCalls = 2
	opts.RateLimitWindow = time.Hour
	g := newTestGenerator(p, opts)
	ctx := context.Background()

	var last Result
	for i := 0; i < 3; i++ {
		c := constraints()
		c.BudgetMax = float64(10 * (i + 1))
		res, err := g.Generate(ctx, monday, c, HouseholdContext{})
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		last = res
	}
	if last.Available || last.Reason != ReasonRateLimited {
		t.Fatalf("third distinct call should be rate limited, got %+v", last)
	}
	if p.calls.Load() != 2 {
		t.Fatalf("provider called %d times", p.calls.Load())
	}

	// cache hits do not consume tokens
	c := constraints()
	c.BudgetMax = 10
	res, _ := g.Generate(ctx, monday, c, HouseholdContext{})
	if !res.Available || !res.Cached {
		t.Fatalf("expected cached proposal while rate limited, got %+v", res)
	}
}

func TestGenerateRejectsInvalidConstraints(t *testing.T) {
	p := &fakeProvider{content: validAnswer}
	g := newTestGenerator(p, DefaultOptions())

	_, err := g.Generate(context.Background(), monday, Constraints{EnergyLevel: "extreme"}, HouseholdContext{})
	if !errors.Is(err, ErrInvalidConstraints) {
		t.Fatalf("expected ErrInvalidConstraints, got %v", err)
	}
	_, err = g.Generate(context.Background(), monday, Constraints{BudgetMax: -1}, HouseholdContext{})
	if !errors.Is(err, ErrInvalidConstraints) {
		t.Fatalf("expected ErrInvalidConstraints, got %v", err)
	}
	if p.calls.Load() != 0 {
		t.Fatal("provider must not be called for invalid constraints")
	}
}

func TestGenerateSendsWeekSnapshot(t *testing.T) {
	week := weekview.AssembleWeek(monday, nil, weekview.DefaultChargeWeights(), weekview.DefaultAlertRules(), monday)
	p := &fakeProvider{content: validAnswer}
	g := NewGenerator(p, cache.NewMemory(time.Minute), &fakeWeeks{week: week}, DefaultOptions(), nil, logging.Discard())

	if _, err := g.Generate(context.Background(), monday, constraints(), HouseholdContext{}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(string(p.last.Payload), `"current_week":[{"date":"2024-01-01","charge":"faible"`) {
		t.Fatalf("snapshot missing from payload: %s", p.last.Payload)
	}

	g = NewGenerator(p, cache.NewMemory(time.Minute), &fakeWeeks{err: weekview.ErrDataAccess}, DefaultOptions(), nil, logging.Discard())
	res, err := g.Generate(context.Background(), monday, constraints(), HouseholdContext{})
	if err != nil || !res.Available {
		t.Fatalf("week failure must not block proposals: %+v, %v", res, err)
	}
}

func TestWithMockProviderEndToEnd(t *testing.T) {
	g := newTestGenerator(ai.NewMockProvider(), DefaultOptions())

	res, err := g.Generate(context.Background(), monday, constraints(), HouseholdContext{ChildName: "Léa"})
	if err != nil || !res.Available {
		t.Fatalf("mock provider should produce a proposal: %+v, %v", res, err)
	}
	if len(res.Proposal.Meals) != 7 || len(res.Proposal.Activities) != 2 {
		t.Fatalf("unexpected mock proposal %+v", res.Proposal)
	}
}

func TestHandleGenerate(t *testing.T) {
	g := newTestGenerator(&fakeProvider{err: errors.New("down")}, DefaultOptions())
	h := NewHandler(g, HouseholdContext{ChildName: "Léa"})
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/weeks/{start}/proposal", h.HandleGenerate)

	tests := []struct {
		name     string
		path     string
		body     string
		wantCode int
		wantBody string
	}{
		{"unavailable is 200", "/v1/weeks/2024-01-03/proposal", `{"constraints":{"budget_max":50,"energy_level":"low"}}`, http.StatusOK, `"available":false`},
		{"invalid constraints", "/v1/weeks/2024-01-03/proposal", `{"constraints":{"energy_level":"max"}}`, http.StatusBadRequest, "invalid_constraints"},
		{"invalid json", "/v1/weeks/2024-01-03/proposal", `{`, http.StatusBadRequest, "invalid_json"},
		{"invalid date", "/v1/weeks/tomorrow/proposal", `{}`, http.StatusBadRequest, "invalid_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body)))
			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Fatalf("body %s does not contain %s", rec.Body.String(), tt.wantBody)
			}
		})
	}
}
