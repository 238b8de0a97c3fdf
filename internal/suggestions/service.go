package suggestions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fdg312/family-hub/internal/ai"
	"github.com/fdg312/family-hub/internal/cache"
	"github.com/fdg312/family-hub/internal/config"
	"github.com/fdg312/family-hub/internal/telemetry"
	"github.com/fdg312/family-hub/internal/weekview"
)

// WeekSource provides the current week snapshot sent along with a request.
type WeekSource interface {
	GetOrBuild(ctx context.Context, start time.Time) (*weekview.Week, error)
}

type Options struct {
	TTL             time.Duration
	Timeout         time.Duration
	RateLimitCalls  int
	RateLimitWindow time.Duration
	MaxTokens       int
}

func DefaultOptions() Options {
	return Options{
		TTL:             60 * time.Minute,
		Timeout:         20 * time.Second,
		RateLimitCalls:  10,
		RateLimitWindow: time.Hour,
	}
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		TTL:             time.Duration(cfg.ProposalCacheTTLMinutes) * time.Minute,
		Timeout:         time.Duration(cfg.AITimeoutSeconds) * time.Second,
		RateLimitCalls:  cfg.AIRateLimitCalls,
		RateLimitWindow: time.Duration(cfg.AIRateLimitWindowSeconds) * time.Second,
		MaxTokens:       cfg.AIMaxOutputTokens,
	}
}

// Generator requests week proposals from an AI provider. Failures never
// surface as errors; they produce an unavailable Result.
type Generator struct {
	provider ai.Provider
	store    cache.Store
	weeks    WeekSource
	limiter  *callLimiter
	now      func() time.Time
	opts     Options
	metrics  *telemetry.Metrics
	logger   logrus.FieldLogger
}

// NewGenerator creates a generator. weeks may be nil, in which case requests
// carry no current week snapshot.
func NewGenerator(provider ai.Provider, store cache.Store, weeks WeekSource, opts Options, metrics *telemetry.Metrics, logger logrus.FieldLogger) *Generator {
	def := DefaultOptions()
	if opts.TTL <= 0 {
		opts.TTL = def.TTL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	if opts.RateLimitCalls <= 0 {
		opts.RateLimitCalls = def.RateLimitCalls
	}
	if opts.RateLimitWindow <= 0 {
		opts.RateLimitWindow = def.RateLimitWindow
	}

	return &Generator{
		provider: provider,
		store:    store,
		weeks:    weeks,
		limiter:  newCallLimiter(opts.RateLimitCalls, opts.RateLimitWindow),
		now:      time.Now,
		opts:     opts,
		metrics:  metrics,
		logger:   logger,
	}
}

// Generate returns a proposal for the week containing weekStart. The only
// error is ErrInvalidConstraints.
func (g *Generator) Generate(ctx context.Context, weekStart time.Time, c Constraints, hc HouseholdContext) (Result, error) {
	if err := c.Validate(); err != nil {
		return Result{}, err
	}

	var snapshot *weekview.Week
	if g.weeks != nil {
		week, err := g.weeks.GetOrBuild(ctx, weekStart)
		if err != nil {
			g.logger.WithError(err).Warn("proposal: current week unavailable, sending request without snapshot")
		} else {
			snapshot = week
		}
	}

	payload := BuildPayload(weekStart, c, hc, snapshot)
	canonical, err := payload.Canonical()
	if err != nil {
		g.logger.WithError(err).Error("proposal: failed to encode payload")
		return g.fail(ReasonProviderError), nil
	}
	key := CacheKey(canonical)
	log := g.logger.WithFields(logrus.Fields{"week": payload.WeekStart, "key": key})

	if cached, ok := g.lookup(ctx, key, log); ok {
		g.metrics.Proposal("cache_hit")
		return Result{Available: true, Proposal: cached, Cached: true}, nil
	}

	if !g.limiter.allow(g.now()) {
		log.Warn("proposal: rate limit exhausted")
		return g.fail(ReasonRateLimited), nil
	}

	content, err := g.complete(ctx, canonical)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			log.Warn("proposal: provider timed out")
			return g.fail(ReasonTimeout), nil
		}
		log.WithError(err).Warn("proposal: provider failed")
		return g.fail(ReasonProviderError), nil
	}

	proposal, err := ParseProposal(content)
	if err != nil {
		log.WithError(err).Warn("proposal: unusable provider response")
		return g.fail(ReasonInvalidResponse), nil
	}
	proposal.WeekStart = payload.WeekStart

	if encoded, err := json.Marshal(proposal); err == nil {
		if err := g.store.Set(ctx, key, encoded, g.opts.TTL); err != nil {
			log.WithError(err).Warn("proposal: cache write failed")
		}
	}

	g.metrics.Proposal("generated")
	return Result{Available: true, Proposal: proposal}, nil
}

func (g *Generator) fail(reason string) Result {
	g.metrics.Proposal(reason)
	return unavailable(reason)
}

func (g *Generator) lookup(ctx context.Context, key string, log logrus.FieldLogger) (*Proposal, bool) {
	raw, err := g.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			log.WithError(err).Warn("proposal: cache read failed")
		}
		return nil, false
	}
	var p Proposal
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false
	}
	return &p, true
}

// complete calls the provider under the configured timeout. The call runs in
// its own goroutine so a provider ignoring ctx cannot hold the caller.
func (g *Generator) complete(ctx context.Context, canonical []byte) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	type outcome struct {
		resp ai.CompletionResponse
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		resp, err := g.provider.Complete(callCtx, ai.CompletionRequest{
			Instructions: Instructions,
			Payload:      canonical,
			MaxTokens:    g.opts.MaxTokens,
		})
		done <- outcome{resp, err}
	}()

	select {
	case <-callCtx.Done():
		return "", callCtx.Err()
	case out := <-done:
		if out.err != nil {
			return "", out.err
		}
		return out.resp.Content, nil
	}
}

// ParseProposal decodes a provider answer, tolerating markdown code fences
// and text around the JSON object.
func ParseProposal(content string) (*Proposal, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var p Proposal
	if err := json.Unmarshal([]byte(content[start:end+1]), &p); err != nil {
		return nil, fmt.Errorf("decode proposal: %w", err)
	}
	if strings.TrimSpace(p.Rationale) == "" && len(p.Meals) == 0 && len(p.Activities) == 0 && len(p.Projects) == 0 {
		return nil, fmt.Errorf("empty proposal")
	}

	if p.Meals == nil {
		p.Meals = []ProposedMeal{}
	}
	if p.Activities == nil {
		p.Activities = []ProposedActivity{}
	}
	if p.Projects == nil {
		p.Projects = []ProposedProject{}
	}
	if p.Reasons == nil {
		p.Reasons = []string{}
	}
	return &p, nil
}
