// Package augment optionally consults an external severity estimate and
// raises a rule-based urgency by one level when the estimate is high.
// It never lowers urgency and never fails a triage: any problem falls back
// to the rule-based result.
package augment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/symptriage/internal/cache"
	"github.com/ppiankov/symptriage/internal/llm"
	"github.com/ppiankov/symptriage/internal/model"
	"github.com/ppiankov/symptriage/internal/worker"
)

// SeverityAugmenter may raise the urgency of a rule-based result
type SeverityAugmenter interface {
	Augment(ctx context.Context, text string, base model.TriageResult) model.TriageResult
}

// NullAugmenter leaves every result unchanged
type NullAugmenter struct{}

// Augment returns base as is
func (NullAugmenter) Augment(_ context.Context, _ string, base model.TriageResult) model.TriageResult {
	return base
}

// Outcome labels what happened to one augmentation attempt
type Outcome string

const (
	OutcomeSkipped   Outcome = "skipped"   // URGENT or empty input, no call made
	OutcomeUpgraded  Outcome = "upgraded"  // Score above threshold raised urgency
	OutcomeUnchanged Outcome = "unchanged" // Score at or below threshold
	OutcomeFailed    Outcome = "failed"    // Timeout, transport error or malformed score
)

// Hooks receive augmentation events; nil funcs are ignored
type Hooks struct {
	OnCall    func(provider string, seconds float64, cached bool, err error)
	OnOutcome func(provider string, outcome Outcome)
}

// ErrScoreRange marks a score outside [0,1]
var ErrScoreRange = errors.New("severity score out of range")

// Options tune a RemoteAugmenter
type Options struct {
	Threshold        float64
	SuggestThreshold float64
	Timeout          time.Duration
	Labels           []string // Lexicon symptom names offered to the provider
	Model            string   // Part of the cache key; empty means the provider default
	MaxTokens        int
}

// RemoteAugmenter asks an inference provider for an independent severity score
type RemoteAugmenter struct {
	provider llm.Provider
	cache    cache.Store
	limiter  *worker.Limiter
	opts     Options
	logger   *slog.Logger
	hooks    Hooks
}

// NewRemoteAugmenter wires a provider with optional cache and limiter (either may be nil)
func NewRemoteAugmenter(provider llm.Provider, c cache.Store, limiter *worker.Limiter, opts Options, logger *slog.Logger, hooks Hooks) *RemoteAugmenter {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	opts.Labels = append([]string(nil), opts.Labels...)
	return &RemoteAugmenter{
		provider: provider,
		cache:    c,
		limiter:  limiter,
		opts:     opts,
		logger:   logger,
		hooks:    hooks,
	}
}

// Augment returns base, possibly raised one level. Failures are logged and
// yield base with a rule-based source.
func (a *RemoteAugmenter) Augment(ctx context.Context, text string, base model.TriageResult) model.TriageResult {
	name := a.provider.Name()

	if base.Urgency == model.UrgencyUrgent || strings.TrimSpace(text) == "" {
		a.outcome(name, OutcomeSkipped)
		return base
	}

	resp, err := a.score(ctx, text)
	if err != nil {
		a.logger.Warn("severity augmentation failed, using rule-based result",
			"provider", name, "error", err)
		a.outcome(name, OutcomeFailed)
		base.Source = model.SourceRuleBased
		base.Augmentation = nil
		return base
	}

	result := base
	result.Suggested = a.suggest(resp.Labels, base.Symptoms)

	if resp.Score > a.opts.Threshold && (base.Urgency == model.UrgencyRoutine || base.Urgency == model.UrgencySoon) {
		result.Urgency = base.Urgency.Raise()
		result.Source = model.SourceAIAugmented
		result.Augmentation = &model.Augmentation{
			Provider:  name,
			Model:     resp.Model,
			Score:     resp.Score,
			Threshold: a.opts.Threshold,
			From:      base.Urgency,
		}
		a.logger.Debug("severity estimate raised urgency",
			"provider", name, "score", resp.Score, "from", base.Urgency, "to", result.Urgency)
		a.outcome(name, OutcomeUpgraded)
		return result
	}

	a.outcome(name, OutcomeUnchanged)
	return result
}

// score returns a validated response from cache or the provider.
// The rate-limit wait counts against the same deadline as the call.
func (a *RemoteAugmenter) score(ctx context.Context, text string) (*llm.ScoreResponse, error) {
	name := a.provider.Name()
	key := cache.Key(name, a.opts.Model, text)

	if a.cache != nil {
		if data, ok := a.cache.Get(key); ok {
			var cached llm.ScoreResponse
			if err := json.Unmarshal(data, &cached); err == nil {
				a.call(name, 0, true, nil)
				return &cached, nil
			}
			a.cache.Invalidate(key)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := a.fetch(ctx, name, text)
	a.call(name, time.Since(start).Seconds(), false, err)
	if err != nil {
		return nil, err
	}

	if a.cache != nil {
		if data, err := json.Marshal(resp); err == nil {
			a.cache.Put(key, data)
		}
	}
	return resp, nil
}

func (a *RemoteAugmenter) fetch(ctx context.Context, name, text string) (*llm.ScoreResponse, error) {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx, name); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	resp, err := a.provider.ScoreSeverity(ctx, llm.ScoreRequest{
		Text:            text,
		CandidateLabels: a.opts.Labels,
		MaxTokens:       a.opts.MaxTokens,
	})
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: empty response", llm.ErrMalformed)
	}
	if math.IsNaN(resp.Score) || resp.Score < 0 || resp.Score > 1 {
		return nil, fmt.Errorf("%w: %v", ErrScoreRange, resp.Score)
	}
	return resp, nil
}

// suggest lists candidate symptoms scored at or above the suggest threshold
// that the rule scan did not match, highest score first
func (a *RemoteAugmenter) suggest(labels []llm.LabelScore, matched []string) []string {
	if a.opts.SuggestThreshold <= 0 || len(labels) == 0 {
		return nil
	}

	skip := make(map[string]bool, len(matched)+len(llm.SeverityLabels))
	for _, m := range matched {
		skip[m] = true
	}
	for _, l := range llm.SeverityLabels {
		skip[l] = true
	}
	known := make(map[string]bool, len(a.opts.Labels))
	for _, l := range a.opts.Labels {
		known[l] = true
	}

	ranked := append([]llm.LabelScore(nil), labels...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })

	var out []string
	for _, l := range ranked {
		if l.Score < a.opts.SuggestThreshold || skip[l.Label] || !known[l.Label] {
			continue
		}
		skip[l.Label] = true
		out = append(out, l.Label)
	}
	return out
}

func (a *RemoteAugmenter) call(provider string, seconds float64, cached bool, err error) {
	if a.hooks.OnCall != nil {
		a.hooks.OnCall(provider, seconds, cached, err)
	}
}

func (a *RemoteAugmenter) outcome(provider string, o Outcome) {
	if a.hooks.OnOutcome != nil {
		a.hooks.OnOutcome(provider, o)
	}
}
