package augment

import (
	"fmt"
	"log/slog"

	"github.com/ppiankov/symptriage/internal/cache"
	"github.com/ppiankov/symptriage/internal/llm"
	"github.com/ppiankov/symptriage/internal/model"
	"github.com/ppiankov/symptriage/internal/worker"
)

// Deps are optional collaborators; nil fields are built from the config
type Deps struct {
	Provider llm.Provider
	Cache    cache.Store
	Limiter  *worker.Limiter
	Labels   []string
	Logger   *slog.Logger
	Hooks    Hooks
}

// New returns a RemoteAugmenter when a provider is configured with a
// credential, and NullAugmenter otherwise
func New(cfg *model.Config, deps Deps) (SeverityAugmenter, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	provider := deps.Provider
	if provider == nil {
		if !cfg.Augment.Configured() {
			logger.Debug("severity augmentation disabled", "provider", cfg.Augment.Provider)
			return NullAugmenter{}, nil
		}

		llmCfg := llm.ConfigFromModel(cfg.Augment, cfg.HTTP)
		llmCfg.Logger = logger
		p, err := llm.NewProvider(llmCfg)
		if err != nil {
			return nil, fmt.Errorf("create provider: %w", err)
		}
		if p == nil {
			return NullAugmenter{}, nil
		}
		provider = p
	}

	c := deps.Cache
	if c == nil && cfg.Cache.Enabled {
		c = cache.NewMemoryStore(cfg.Cache.TTL, cfg.Cache.CleanupInterval)
	}

	limiter := deps.Limiter
	if limiter == nil {
		limiter = worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	}

	logger.Debug("severity augmentation enabled", "provider", provider.Name(), "threshold", cfg.Augment.Threshold)

	return NewRemoteAugmenter(provider, c, limiter, Options{
		Threshold:        cfg.Augment.Threshold,
		SuggestThreshold: cfg.Augment.SuggestThreshold,
		Timeout:          cfg.Augment.Timeout,
		Labels:           deps.Labels,
		Model:            cfg.Augment.Model,
		MaxTokens:        cfg.Augment.MaxTokens,
	}, logger, deps.Hooks), nil
}
