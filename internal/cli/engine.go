package cli

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ppiankov/symptriage/internal/augment"
	"github.com/ppiankov/symptriage/internal/lexicon"
	"github.com/ppiankov/symptriage/internal/model"
	"github.com/ppiankov/symptriage/internal/pipeline"
	"github.com/ppiankov/symptriage/internal/validate"
)

// loadLexicon reads the configured symptom table, dropping resource links
// below the configured minimum authority
func loadLexicon(cfg *model.Config, logger *slog.Logger) (*lexicon.Lexicon, error) {
	classifier := validate.NewAuthorityClassifier(&cfg.Authority)
	filter := classifier.LinkFilter(model.ParseTier(cfg.Lexicon.MinAuthority), logger)

	lex, err := lexicon.Load(cfg.Lexicon.Path, lexicon.WithLinkFilter(filter))
	if err != nil {
		return nil, fmt.Errorf("load lexicon: %w", err)
	}
	logger.Debug("lexicon loaded", "entries", lex.Len(), "path", cfg.Lexicon.Path)
	return lex, nil
}

// buildEngine assembles the pipeline. When reg is set, augmentation metrics
// are registered on it.
func buildEngine(cfg *model.Config, logger *slog.Logger, reg prometheus.Registerer) (*pipeline.Pipeline, error) {
	lex, err := loadLexicon(cfg, logger)
	if err != nil {
		return nil, err
	}

	deps := augment.Deps{
		Labels: lex.Names(),
		Logger: logger,
	}
	if reg != nil {
		deps.Hooks = augment.NewMetrics(reg).Hooks()
	}

	augmenter, err := augment.New(cfg, deps)
	if err != nil {
		// The engine still works without augmentation
		logger.Warn("severity augmentation unavailable, using rules only", "error", err)
		augmenter = augment.NullAugmenter{}
	}

	return pipeline.New(cfg, lex, augmenter, logger), nil
}
