// Package pipeline wires the triage engine together: extraction,
// classification, explanation and optional augmentation.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ppiankov/symptriage/internal/augment"
	"github.com/ppiankov/symptriage/internal/classify"
	"github.com/ppiankov/symptriage/internal/explain"
	"github.com/ppiankov/symptriage/internal/extract"
	"github.com/ppiankov/symptriage/internal/lexicon"
	"github.com/ppiankov/symptriage/internal/model"
)

// Pipeline turns a free-text description into a triage result.
// All fields are read-only after New, so one Pipeline serves concurrent callers.
type Pipeline struct {
	extractor  *extract.Extractor
	classifier *classify.Classifier
	explainer  *explain.Explainer
	augmenter  augment.SeverityAugmenter
	renderer   *Renderer
	logger     *slog.Logger
}

// New creates a pipeline over lex. A nil augmenter disables augmentation.
func New(cfg *model.Config, lex *lexicon.Lexicon, augmenter augment.SeverityAugmenter, logger *slog.Logger) *Pipeline {
	if augmenter == nil {
		augmenter = augment.NullAugmenter{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Pipeline{
		extractor:  extract.NewExtractor(lex),
		classifier: classify.NewClassifier(lex),
		explainer:  explain.NewExplainer(lex),
		augmenter:  augmenter,
		renderer:   NewRenderer(cfg.Output.IncludeFooter),
		logger:     logger,
	}
}

// Triage never fails. Any input, including empty text, yields a result;
// augmentation problems fall back to the rule-based answer.
func (p *Pipeline) Triage(ctx context.Context, text string) *model.TriageResult {
	features := p.extractor.Extract(text)
	decision := p.classifier.Decide(features)
	base := p.explainer.Result(features, decision.Urgency)

	// Description text is never logged
	p.logger.Debug("rule-based triage",
		"rule", decision.Rule,
		"urgency", decision.Urgency,
		"symptoms", len(features.Symptoms),
		"severity", features.Severity,
		"emergency", features.EmergencyFlag)

	result := p.augmenter.Augment(ctx, text, *base)

	// Augmentation may only raise urgency
	if result.Urgency.Rank() < base.Urgency.Rank() || !result.Urgency.Valid() {
		p.logger.Warn("augmenter lowered urgency, keeping rule-based result",
			"from", base.Urgency, "to", result.Urgency)
		return base
	}

	if result.Augmentation != nil {
		result.Explanation = p.explainer.Explain(features, result.Urgency, result.Augmentation)
	}
	result.Features = features

	return &result
}

// RenderReport writes the JSON and Markdown reports when paths are given and
// prints a summary to w
func (p *Pipeline) RenderReport(w io.Writer, result *model.TriageResult, jsonPath, mdPath string) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(result, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		p.logger.Debug("wrote JSON report", "path", jsonPath)
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(result, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		p.logger.Debug("wrote Markdown report", "path", mdPath)
	}

	p.renderer.RenderSummary(w, result)

	return nil
}
