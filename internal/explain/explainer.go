// Package explain renders the rationale behind a triage decision.
package explain

import (
	"fmt"
	"strings"

	"github.com/ppiankov/symptriage/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NoSymptomsNote follows the symptoms line when nothing was recognized
const NoSymptomsNote = "No recognizable symptoms were found in the description."

var recommendations = map[model.Urgency]string{
	model.UrgencyUrgent:  "Seek immediate medical attention",
	model.UrgencySoon:    "Schedule a visit soon",
	model.UrgencyRoutine: "Monitor and consult if symptoms persist",
}

// Recommendation returns the fixed advice for an urgency level
func Recommendation(u model.Urgency) string {
	if r, ok := recommendations[u]; ok {
		return r
	}
	return recommendations[model.UrgencyRoutine]
}

// LinkSource supplies resource links per canonical symptom
type LinkSource interface {
	Links(name string) []model.ResourceLink
}

// Explainer builds explanation lines and resource links
type Explainer struct {
	links LinkSource
}

// NewExplainer creates an explainer that reads links from src
func NewExplainer(src LinkSource) *Explainer {
	return &Explainer{links: src}
}

// Explain returns the rationale lines in fixed order: symptoms, duration,
// severity, red flags, augmentation, recommendation
func (e *Explainer) Explain(f model.Features, urgency model.Urgency, aug *model.Augmentation) []string {
	lines := make([]string, 0, 7)

	if f.HasSymptoms() {
		lines = append(lines, "Symptoms: "+strings.Join(f.Symptoms, ", "))
	} else {
		lines = append(lines, "Symptoms: none recognized", NoSymptomsNote)
	}

	if f.Duration != nil {
		lines = append(lines, "Duration: "+f.Duration.String())
	}

	lines = append(lines, "Severity: "+severityLabel(f.Severity))

	if f.EmergencyFlag && len(f.RedFlags) > 0 {
		lines = append(lines, "Red flags: "+strings.Join(f.RedFlags, ", "))
	}

	if aug != nil {
		lines = append(lines, fmt.Sprintf("Independent severity estimate %.2f (%s) raised urgency from %s", aug.Score, aug.Provider, aug.From))
	}

	lines = append(lines, "Recommendation: "+Recommendation(urgency))
	return lines
}

// Links returns the links of the given symptoms in order, dropping repeated URLs.
// The result is never nil.
func (e *Explainer) Links(symptoms []string) []model.ResourceLink {
	out := []model.ResourceLink{}
	if e.links == nil {
		return out
	}

	seen := make(map[string]bool)
	for _, name := range symptoms {
		for _, link := range e.links.Links(name) {
			if seen[link.URL] {
				continue
			}
			seen[link.URL] = true
			out = append(out, link)
		}
	}
	return out
}

// Result assembles a rule-based triage result
func (e *Explainer) Result(f model.Features, urgency model.Urgency) *model.TriageResult {
	return &model.TriageResult{
		Urgency:     urgency,
		Explanation: e.Explain(f, urgency, nil),
		Symptoms:    append([]string{}, f.Symptoms...),
		Links:       e.Links(f.Symptoms),
		Source:      model.SourceRuleBased,
		Features:    f,
	}
}

// severityLabel title-cases the modifier; none reads as "unspecified"
func severityLabel(s model.SeverityModifier) string {
	if s == "" || s == model.SeverityNone {
		return "unspecified"
	}
	return cases.Title(language.English).String(string(s))
}
