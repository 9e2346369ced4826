package model

import "fmt"

// Urgency is the coarse triage bucket assigned to a description
type Urgency string

const (
	UrgencyUrgent  Urgency = "URGENT"  // Seek care now
	UrgencySoon    Urgency = "SOON"    // Book a visit
	UrgencyRoutine Urgency = "ROUTINE" // Watch and wait
)

// Rank orders urgencies from least (0) to most (2) pressing
func (u Urgency) Rank() int {
	switch u {
	case UrgencyUrgent:
		return 2
	case UrgencySoon:
		return 1
	default:
		return 0
	}
}

// Raise returns the next more pressing urgency; URGENT stays URGENT
func (u Urgency) Raise() Urgency {
	switch u {
	case UrgencyRoutine:
		return UrgencySoon
	case UrgencySoon:
		return UrgencyUrgent
	default:
		return UrgencyUrgent
	}
}

// Valid reports whether u is one of the three known buckets
func (u Urgency) Valid() bool {
	return u == UrgencyUrgent || u == UrgencySoon || u == UrgencyRoutine
}

// SeverityModifier is the qualitative intensity found in the text
type SeverityModifier string

const (
	SeverityNone     SeverityModifier = "none"
	SeverityMild     SeverityModifier = "mild"
	SeverityModerate SeverityModifier = "moderate"
	SeveritySevere   SeverityModifier = "severe"
)

// Rank orders severity modifiers from none (0) to severe (3)
func (s SeverityModifier) Rank() int {
	switch s {
	case SeverityMild:
		return 1
	case SeverityModerate:
		return 2
	case SeveritySevere:
		return 3
	default:
		return 0
	}
}

// DurationUnit is the time unit of an extracted duration
type DurationUnit string

const (
	UnitHour DurationUnit = "hour"
	UnitDay  DurationUnit = "day"
	UnitWeek DurationUnit = "week"
)

// Duration is how long the symptoms have been present
type Duration struct {
	Value float64      `json:"value"`
	Unit  DurationUnit `json:"unit"`
}

// Days converts the duration to a day-equivalent value
func (d Duration) Days() float64 {
	switch d.Unit {
	case UnitHour:
		return d.Value / 24
	case UnitWeek:
		return d.Value * 7
	default:
		return d.Value
	}
}

// String renders the duration as "3 days", "1 week", "1.5 hours"
func (d Duration) String() string {
	unit := string(d.Unit)
	if d.Value != 1 {
		unit += "s"
	}
	return fmt.Sprintf("%s %s", formatNumber(d.Value), unit)
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

// Features is everything the extractor pulled out of one description.
// Created per request and never shared.
type Features struct {
	Symptoms      []string         `json:"matched_symptoms"`    // Canonical names, first-occurrence order
	Severity      SeverityModifier `json:"severity_modifier"`   // Highest-ranked severity word found
	Duration      *Duration        `json:"duration,omitempty"`  // First duration phrase, if any
	EmergencyFlag bool             `json:"emergency_flag"`      // Any red-flag phrase present
	RedFlags      []string         `json:"red_flags,omitempty"` // Red-flag phrases hit, list order
}

// HasSymptoms reports whether any lexicon symptom was recognized
func (f Features) HasSymptoms() bool {
	return len(f.Symptoms) > 0
}

// Source tells whether the external severity estimate changed the outcome
type Source string

const (
	SourceRuleBased   Source = "rule_based"
	SourceAIAugmented Source = "ai_augmented"
)

// Augmentation records how an external severity estimate raised urgency
type Augmentation struct {
	Provider  string  `json:"provider"`
	Model     string  `json:"model,omitempty"`
	Score     float64 `json:"score"`     // External severity score in [0,1]
	Threshold float64 `json:"threshold"` // Score had to exceed this
	From      Urgency `json:"from"`      // Rule-based urgency before the upgrade
}

// TriageResult is the structured answer handed back to the caller
type TriageResult struct {
	Urgency      Urgency        `json:"urgency"`
	Explanation  []string       `json:"explanation"`
	Symptoms     []string       `json:"matched_symptoms"`
	Links        []ResourceLink `json:"resource_links"`
	Source       Source         `json:"source"`
	Augmentation *Augmentation  `json:"augmentation,omitempty"`
	Suggested    []string       `json:"suggested_symptoms,omitempty"` // Informational only, never affects urgency

	Features Features `json:"-"`
}

// Disclaimer is shown with every rendered result
const Disclaimer = "This tool is for educational purposes only and is not medical advice. " +
	"If you have emergency symptoms (e.g., chest pain, trouble breathing, one-sided weakness), call emergency services."
