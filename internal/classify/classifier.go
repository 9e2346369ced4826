// Package classify maps extracted features to an urgency level.
package classify

import "github.com/ppiankov/symptriage/internal/model"

// Rule identifies which classification rule decided the urgency
type Rule string

const (
	RuleEmergency      Rule = "emergency_flag"    // Red-flag phrase present
	RuleSeverePersists Rule = "severe_persistent" // Severe for two or more days
	RuleSeverity       Rule = "severity"          // Severe or moderate
	RuleNeverTrivial   Rule = "never_trivial"     // Symptom that warrants a visit on its own
	RuleSymptoms       Rule = "symptoms"          // Recognized, nothing pressing
	RuleNoSymptoms     Rule = "no_symptoms"       // Nothing recognized
)

// persistentDays is how long severe symptoms must last to be treated as URGENT
const persistentDays = 2

// Decision is the classifier outcome plus the rule that produced it
type Decision struct {
	Urgency model.Urgency
	Rule    Rule
}

// NeverTrivialer reports whether a symptom warrants attention on its own
type NeverTrivialer interface {
	NeverTrivial(name string) bool
}

// Classifier evaluates the urgency rules in fixed order; first match wins
type Classifier struct {
	lex NeverTrivialer
}

// NewClassifier creates a classifier that consults lex for never-trivial symptoms
func NewClassifier(lex NeverTrivialer) *Classifier {
	return &Classifier{lex: lex}
}

// Classify returns the urgency for f
func (c *Classifier) Classify(f model.Features) model.Urgency {
	return c.Decide(f).Urgency
}

// Decide returns the urgency for f and the rule that fired
func (c *Classifier) Decide(f model.Features) Decision {
	// 1. Red flags are a floor nothing else can lower
	if f.EmergencyFlag {
		return Decision{model.UrgencyUrgent, RuleEmergency}
	}

	// 2. Severe and lasting at least two days
	if f.Severity == model.SeveritySevere && persists(f.Duration) {
		return Decision{model.UrgencyUrgent, RuleSeverePersists}
	}

	// 3. Severe or moderate
	if f.Severity.Rank() >= model.SeverityModerate.Rank() {
		return Decision{model.UrgencySoon, RuleSeverity}
	}

	// 4. Recognized symptoms with mild or no severity
	if f.HasSymptoms() {
		for _, name := range f.Symptoms {
			if c.lex != nil && c.lex.NeverTrivial(name) {
				return Decision{model.UrgencySoon, RuleNeverTrivial}
			}
		}
		return Decision{model.UrgencyRoutine, RuleSymptoms}
	}

	// 5. Nothing recognized
	return Decision{model.UrgencyRoutine, RuleNoSymptoms}
}

// persists reports whether d is day- or week-scale and at least two days long.
// Hours never qualify, however many.
func persists(d *model.Duration) bool {
	if d == nil {
		return false
	}
	if d.Unit != model.UnitDay && d.Unit != model.UnitWeek {
		return false
	}
	return d.Days() >= persistentDays
}
