package classify

import (
	"testing"

	"github.com/ppiankov/symptriage/internal/model"
)

type stubLexicon map[string]bool

func (s stubLexicon) NeverTrivial(name string) bool { return s[name] }

var testLex = stubLexicon{"fever": true, "chest pain": true}

func days(v float64) *model.Duration  { return &model.Duration{Value: v, Unit: model.UnitDay} }
func weeks(v float64) *model.Duration { return &model.Duration{Value: v, Unit: model.UnitWeek} }
func hours(v float64) *model.Duration { return &model.Duration{Value: v, Unit: model.UnitHour} }

func TestClassifier_Decide(t *testing.T) {
	c := NewClassifier(testLex)

	tests := []struct {
		name     string
		features model.Features
		urgency  model.Urgency
		rule     Rule
	}{
		{
			name:     "emergency flag alone",
			features: model.Features{EmergencyFlag: true, Severity: model.SeverityNone},
			urgency:  model.UrgencyUrgent,
			rule:     RuleEmergency,
		},
		{
			name:     "emergency flag with mild severity",
			features: model.Features{Symptoms: []string{"cough"}, Severity: model.SeverityMild, EmergencyFlag: true},
			urgency:  model.UrgencyUrgent,
			rule:     RuleEmergency,
		},
		{
			name:     "severe for 3 days",
			features: model.Features{Symptoms: []string{"headache", "fever"}, Severity: model.SeveritySevere, Duration: days(3)},
			urgency:  model.UrgencyUrgent,
			rule:     RuleSeverePersists,
		},
		{
			name:     "severe for exactly 2 days",
			features: model.Features{Symptoms: []string{"headache"}, Severity: model.SeveritySevere, Duration: days(2)},
			urgency:  model.UrgencyUrgent,
			rule:     RuleSeverePersists,
		},
		{
			name:     "severe for 1 week",
			features: model.Features{Symptoms: []string{"cough"}, Severity: model.SeveritySevere, Duration: weeks(1)},
			urgency:  model.UrgencyUrgent,
			rule:     RuleSeverePersists,
		},
		{
			name:     "severe for 1 day",
			features: model.Features{Symptoms: []string{"cough"}, Severity: model.SeveritySevere, Duration: days(1)},
			urgency:  model.UrgencySoon,
			rule:     RuleSeverity,
		},
		{
			name:     "severe for 72 hours",
			features: model.Features{Symptoms: []string{"cough"}, Severity: model.SeveritySevere, Duration: hours(72)},
			urgency:  model.UrgencySoon,
			rule:     RuleSeverity,
		},
		{
			name:     "severe without duration",
			features: model.Features{Symptoms: []string{"headache"}, Severity: model.SeveritySevere},
			urgency:  model.UrgencySoon,
			rule:     RuleSeverity,
		},
		{
			name:     "moderate for 2 weeks",
			features: model.Features{Symptoms: []string{"back pain"}, Severity: model.SeverityModerate, Duration: weeks(2)},
			urgency:  model.UrgencySoon,
			rule:     RuleSeverity,
		},
		{
			name:     "mild sore throat",
			features: model.Features{Symptoms: []string{"sore throat"}, Severity: model.SeverityMild},
			urgency:  model.UrgencyRoutine,
			rule:     RuleSymptoms,
		},
		{
			name:     "fever alone",
			features: model.Features{Symptoms: []string{"fever"}, Severity: model.SeverityNone},
			urgency:  model.UrgencySoon,
			rule:     RuleNeverTrivial,
		},
		{
			name:     "mild fever",
			features: model.Features{Symptoms: []string{"cough", "fever"}, Severity: model.SeverityMild},
			urgency:  model.UrgencySoon,
			rule:     RuleNeverTrivial,
		},
		{
			name:     "cough with duration, no severity",
			features: model.Features{Symptoms: []string{"cough"}, Severity: model.SeverityNone, Duration: days(5)},
			urgency:  model.UrgencyRoutine,
			rule:     RuleSymptoms,
		},
		{
			name:     "nothing",
			features: model.Features{Symptoms: []string{}, Severity: model.SeverityNone},
			urgency:  model.UrgencyRoutine,
			rule:     RuleNoSymptoms,
		},
		{
			name:     "severity word without symptoms",
			features: model.Features{Symptoms: []string{}, Severity: model.SeveritySevere},
			urgency:  model.UrgencySoon,
			rule:     RuleSeverity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := c.Decide(tt.features)
			if d.Urgency != tt.urgency {
				t.Errorf("Urgency = %s, want %s", d.Urgency, tt.urgency)
			}
			if d.Rule != tt.rule {
				t.Errorf("Rule = %s, want %s", d.Rule, tt.rule)
			}
			if got := c.Classify(tt.features); got != d.Urgency {
				t.Errorf("Classify = %s, Decide = %s", got, d.Urgency)
			}
		})
	}
}

func TestClassifier_EmergencyFloor(t *testing.T) {
	c := NewClassifier(testLex)

	severities := []model.SeverityModifier{model.SeverityNone, model.SeverityMild, model.SeverityModerate, model.SeveritySevere}
	durations := []*model.Duration{nil, hours(1), days(1), days(10), weeks(3)}
	symptomSets := [][]string{{}, {"cough"}, {"fever", "headache"}}

	for _, sev := range severities {
		for _, dur := range durations {
			for _, syms := range symptomSets {
				f := model.Features{Symptoms: syms, Severity: sev, Duration: dur, EmergencyFlag: true}
				if got := c.Classify(f); got != model.UrgencyUrgent {
					t.Errorf("Classify(%+v) = %s, want URGENT", f, got)
				}
			}
		}
	}
}

func TestClassifier_NilLexicon(t *testing.T) {
	c := NewClassifier(nil)

	f := model.Features{Symptoms: []string{"fever"}, Severity: model.SeverityNone}
	if got := c.Classify(f); got != model.UrgencyRoutine {
		t.Errorf("Expected ROUTINE without never-trivial data, got %s", got)
	}
}
