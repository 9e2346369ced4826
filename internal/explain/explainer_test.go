package explain

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ppiankov/symptriage/internal/model"
)

type stubLinks map[string][]model.ResourceLink

func (s stubLinks) Links(name string) []model.ResourceLink { return s[name] }

var covid = model.ResourceLink{Label: "COVID-19", URL: "https://medlineplus.gov/covid19coronavirusdisease2019.html"}

var testLinks = stubLinks{
	"headache":      {{Label: "Headache", URL: "https://medlineplus.gov/headache.html"}},
	"fever":         {{Label: "Fever", URL: "https://medlineplus.gov/fever.html"}},
	"loss of smell": {{Label: "Smell Disorders", URL: "https://medlineplus.gov/smelldisorders.html"}, covid},
	"loss of taste": {{Label: "Taste Disorders", URL: "https://medlineplus.gov/tastedisorders.html"}, covid},
}

func TestExplain_SevereHeadacheAndFever(t *testing.T) {
	e := NewExplainer(testLinks)

	f := model.Features{
		Symptoms: []string{"headache", "fever"},
		Severity: model.SeveritySevere,
		Duration: &model.Duration{Value: 3, Unit: model.UnitDay},
	}

	got := e.Explain(f, model.UrgencyUrgent, nil)
	want := []string{
		"Symptoms: headache, fever",
		"Duration: 3 days",
		"Severity: Severe",
		"Recommendation: Seek immediate medical attention",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Explain() =\n%q\nwant\n%q", got, want)
	}
}

func TestExplain_NoSymptoms(t *testing.T) {
	e := NewExplainer(testLinks)

	got := e.Explain(model.Features{Symptoms: []string{}, Severity: model.SeverityNone}, model.UrgencyRoutine, nil)
	want := []string{
		"Symptoms: none recognized",
		NoSymptomsNote,
		"Severity: unspecified",
		"Recommendation: Monitor and consult if symptoms persist",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Explain() =\n%q\nwant\n%q", got, want)
	}
}

func TestExplain_RedFlagsAndAugmentation(t *testing.T) {
	e := NewExplainer(testLinks)

	f := model.Features{
		Symptoms:      []string{},
		Severity:      model.SeverityNone,
		EmergencyFlag: true,
		RedFlags:      []string{"difficulty breathing"},
	}
	got := e.Explain(f, model.UrgencyUrgent, nil)
	if got[len(got)-2] != "Red flags: difficulty breathing" {
		t.Errorf("Expected red flags line before recommendation, got %q", got)
	}

	aug := &model.Augmentation{Provider: "huggingface", Score: 0.91, Threshold: 0.7, From: model.UrgencyRoutine}
	f = model.Features{Symptoms: []string{"headache"}, Severity: model.SeverityMild}
	got = e.Explain(f, model.UrgencySoon, aug)

	augLine := got[len(got)-2]
	if !strings.Contains(augLine, "0.91") || !strings.Contains(augLine, "ROUTINE") {
		t.Errorf("Expected augmentation line with score and prior urgency, got %q", augLine)
	}
	if got[len(got)-1] != "Recommendation: Schedule a visit soon" {
		t.Errorf("Expected SOON recommendation last, got %q", got[len(got)-1])
	}
	if got[1] != "Severity: Mild" {
		t.Errorf("Expected title-cased severity, got %q", got[1])
	}
}

func TestRecommendation(t *testing.T) {
	tests := map[model.Urgency]string{
		model.UrgencyUrgent:  "Seek immediate medical attention",
		model.UrgencySoon:    "Schedule a visit soon",
		model.UrgencyRoutine: "Monitor and consult if symptoms persist",
		model.Urgency("??"):  "Monitor and consult if symptoms persist",
	}
	for u, want := range tests {
		if got := Recommendation(u); got != want {
			t.Errorf("Recommendation(%q) = %q, want %q", u, got, want)
		}
	}
}

func TestLinks_DedupInSymptomOrder(t *testing.T) {
	e := NewExplainer(testLinks)

	got := e.Links([]string{"loss of taste", "headache", "loss of smell"})
	want := []string{
		"https://medlineplus.gov/tastedisorders.html",
		covid.URL,
		"https://medlineplus.gov/headache.html",
		"https://medlineplus.gov/smelldisorders.html",
	}

	if len(got) != len(want) {
		t.Fatalf("Expected %d links, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i].URL != want[i] {
			t.Errorf("Link %d = %s, want %s", i, got[i].URL, want[i])
		}
	}
}

func TestLinks_EmptyNotNil(t *testing.T) {
	e := NewExplainer(testLinks)

	if got := e.Links(nil); got == nil || len(got) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", got)
	}
	if got := NewExplainer(nil).Links([]string{"fever"}); got == nil || len(got) != 0 {
		t.Errorf("Expected empty non-nil slice without a link source, got %#v", got)
	}
}

func TestResult(t *testing.T) {
	e := NewExplainer(testLinks)

	f := model.Features{Symptoms: []string{"fever"}, Severity: model.SeverityNone}
	r := e.Result(f, model.UrgencySoon)

	if r.Source != model.SourceRuleBased {
		t.Errorf("Source = %s, want rule_based", r.Source)
	}
	if r.Augmentation != nil {
		t.Error("Expected no augmentation on a rule-based result")
	}
	if !reflect.DeepEqual(r.Symptoms, []string{"fever"}) {
		t.Errorf("Symptoms = %v", r.Symptoms)
	}
	if len(r.Links) != 1 {
		t.Errorf("Expected 1 link, got %d", len(r.Links))
	}
}
