package validate

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/ppiankov/symptriage/internal/lexicon"
	"github.com/ppiankov/symptriage/internal/model"
)

func TestAuthorityClassifier_Tiers(t *testing.T) {
	config := &model.AuthorityConfig{
		PrimaryDomains:   []string{"medlineplus.gov", "who.int", "nhs.uk"},
		SecondaryDomains: []string{"mayoclinic.org"},
	}

	classifier := NewAuthorityClassifier(config)

	tests := []struct {
		url      string
		expected model.AuthorityTier
		desc     string
	}{
		{"https://medlineplus.gov/headache.html", model.TierPrimary, "Primary domain exact match"},
		{"https://www.who.int/health-topics/fever", model.TierPrimary, "Primary domain with subdomain"},
		{"https://www.nhs.uk/conditions/back-pain/", model.TierPrimary, "NHS"},
		{"https://www.mayoclinic.org/symptoms/cough", model.TierSecondary, "Secondary domain"},
		{"https://www.cdc.gov/flu/", model.TierPrimary, ".gov heuristic"},
		{"https://health.harvard.edu/pain", model.TierPrimary, ".edu heuristic"},
		{"https://www.ucl.ac.uk/medicine", model.TierPrimary, ".ac.uk heuristic"},
		{"https://example.com/remedies", model.TierTertiary, "Unknown domain"},
		{"https://notmedlineplus.gov.example.com/", model.TierTertiary, "Lookalike host"},
		{"https://MEDLINEPLUS.GOV/cough.html", model.TierPrimary, "Host case ignored"},
		{"https://medlineplus.gov:8443/cough.html", model.TierPrimary, "Port ignored"},
		{"://bad", model.TierTertiary, "Unparseable URL"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			result := classifier.Classify(tt.url)
			if result != tt.expected {
				t.Errorf("Expected %v for %s, got %v", tt.expected, tt.url, result)
			}
		})
	}
}

func TestAuthorityClassifier_DomainMap(t *testing.T) {
	config := &model.AuthorityConfig{
		PrimaryDomains: []string{"medlineplus.gov"},
		DomainMap: map[string]string{
			"medlineplus.gov":      "secondary",
			"patient.example.org":  "primary",
			"forum.example.health": "tertiary",
		},
	}

	classifier := NewAuthorityClassifier(config)

	tests := []struct {
		url      string
		expected model.AuthorityTier
	}{
		{"https://medlineplus.gov/fever.html", model.TierSecondary},
		{"https://patient.example.org/info", model.TierPrimary},
		{"https://forum.example.health/t/1", model.TierTertiary},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := classifier.Classify(tt.url); got != tt.expected {
				t.Errorf("Expected %v for %s, got %v", tt.expected, tt.url, got)
			}
		})
	}
}

func TestNewAuthorityClassifier_NilConfig(t *testing.T) {
	classifier := NewAuthorityClassifier(nil)

	if got := classifier.Classify("https://medlineplus.gov/fever.html"); got != model.TierPrimary {
		t.Errorf("Expected default config to rank medlineplus.gov primary, got %v", got)
	}
	if got := classifier.Classify("https://www.mayoclinic.org/"); got != model.TierSecondary {
		t.Errorf("Expected default config to rank mayoclinic.org secondary, got %v", got)
	}
}

func TestCheckLinkURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://medlineplus.gov/fever.html", false},
		{"http://example.com/page", false},
		{"/relative/path", true},
		{"ftp://medlineplus.gov/file", true},
		{"javascript:alert(1)", true},
		{"https://", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := CheckLinkURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckLinkURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestLinkFilter_DropsBelowMinimum(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	classifier := NewAuthorityClassifier(nil)
	filter := classifier.LinkFilter(model.TierSecondary, logger)

	entries := []model.SymptomEntry{
		{Name: "cough", Links: []model.ResourceLink{
			{Label: "MedlinePlus", URL: "https://medlineplus.gov/cough.html"},
			{Label: "Mayo", URL: "https://www.mayoclinic.org/symptoms/cough"},
			{Label: "Blog", URL: "https://example.com/cough"},
		}},
	}

	lex, err := lexicon.New(entries, lexicon.WithLinkFilter(filter))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	links := lex.Links("cough")
	if len(links) != 2 {
		t.Fatalf("Expected 2 links kept, got %+v", links)
	}
	for _, l := range links {
		if strings.Contains(l.URL, "example.com") {
			t.Errorf("Tertiary link should have been dropped: %s", l.URL)
		}
	}
	if !strings.Contains(buf.String(), "example.com/cough") {
		t.Errorf("Expected a warning naming the dropped link, got %q", buf.String())
	}
}

func TestLinkFilter_RejectsInvalidURL(t *testing.T) {
	classifier := NewAuthorityClassifier(nil)
	filter := classifier.LinkFilter(model.TierTertiary, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	entries := []model.SymptomEntry{
		{Name: "rash", Links: []model.ResourceLink{{Label: "Local", URL: "/rash.html"}}},
	}

	if _, err := lexicon.New(entries, lexicon.WithLinkFilter(filter)); err == nil {
		t.Fatal("Expected relative link to reject the table")
	}
}

func TestLinkFilter_DefaultTableIsPrimary(t *testing.T) {
	classifier := NewAuthorityClassifier(nil)
	filter := classifier.LinkFilter(model.TierSecondary, nil)

	lex, err := lexicon.Default(lexicon.WithLinkFilter(filter))
	if err != nil {
		t.Fatalf("Default() with filter error: %v", err)
	}
	for _, e := range lex.All() {
		if len(e.Links) == 0 {
			t.Errorf("Entry %q lost all its links under a secondary minimum", e.Name)
		}
	}
}
