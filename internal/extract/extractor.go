// Package extract turns free-text symptom descriptions into features:
// recognized symptoms, a severity modifier, a duration and red flags.
package extract

import (
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/ppiankov/symptriage/internal/lexicon"
	"github.com/ppiankov/symptriage/internal/model"
	"github.com/ppiankov/symptriage/internal/util"
)

// Extractor scans descriptions against a lexicon.
// It keeps no per-call state and is safe for concurrent use.
type Extractor struct {
	lex      *lexicon.Lexicon
	maxTerms int
	severity map[string]model.SeverityModifier
	redFlags []string // normalized, hyphens as spaces
}

// NewExtractor creates an extractor bound to lex
func NewExtractor(lex *lexicon.Lexicon) *Extractor {
	severity := make(map[string]model.SeverityModifier, len(severityTerms))
	for _, st := range severityTerms {
		severity[st.word] = st.modifier
	}

	flags := make([]string, len(redFlagPhrases))
	for i, phrase := range redFlagPhrases {
		flags[i] = dehyphenate(util.NormalizeText(phrase))
	}

	return &Extractor{
		lex:      lex,
		maxTerms: lex.MaxTermLength(),
		severity: severity,
		redFlags: flags,
	}
}

// Extract pulls features out of text. It never fails: empty or unrecognized
// input yields features with no symptoms.
func (e *Extractor) Extract(text string) model.Features {
	features := model.Features{
		Symptoms: []string{},
		Severity: model.SeverityNone,
	}

	if looksLikeMarkup(text) {
		text = StripMarkup(text)
	}

	normalized := util.NormalizeText(text)
	if normalized == "" {
		return features
	}
	tokens := util.Tokens(normalized)

	features.Symptoms = e.matchSymptoms(tokens)
	features.Severity = e.matchSeverity(tokens)
	features.Duration = matchDuration(tokens)
	features.RedFlags = e.matchRedFlags(normalized)
	features.EmergencyFlag = len(features.RedFlags) > 0

	return features
}

// matchSymptoms finds every lexicon term in tokens and keeps the longest of
// any overlapping candidates, the earlier one on equal length. Names come
// back in order of first position, each once.
func (e *Extractor) matchSymptoms(tokens []string) []string {
	type candidate struct {
		start, width int
		name         string
	}

	var candidates []candidate
	for i := range tokens {
		for n := min(e.maxTerms, len(tokens)-i); n > 0; n-- {
			if name, ok := e.lex.Canonical(strings.Join(tokens[i:i+n], " ")); ok {
				candidates = append(candidates, candidate{start: i, width: n, name: name})
			}
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		if candidates[a].width != candidates[b].width {
			return candidates[a].width > candidates[b].width
		}
		return candidates[a].start < candidates[b].start
	})

	taken := make([]bool, len(tokens))
	accepted := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		if slices.Contains(taken[c.start:c.start+c.width], true) {
			continue
		}
		for i := c.start; i < c.start+c.width; i++ {
			taken[i] = true
		}
		accepted = append(accepted, c)
	}

	sort.Slice(accepted, func(a, b int) bool { return accepted[a].start < accepted[b].start })

	found := []string{}
	seen := make(map[string]bool)
	for _, c := range accepted {
		if !seen[c.name] {
			seen[c.name] = true
			found = append(found, c.name)
		}
	}
	return found
}

// matchSeverity returns the highest-ranked severity word present
func (e *Extractor) matchSeverity(tokens []string) model.SeverityModifier {
	best := model.SeverityNone
	for _, tok := range tokens {
		if mod, ok := e.severity[tok]; ok && mod.Rank() > best.Rank() {
			best = mod
		}
	}
	return best
}

// matchDuration finds the first "<number> <unit>" pair. Hyphenated forms
// such as "3-day" are split first.
func matchDuration(tokens []string) *model.Duration {
	var parts []string
	for _, tok := range tokens {
		for _, p := range strings.Split(tok, "-") {
			if p != "" {
				parts = append(parts, p)
			}
		}
	}

	for i := 0; i+1 < len(parts); i++ {
		value, ok := parseNumber(parts[i])
		if !ok {
			continue
		}
		if unit, ok := durationUnits[parts[i+1]]; ok {
			return &model.Duration{Value: value, Unit: unit}
		}
	}
	return nil
}

// parseNumber accepts digits with an optional decimal part, or one..ten spelled out
func parseNumber(tok string) (float64, bool) {
	if v, ok := spelledNumbers[tok]; ok {
		return v, true
	}
	if !isDecimal(tok) {
		return 0, false
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	dots := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
		case c == '.' && i > 0 && i < len(s)-1:
			dots++
		default:
			return false
		}
	}
	return dots <= 1
}

// matchRedFlags returns every red-flag phrase contained in the text, in list
// order. Plain substring matching, so "chest pains" and "seizures" count.
func (e *Extractor) matchRedFlags(normalized string) []string {
	text := dehyphenate(normalized)

	var hits []string
	for i, phrase := range e.redFlags {
		if strings.Contains(text, phrase) {
			hits = append(hits, redFlagPhrases[i])
		}
	}
	return hits
}

func dehyphenate(s string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(s, "-", " ")), " ")
}
