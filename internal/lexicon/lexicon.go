// Package lexicon holds the symptom table: canonical names, aliases, weights,
// and trusted resource links. A Lexicon is built once and only read afterwards,
// so it can be shared across goroutines without locking.
package lexicon

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/symptriage/internal/model"
	"github.com/ppiankov/symptriage/internal/util"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultTable []byte

// table is the on-disk YAML layout
type table struct {
	Symptoms []model.SymptomEntry `yaml:"symptoms"`
}

// LinkFilter decides whether a resource link is kept.
// Returning an error rejects the whole table.
type LinkFilter func(symptom string, link model.ResourceLink) (bool, error)

// Option configures lexicon construction
type Option func(*options)

type options struct {
	linkFilter LinkFilter
}

// WithLinkFilter runs every resource link through f at load time
func WithLinkFilter(f LinkFilter) Option {
	return func(o *options) {
		o.linkFilter = f
	}
}

// Lexicon is an immutable symptom table with a normalized alias index
type Lexicon struct {
	entries  []model.SymptomEntry
	byName   map[string]int    // canonical name -> entry index
	terms    map[string]string // normalized name or alias -> canonical name
	maxTerms int               // longest term, in tokens
}

// New builds a lexicon from entries. Names must be unique and no alias may
// point at two different symptoms.
func New(entries []model.SymptomEntry, opts ...Option) (*Lexicon, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	l := &Lexicon{
		entries: make([]model.SymptomEntry, 0, len(entries)),
		byName:  make(map[string]int, len(entries)),
		terms:   make(map[string]string),
	}

	for i, raw := range entries {
		entry := cloneEntry(raw)
		entry.Name = util.NormalizeText(entry.Name)
		if entry.Name == "" {
			return nil, fmt.Errorf("entry %d: empty symptom name", i)
		}
		if _, dup := l.byName[entry.Name]; dup {
			return nil, fmt.Errorf("entry %d: duplicate symptom %q", i, entry.Name)
		}

		links, err := filterLinks(entry.Name, entry.Links, o.linkFilter)
		if err != nil {
			return nil, err
		}
		entry.Links = links

		for _, term := range entry.Terms() {
			key := util.NormalizeText(term)
			if key == "" {
				continue
			}
			if owner, taken := l.terms[key]; taken && owner != entry.Name {
				return nil, fmt.Errorf("entry %q: alias %q already belongs to %q", entry.Name, key, owner)
			}
			l.terms[key] = entry.Name
			if n := len(util.Tokens(key)); n > l.maxTerms {
				l.maxTerms = n
			}
		}

		l.byName[entry.Name] = len(l.entries)
		l.entries = append(l.entries, entry)
	}

	return l, nil
}

func filterLinks(symptom string, links []model.ResourceLink, f LinkFilter) ([]model.ResourceLink, error) {
	if f == nil {
		return links, nil
	}
	kept := make([]model.ResourceLink, 0, len(links))
	for _, link := range links {
		keep, err := f(symptom, link)
		if err != nil {
			return nil, fmt.Errorf("symptom %q: %w", symptom, err)
		}
		if keep {
			kept = append(kept, link)
		}
	}
	return kept, nil
}

// Parse builds a lexicon from a YAML table
func Parse(data []byte, opts ...Option) (*Lexicon, error) {
	var t table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}
	if len(t.Symptoms) == 0 {
		return nil, fmt.Errorf("parse lexicon: no symptoms defined")
	}
	return New(t.Symptoms, opts...)
}

// Default returns the built-in table
func Default(opts ...Option) (*Lexicon, error) {
	return Parse(defaultTable, opts...)
}

// LoadFile reads a YAML table from disk
func LoadFile(path string, opts ...Option) (*Lexicon, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	return Parse(data, opts...)
}

// Load returns the table at path, or the built-in table when path is empty
func Load(path string, opts ...Option) (*Lexicon, error) {
	if path == "" {
		return Default(opts...)
	}
	return LoadFile(path, opts...)
}

// Lookup finds an entry by canonical name or alias.
// Matching ignores case and punctuation; unknown terms yield false.
func (l *Lexicon) Lookup(term string) (model.SymptomEntry, bool) {
	name, ok := l.Canonical(util.NormalizeText(term))
	if !ok {
		return model.SymptomEntry{}, false
	}
	return cloneEntry(l.entries[l.byName[name]]), true
}

// Canonical maps an already-normalized phrase to its canonical name
func (l *Lexicon) Canonical(normalized string) (string, bool) {
	name, ok := l.terms[normalized]
	return name, ok
}

// NeverTrivial reports whether the named symptom warrants attention on its own
func (l *Lexicon) NeverTrivial(name string) bool {
	idx, ok := l.byName[name]
	return ok && l.entries[idx].NeverTrivial
}

// Links returns the resource links of the named symptom
func (l *Lexicon) Links(name string) []model.ResourceLink {
	idx, ok := l.byName[name]
	if !ok {
		return nil
	}
	return append([]model.ResourceLink(nil), l.entries[idx].Links...)
}

// Index returns a copy of the alias index (normalized term -> canonical name)
// and the longest term length in tokens
func (l *Lexicon) Index() (map[string]string, int) {
	idx := make(map[string]string, len(l.terms))
	for k, v := range l.terms {
		idx[k] = v
	}
	return idx, l.maxTerms
}

// MaxTermLength is the longest name or alias in tokens
func (l *Lexicon) MaxTermLength() int {
	return l.maxTerms
}

// All returns every entry in table order
func (l *Lexicon) All() []model.SymptomEntry {
	out := make([]model.SymptomEntry, len(l.entries))
	for i, e := range l.entries {
		out[i] = cloneEntry(e)
	}
	return out
}

// Names returns canonical names in table order
func (l *Lexicon) Names() []string {
	names := make([]string, len(l.entries))
	for i, e := range l.entries {
		names[i] = e.Name
	}
	return names
}

// Len returns the number of entries
func (l *Lexicon) Len() int {
	return len(l.entries)
}

func cloneEntry(e model.SymptomEntry) model.SymptomEntry {
	e.Aliases = append([]string(nil), e.Aliases...)
	e.Links = append([]model.ResourceLink(nil), e.Links...)
	return e
}
