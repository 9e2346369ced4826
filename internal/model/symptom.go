package model

// ResourceLink is a trusted page about a symptom
type ResourceLink struct {
	Label string `json:"label" yaml:"label"`
	URL   string `json:"url" yaml:"url"`
}

// SymptomEntry is one row of the lexicon.
// Loaded once at startup and never mutated afterwards.
type SymptomEntry struct {
	Name         string         `json:"name" yaml:"name"`                                       // Canonical name (e.g., "sore throat")
	Aliases      []string       `json:"aliases,omitempty" yaml:"aliases,omitempty"`             // Alternative spellings and phrasings
	BaseWeight   int            `json:"base_weight" yaml:"base_weight"`                         // Default severity contribution
	NeverTrivial bool           `json:"never_trivial,omitempty" yaml:"never_trivial,omitempty"` // Alone still warrants SOON
	Links        []ResourceLink `json:"links,omitempty" yaml:"links,omitempty"`
}

// Terms returns the canonical name followed by all aliases
func (e SymptomEntry) Terms() []string {
	terms := make([]string, 0, len(e.Aliases)+1)
	terms = append(terms, e.Name)
	terms = append(terms, e.Aliases...)
	return terms
}

// AuthorityTier represents how trustworthy a resource link's host is
type AuthorityTier int

const (
	TierUnknown   AuthorityTier = 0 // Not yet classified
	TierPrimary   AuthorityTier = 1 // Government health agencies, medical libraries
	TierSecondary AuthorityTier = 2 // Hospital systems, established medical publishers
	TierTertiary  AuthorityTier = 3 // Everything else
)

func (t AuthorityTier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

// LinkCheckResult contains the result of checking one resource link
type LinkCheckResult struct {
	Symptom      string        `json:"symptom"`
	URL          string        `json:"url"`
	IsAccessible bool          `json:"is_accessible"`
	StatusCode   int           `json:"status_code,omitempty"`
	IsDead       bool          `json:"is_dead"` // 404, 410, or transport failure
	RedirectURL  string        `json:"redirect_url,omitempty"`
	Authority    AuthorityTier `json:"authority"`
	Error        string        `json:"error,omitempty"`
}
