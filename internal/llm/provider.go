package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ppiankov/symptriage/internal/util"
)

// Provider scores how medically urgent a free-text description sounds
type Provider interface {
	// Name returns the provider name
	Name() string

	// ScoreSeverity returns an independent severity estimate for the text
	ScoreSeverity(ctx context.Context, req ScoreRequest) (*ScoreResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// ScoreRequest contains the input for severity scoring
type ScoreRequest struct {
	// Text is the raw symptom description
	Text string

	// CandidateLabels are lexicon symptom names the provider may report as present
	CandidateLabels []string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length for generative providers
	MaxTokens int
}

// LabelScore is a provider's confidence that a symptom label applies
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// ScoreResponse contains the provider's estimate
type ScoreResponse struct {
	// Score is the severity estimate; the documented range is [0,1]
	Score float64

	// Labels are candidate symptom labels with their scores, highest first
	Labels []LabelScore

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption (0 when the provider does not report it)
	TokensUsed int
}

// ErrMalformed marks a response that could not be interpreted as a score
var ErrMalformed = errors.New("malformed severity response")

// Severity labels used for zero-shot classification
const (
	LabelEmergency = "medical emergency"
	LabelUrgent    = "urgent medical problem"
	LabelMinor     = "minor health complaint"
)

// SeverityLabels are always sent ahead of the symptom labels
var SeverityLabels = []string{LabelEmergency, LabelUrgent, LabelMinor}

// Config holds provider configuration
type Config struct {
	// Provider name: "huggingface", "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for Hugging Face/OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, a self-hosted inference server)
	BaseURL string

	// Timeout caps a single HTTP exchange; callers still bound requests with their context
	Timeout time.Duration

	// MaxTokens for generative providers
	MaxTokens int

	// UserAgent sent on raw HTTP requests
	UserAgent string

	// Proxy settings
	Proxy util.ProxySettings

	// Logger for availability diagnostics; nil means slog.Default()
	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Model:     "",
		Timeout:   5 * time.Second,
		MaxTokens: 200,
	}
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c Config) timeout(fallback time.Duration) time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return fallback
}

func (c Config) maxTokens(req ScoreRequest) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 200
}

// systemPrompt instructs generative providers to answer with the JSON contract only
const systemPrompt = `You rate how medically urgent a short symptom description sounds.
You never diagnose. Reply with a single JSON object and nothing else.`

// BuildPrompt constructs the user prompt for generative providers
func BuildPrompt(text string, labels []string) string {
	var b strings.Builder
	b.WriteString("Symptom description:\n")
	b.WriteString(text)
	b.WriteString("\n\nKnown symptom names:\n")
	if len(labels) == 0 {
		b.WriteString("(none)\n")
	}
	for _, l := range labels {
		b.WriteString("- ")
		b.WriteString(l)
		b.WriteString("\n")
	}
	b.WriteString(`
Return JSON of the form {"severity": S, "symptoms": [...]} where:
- S is a number from 0 (trivial) to 1 (emergency) for how urgently this person needs care
- "symptoms" lists only names from the known list that the description mentions or clearly implies`)
	return b.String()
}

// severityJSON is the contract generative providers answer with
type severityJSON struct {
	Severity *float64 `json:"severity"`
	Symptoms []string `json:"symptoms"`
}

// parseSeverityJSON extracts the JSON object from a model reply.
// Code fences and surrounding prose are tolerated; unknown symptom names are dropped.
func parseSeverityJSON(content string, candidates []string) (float64, []LabelScore, error) {
	start := strings.IndexByte(content, '{')
	end := strings.LastIndexByte(content, '}')
	if start < 0 || end <= start {
		return 0, nil, fmt.Errorf("%w: no JSON object in reply", ErrMalformed)
	}

	var parsed severityJSON
	if err := json.Unmarshal([]byte(content[start:end+1]), &parsed); err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if parsed.Severity == nil {
		return 0, nil, fmt.Errorf("%w: missing severity", ErrMalformed)
	}

	known := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		known[strings.ToLower(c)] = true
	}

	var labels []LabelScore
	seen := make(map[string]bool)
	for _, s := range parsed.Symptoms {
		name := strings.ToLower(strings.TrimSpace(s))
		if !known[name] || seen[name] {
			continue
		}
		seen[name] = true
		labels = append(labels, LabelScore{Label: name, Score: 1})
	}

	return *parsed.Severity, labels, nil
}
