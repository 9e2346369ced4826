package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

const (
	defaultHFBaseURL = "https://api-inference.huggingface.co"
	defaultHFModel   = "facebook/bart-large-mnli"
)

// HuggingFaceProvider scores severity with a zero-shot classification model
// on the Hugging Face inference API
type HuggingFaceProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	config     Config
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
	MultiLabel      bool     `json:"multi_label"`
}

// hfResponse is the classic zero-shot payload
type hfResponse struct {
	Sequence string    `json:"sequence"`
	Labels   []string  `json:"labels"`
	Scores   []float64 `json:"scores"`
}

type hfError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time,omitempty"`
}

// NewHuggingFaceProvider creates a new Hugging Face provider
func NewHuggingFaceProvider(config Config) (*HuggingFaceProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Hugging Face API token is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultHFBaseURL
	}

	return &HuggingFaceProvider{
		apiKey:     config.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: newHTTPClient(config),
		config:     config,
	}, nil
}

// Name returns the provider name
func (p *HuggingFaceProvider) Name() string {
	return "huggingface"
}

func (p *HuggingFaceProvider) model(req ScoreRequest) string {
	if req.Model != "" {
		return req.Model
	}
	if p.config.Model != "" {
		return p.config.Model
	}
	return defaultHFModel
}

// IsAvailable checks the token with a one-label classification
func (p *HuggingFaceProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.classify(ctx, p.model(ScoreRequest{}), "headache", []string{LabelMinor})
	if err != nil {
		p.config.logger().Warn("Hugging Face API check failed", "error", err)
		return false
	}
	return true
}

// ScoreSeverity runs zero-shot classification over the severity and symptom labels.
// The score is the higher of the emergency and urgent label scores.
func (p *HuggingFaceProvider) ScoreSeverity(ctx context.Context, req ScoreRequest) (*ScoreResponse, error) {
	model := p.model(req)

	labels := make([]string, 0, len(SeverityLabels)+len(req.CandidateLabels))
	labels = append(labels, SeverityLabels...)
	for _, l := range req.CandidateLabels {
		if !isSeverityLabel(l) {
			labels = append(labels, l)
		}
	}

	scores, err := p.classify(ctx, model, req.Text, labels)
	if err != nil {
		return nil, fmt.Errorf("Hugging Face API error: %w", err)
	}

	emergency, okE := scores[LabelEmergency]
	urgent, okU := scores[LabelUrgent]
	if !okE && !okU {
		return nil, fmt.Errorf("%w: severity labels missing from response", ErrMalformed)
	}

	var symptoms []LabelScore
	for label, score := range scores {
		if isSeverityLabel(label) {
			continue
		}
		symptoms = append(symptoms, LabelScore{Label: label, Score: score})
	}
	sort.Slice(symptoms, func(i, j int) bool {
		if symptoms[i].Score != symptoms[j].Score {
			return symptoms[i].Score > symptoms[j].Score
		}
		return symptoms[i].Label < symptoms[j].Label
	})

	return &ScoreResponse{
		Score:  max(emergency, urgent),
		Labels: symptoms,
		Model:  model,
	}, nil
}

// classify posts one zero-shot request and returns label -> score
func (p *HuggingFaceProvider) classify(ctx context.Context, model, text string, labels []string) (map[string]float64, error) {
	body, err := json.Marshal(hfRequest{
		Inputs: text,
		Parameters: hfParameters{
			CandidateLabels: labels,
			MultiLabel:      true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s", p.baseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	if p.config.UserAgent != "" {
		httpReq.Header.Set("User-Agent", p.config.UserAgent)
	}

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		var apiErr hfError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("API error (%d): %s", httpResp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("API error (%d): %s", httpResp.StatusCode, truncate(string(respBody), 200))
	}

	return parseZeroShot(respBody)
}

// parseZeroShot accepts both the {labels, scores} object and the newer
// [{label, score}] list the router returns
func parseZeroShot(body []byte) (map[string]float64, error) {
	trimmed := bytes.TrimSpace(body)

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []LabelScore
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if len(list) == 0 {
			return nil, fmt.Errorf("%w: empty label list", ErrMalformed)
		}
		out := make(map[string]float64, len(list))
		for _, ls := range list {
			out[ls.Label] = ls.Score
		}
		return out, nil
	}

	var resp hfResponse
	if err := json.Unmarshal(trimmed, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(resp.Labels) == 0 || len(resp.Labels) != len(resp.Scores) {
		return nil, fmt.Errorf("%w: %d labels, %d scores", ErrMalformed, len(resp.Labels), len(resp.Scores))
	}
	out := make(map[string]float64, len(resp.Labels))
	for i, label := range resp.Labels {
		out[label] = resp.Scores[i]
	}
	return out, nil
}

func isSeverityLabel(label string) bool {
	for _, l := range SeverityLabels {
		if l == label {
			return true
		}
	}
	return false
}
