package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/symptriage/internal/model"
)

const footer = "_Generated by symptriage. A coarse triage bucket, not a diagnosis._"

// Renderer writes triage results as JSON, Markdown or a terminal summary
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// WriteJSON encodes result as indented JSON
func (r *Renderer) WriteJSON(w io.Writer, result *model.TriageResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// RenderJSON writes result to path as JSON
func (r *Renderer) RenderJSON(result *model.TriageResult, path string) error {
	return writeFile(path, func(w io.Writer) error { return r.WriteJSON(w, result) })
}

// WriteMarkdown renders result as a Markdown report
func (r *Renderer) WriteMarkdown(w io.Writer, result *model.TriageResult) error {
	var b strings.Builder

	b.WriteString("# Symptom triage\n\n")
	fmt.Fprintf(&b, "**Urgency:** %s  \n", result.Urgency)
	fmt.Fprintf(&b, "**Source:** %s\n\n", result.Source)

	b.WriteString("## Why\n\n")
	for _, line := range result.Explanation {
		fmt.Fprintf(&b, "- %s\n", line)
	}
	b.WriteString("\n")

	if len(result.Suggested) > 0 {
		b.WriteString("## Possibly related symptoms\n\n")
		b.WriteString("Informational only; these did not affect urgency.\n\n")
		for _, s := range result.Suggested {
			fmt.Fprintf(&b, "- %s\n", s)
		}
		b.WriteString("\n")
	}

	if len(result.Links) > 0 {
		b.WriteString("## Resources\n\n")
		for _, l := range result.Links {
			fmt.Fprintf(&b, "- [%s](%s)\n", l.Label, l.URL)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "> %s\n", model.Disclaimer)

	if r.includeFooter {
		b.WriteString("\n---\n\n")
		b.WriteString(footer)
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderMarkdown writes result to path as Markdown
func (r *Renderer) RenderMarkdown(result *model.TriageResult, path string) error {
	return writeFile(path, func(w io.Writer) error { return r.WriteMarkdown(w, result) })
}

// RenderSummary prints a short human-readable summary
func (r *Renderer) RenderSummary(w io.Writer, result *model.TriageResult) {
	fmt.Fprintf(w, "\nUrgency: %s (%s)\n\n", result.Urgency, result.Source)
	for _, line := range result.Explanation {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if len(result.Suggested) > 0 {
		fmt.Fprintf(w, "  Possibly related: %s\n", strings.Join(result.Suggested, ", "))
	}
	if len(result.Links) > 0 {
		fmt.Fprintf(w, "\nResources:\n")
		for _, l := range result.Links {
			fmt.Fprintf(w, "  - %s: %s\n", l.Label, l.URL)
		}
	}
	fmt.Fprintf(w, "\n%s\n", model.Disclaimer)
}

func writeFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
