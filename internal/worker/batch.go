package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/symptriage/internal/model"
)

// maxLineBytes bounds a single description in a batch file
const maxLineBytes = 1 << 20

// Triager defines the interface for triaging one description
type Triager interface {
	Triage(ctx context.Context, text string) *model.TriageResult
}

// TriageJob represents one description to triage
type TriageJob struct {
	Index   int
	Text    string
	Triager Triager
}

// Execute executes the triage job
func (j *TriageJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &TriageOutcome{Index: j.Index, Text: j.Text, Error: err}
	}
	return &TriageOutcome{
		Index:  j.Index,
		Text:   j.Text,
		Result: j.Triager.Triage(ctx, j.Text),
	}
}

// TriageOutcome represents the result of a triage job
type TriageOutcome struct {
	Index  int
	Text   string
	Result *model.TriageResult
	Error  error
}

// GetError returns the error from the outcome
func (r *TriageOutcome) GetError() error {
	return r.Error
}

// BatchProcessor triages many descriptions concurrently
type BatchProcessor struct {
	triager     Triager
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(triager Triager, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		triager:     triager,
		concurrency: concurrency,
	}
}

// ProcessTexts triages descriptions concurrently and returns outcomes in input order.
// Descriptions never started because ctx ended are reported with ctx's error.
func (b *BatchProcessor) ProcessTexts(ctx context.Context, texts []string) []*TriageOutcome {
	if len(texts) == 0 {
		return []*TriageOutcome{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	jobs := make([]Job, len(texts))
	for i, text := range texts {
		jobs[i] = &TriageJob{
			Index:   i,
			Text:    text,
			Triager: b.triager,
		}
	}

	outcomes := make([]*TriageOutcome, len(texts))
	for _, r := range pool.Run(jobs) {
		o := r.(*TriageOutcome)
		outcomes[o.Index] = o
	}

	for i, o := range outcomes {
		if o != nil {
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		outcomes[i] = &TriageOutcome{Index: i, Text: texts[i], Error: err}
	}

	return outcomes
}

// ProcessFile reads descriptions from a file and triages them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*TriageOutcome, error) {
	texts, err := ReadLinesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read descriptions: %w", err)
	}

	return b.ProcessTexts(ctx, texts), nil
}

// ReadLinesFromFile reads one description per line, skipping blank lines and # comments.
// Repeated lines are kept; each is a separate description.
func ReadLinesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filepath.Clean(filePath))
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var lines []string

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		lines = append(lines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return lines, nil
}
