package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/symptriage/internal/model"
	"github.com/ppiankov/symptriage/internal/worker"
)

var (
	concurrency  int
	batchOutput  string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Triage many descriptions from a file in parallel",
	Long: `Batch triages one description per line:
- Blank lines and lines starting with # are skipped
- Descriptions are processed in parallel with a configurable worker count
- Results are written as JSON Lines in input order

Example:
  symptriage batch descriptions.txt
  symptriage batch descriptions.txt --concurrency 8 --output results.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "JSON Lines output path (default: stdout)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
}

// batchRecord is one line of batch output. Index counts descriptions
// from 1, skipping blank and comment lines.
type batchRecord struct {
	Index  int                 `json:"index"`
	Result *model.TriageResult `json:"result,omitempty"`
	Error  string              `json:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) (err error) {
	file := args[0]

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency.Workers = concurrency
	}
	logger := newLogger(cfg.Output.Verbose)

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "  Symptriage Batch Processing\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(stderr, "  Timeout:      %v\n", batchTimeout)
	if cfg.Augment.Configured() {
		fmt.Fprintf(stderr, "  Augment:      %s\n", cfg.Augment.Provider)
	}
	fmt.Fprintf(stderr, "\n")

	p, err := buildEngine(cfg, logger, nil)
	if err != nil {
		return err
	}

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers)
	outcomes, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	var out io.Writer = cmd.OutOrStdout()
	if batchOutput != "" {
		if dir := filepath.Dir(batchOutput); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
		}
		f, err := os.Create(filepath.Clean(batchOutput))
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close output: %w", closeErr)
			}
		}()
		out = f
	}

	counts, failures, err := writeBatch(out, outcomes)
	if err != nil {
		return err
	}

	// Summary
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "  Batch Complete\n")
	fmt.Fprintf(stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Total:     %d descriptions\n", len(outcomes))
	fmt.Fprintf(stderr, "  URGENT:    %d\n", counts[model.UrgencyUrgent])
	fmt.Fprintf(stderr, "  SOON:      %d\n", counts[model.UrgencySoon])
	fmt.Fprintf(stderr, "  ROUTINE:   %d\n", counts[model.UrgencyRoutine])
	fmt.Fprintf(stderr, "  Failures:  %d\n", failures)
	if batchOutput != "" {
		fmt.Fprintf(stderr, "  Output:    %s\n", batchOutput)
	}
	fmt.Fprintf(stderr, "\n%s\n\n", model.Disclaimer)

	return nil
}

// writeBatch writes one JSON record per outcome and tallies urgencies
func writeBatch(w io.Writer, outcomes []*worker.TriageOutcome) (map[model.Urgency]int, int, error) {
	counts := make(map[model.Urgency]int)
	failures := 0

	enc := json.NewEncoder(w)
	for _, o := range outcomes {
		rec := batchRecord{Index: o.Index + 1}
		if o.Error != nil {
			failures++
			rec.Error = o.Error.Error()
		} else {
			rec.Result = o.Result
			counts[o.Result.Urgency]++
		}
		if err := enc.Encode(rec); err != nil {
			return nil, 0, fmt.Errorf("write result: %w", err)
		}
	}
	return counts, failures, nil
}
