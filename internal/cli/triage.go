package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	outJSON       string
	outMD         string
	noFooter      bool
	triageTimeout time.Duration
)

// triageCmd represents the triage command
var triageCmd = &cobra.Command{
	Use:   "triage [text...]",
	Short: "Triage one symptom description",
	Long: `Triage sorts a free-text symptom description into URGENT, SOON or ROUTINE
and explains why.

The description is taken from the arguments, or from stdin when no
arguments are given or the only argument is "-".

Example:
  symptriage triage "Severe headache and fever for 3 days"
  echo "mild sore throat" | symptriage triage
  symptriage triage "back pain for 2 weeks" --json result.json --md result.md
  symptriage triage "rash" --provider openai --model gpt-4o-mini`,
	RunE: runTriage,
}

func init() {
	rootCmd.AddCommand(triageCmd)

	// Output flags
	triageCmd.Flags().StringVar(&outJSON, "json", "", "write the result as JSON to this path")
	triageCmd.Flags().StringVar(&outMD, "md", "", "write the result as Markdown to this path")
	triageCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	triageCmd.Flags().DurationVar(&triageTimeout, "timeout", 30*time.Second, "overall timeout")
}

func runTriage(cmd *cobra.Command, args []string) error {
	text, err := readDescription(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
	logger := newLogger(cfg.Output.Verbose)

	p, err := buildEngine(cfg, logger, nil)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), triageTimeout)
	defer cancel()

	result := p.Triage(ctx, text)

	if err := p.RenderReport(cmd.OutOrStdout(), result, outJSON, outMD); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	return nil
}

// readDescription joins args, or reads stdin when args are empty or "-"
func readDescription(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	if f, ok := stdin.(*os.File); ok {
		if info, err := f.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
			return "", fmt.Errorf("no description given (pass text as arguments or pipe it on stdin)")
		}
	}
	data, err := io.ReadAll(io.LimitReader(stdin, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}
