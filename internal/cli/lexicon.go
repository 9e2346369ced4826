package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/symptriage/internal/validate"
)

var checkTimeout time.Duration

// lexiconCmd represents the lexicon command
var lexiconCmd = &cobra.Command{
	Use:   "lexicon",
	Short: "Inspect the symptom table",
}

var lexiconListCmd = &cobra.Command{
	Use:   "list",
	Short: "List symptoms, aliases and resource links",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		lex, err := loadLexicon(cfg, newLogger(cfg.Output.Verbose))
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SYMPTOM\tWEIGHT\tNEVER TRIVIAL\tALIASES\tLINKS")
		for _, e := range lex.All() {
			never := ""
			if e.NeverTrivial {
				never = "yes"
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%d\n", e.Name, e.BaseWeight, never, strings.Join(e.Aliases, ", "), len(e.Links))
		}
		return tw.Flush()
	},
}

var lexiconCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that every resource link is reachable",
	Long: `Check sends a HEAD request (GET when HEAD is refused) to every resource
link in the symptom table and reports dead or unreachable links with
their authority tier. Exits non-zero when any link is dead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		lex, err := loadLexicon(cfg, newLogger(cfg.Output.Verbose))
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
		defer cancel()

		results := validate.NewLinkChecker(cfg).Check(ctx, lex.All())

		out := cmd.OutOrStdout()
		dead := 0
		for _, r := range results {
			status := "✓"
			switch {
			case r.IsDead:
				status = "✗"
				dead++
			case !r.IsAccessible:
				status = "?"
			}
			line := fmt.Sprintf("%s %-20s %-9s %s", status, r.Symptom, r.Authority, r.URL)
			if r.StatusCode != 0 {
				line += fmt.Sprintf(" (%d)", r.StatusCode)
			}
			if r.RedirectURL != "" {
				line += " -> " + r.RedirectURL
			}
			if r.Error != "" {
				line += ": " + r.Error
			}
			fmt.Fprintln(out, line)
		}

		fmt.Fprintf(out, "\n%d links checked, %d dead\n", len(results), dead)
		if dead > 0 {
			return fmt.Errorf("%d dead resource links", dead)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lexiconCmd)
	lexiconCmd.AddCommand(lexiconListCmd)
	lexiconCmd.AddCommand(lexiconCheckCmd)

	lexiconCheckCmd.Flags().DurationVar(&checkTimeout, "timeout", 2*time.Minute, "overall timeout for link checks")
}
