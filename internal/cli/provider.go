package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/symptriage/internal/llm"
)

// providerCmd represents the provider command
var providerCmd = &cobra.Command{
	Use:   "provider",
	Short: "Inspect the severity estimate provider",
}

var providerCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the configured provider is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if !cfg.Augment.Configured() {
			env := llm.CredentialEnv(cfg.Augment.Provider)
			if env == "" {
				fmt.Fprintln(out, "Augmentation disabled: no provider configured")
			} else {
				fmt.Fprintf(out, "Augmentation disabled: %s is not set\n", env)
			}
			return nil
		}

		llmCfg := llm.ConfigFromModel(cfg.Augment, cfg.HTTP)
		llmCfg.Logger = newLogger(cfg.Output.Verbose)
		provider, err := llm.NewProvider(llmCfg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if !provider.IsAvailable(ctx) {
			return fmt.Errorf("provider %s is not reachable", provider.Name())
		}
		fmt.Fprintf(out, "✓ %s is reachable\n", provider.Name())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(providerCmd)
	providerCmd.AddCommand(providerCheckCmd)
}
