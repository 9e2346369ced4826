package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/symptriage/internal/llm"
	"github.com/ppiankov/symptriage/internal/model"
)

// version is overridden at build time with -ldflags "-X ..."
var version = "v0.1.0"

var (
	cfgFile   string
	verbose   bool
	noAugment bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "symptriage",
	Short: "Symptriage - coarse symptom triage (not a diagnosis)",
	Long: `Symptriage reads a free-text description of symptoms and sorts it into
one of three urgency buckets: URGENT, SOON or ROUTINE.

It explains which words drove the decision and points to trusted health
resources. It never diagnoses and keeps no history of what you type.

` + model.Disclaimer,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "symptriage %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.symptriage/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	flags.String("lexicon", "", "symptom table YAML (default: built-in table)")
	flags.String("provider", "", "severity estimate provider (huggingface, openai, anthropic, ollama)")
	flags.String("model", "", "provider model name")
	flags.BoolVar(&noAugment, "no-augment", false, "disable the external severity estimate")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("lexicon.path", flags.Lookup("lexicon"))
	_ = viper.BindPFlag("augment.provider", flags.Lookup("provider"))
	_ = viper.BindPFlag("augment.model", flags.Lookup("model"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if err := configureViper(viper.GetViper(), cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
		return
	}
	if verbose && viper.ConfigFileUsed() != "" {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// configureViper sets defaults, the config file location and env binding.
// A missing default config file is not an error.
func configureViper(v *viper.Viper, file string) error {
	setDefaults(v, model.DefaultConfig())

	if file != "" {
		v.SetConfigFile(file)
	} else {
		dir, err := configDir()
		if err != nil {
			return err
		}
		v.AddConfigPath(dir)
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	// Read in environment variables that match SYMPTRIAGE_*
	v.SetEnvPrefix("SYMPTRIAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// setDefaults registers every key so env variables and flags can override it
func setDefaults(v *viper.Viper, d *model.Config) {
	v.SetDefault("lexicon.path", d.Lexicon.Path)
	v.SetDefault("lexicon.min_authority", d.Lexicon.MinAuthority)

	v.SetDefault("authority.primary_domains", d.Authority.PrimaryDomains)
	v.SetDefault("authority.secondary_domains", d.Authority.SecondaryDomains)
	v.SetDefault("authority.domain_map", map[string]string{})

	v.SetDefault("augment.provider", d.Augment.Provider)
	v.SetDefault("augment.model", d.Augment.Model)
	v.SetDefault("augment.api_key", d.Augment.APIKey)
	v.SetDefault("augment.base_url", d.Augment.BaseURL)
	v.SetDefault("augment.timeout", d.Augment.Timeout)
	v.SetDefault("augment.threshold", d.Augment.Threshold)
	v.SetDefault("augment.suggest_threshold", d.Augment.SuggestThreshold)
	v.SetDefault("augment.max_tokens", d.Augment.MaxTokens)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.cleanup_interval", d.Cache.CleanupInterval)

	v.SetDefault("rate_limiting.requests_per_second", d.RateLimiting.RequestsPerSecond)
	v.SetDefault("rate_limiting.burst_size", d.RateLimiting.BurstSize)

	v.SetDefault("concurrency.workers", d.Concurrency.Workers)

	v.SetDefault("http.timeout", d.HTTP.Timeout)
	v.SetDefault("http.user_agent", d.HTTP.UserAgent)
	v.SetDefault("http.respect_robots", d.HTTP.RespectRobots)
	v.SetDefault("http.http_proxy", d.HTTP.HTTPProxy)
	v.SetDefault("http.https_proxy", d.HTTP.HTTPSProxy)
	v.SetDefault("http.no_proxy", d.HTTP.NoProxy)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.max_body_bytes", d.Server.MaxBodyBytes)

	v.SetDefault("output.verbose", d.Output.Verbose)
	v.SetDefault("output.include_footer", d.Output.IncludeFooter)
}

// loadConfig resolves the effective configuration:
// flags > SYMPTRIAGE_* env > config file > defaults, then provider credentials from env
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	llm.ApplyEnv(&cfg.Augment)
	if noAugment {
		cfg.Augment.Provider = ""
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, nil
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("find home directory: %w", err)
	}
	return filepath.Join(home, ".symptriage"), nil
}
