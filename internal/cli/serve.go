package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/symptriage/internal/api"
	"github.com/ppiankov/symptriage/internal/worker"
)

var (
	serveAddr string
	clientRPS float64
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the triage engine over HTTP",
	Long: `Serve exposes the engine as a JSON endpoint:

  POST /api/v1/triage   {"text": "..."}  -> triage result
  GET  /-/healthy                        -> liveness
  GET  /metrics                          -> Prometheus metrics

Request bodies are never logged or stored.

Example:
  symptriage serve --addr :8080
  curl -s localhost:8080/api/v1/triage -d '{"text":"mild sore throat"}'`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, :8080)")
	serveCmd.Flags().Float64Var(&clientRPS, "client-rps", 0, "per-client request rate limit (0 disables)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	logger := newLogger(cfg.Output.Verbose)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	p, err := buildEngine(cfg, logger, reg)
	if err != nil {
		return err
	}

	opts := api.Options{
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Registry:     reg,
		Logger:       logger,
	}
	if clientRPS > 0 {
		opts.Limiter = worker.NewLimiter(clientRPS, max(1, int(clientRPS)))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := api.Serve(ctx, cfg.Server.Addr, api.New(p, opts).Handler(), logger); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
