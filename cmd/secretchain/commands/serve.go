package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/systmms/secretchain/internal/config"
	"github.com/systmms/secretchain/internal/providers"
	"github.com/systmms/secretchain/internal/validation"
	"github.com/systmms/secretchain/pkg/provider"
)

const shutdownTimeout = 5 * time.Second

func NewServeCommand(cfg *config.Config) *cobra.Command {
	var (
		addr           string
		skipValidation bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Keep the provider running and expose metrics",
		Long: `Initialize the configured provider, watching the secrets file when
'watch: true' is set, and serve Prometheus metrics until interrupted.

Endpoints:
  /metrics  Prometheus metrics
  /healthz  200 while the provider is healthy, 503 otherwise

SIGHUP reloads the secrets file. SIGINT and SIGTERM shut down cleanly.

Examples:
  secretchain serve
  secretchain serve --addr 127.0.0.1:9464`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			providers.InitMetrics()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, release, err := loadProvider(ctx, cfg)
			if err != nil {
				return err
			}
			defer release()

			if !skipValidation {
				result := validation.CheckRequired(ctx, p, validation.FromConfig(cfg.Definition.Required), cfg.Logger)
				if err := requireValid(result); err != nil {
					return err
				}
			}

			if addr == "" {
				addr = cfg.Definition.Metrics.Addr
			}
			listener, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", addr, err)
			}

			server := &http.Server{
				Handler:           newServeMux(p),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Serve(listener)
			}()
			cfg.Logger.Info("Serving metrics on %s", listener.Addr())

			hup := make(chan os.Signal, 1)
			signal.Notify(hup, syscall.SIGHUP)
			defer signal.Stop(hup)

			for {
				select {
				case <-hup:
					reload(ctx, cfg, p)
				case err := <-errCh:
					if !errors.Is(err, http.ErrServerClosed) {
						return fmt.Errorf("metrics server failed: %w", err)
					}
					return nil
				case <-ctx.Done():
					cfg.Logger.Info("Shutting down")
					shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
					defer cancel()
					return server.Shutdown(shutdownCtx)
				}
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, "+config.DefaultMetricsAddr+")")
	cmd.Flags().BoolVar(&skipValidation, "skip-validation", false, "Start even when required secrets are missing")

	return cmd
}

func newServeMux(p provider.Provider) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if !p.HealthCheck(r.Context()) {
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		_, _ = fmt.Fprintln(w, "ok")
	})
	return mux
}

func reload(ctx context.Context, cfg *config.Config, p provider.Provider) {
	r, ok := p.(provider.Reloader)
	if !ok {
		cfg.Logger.Debug("Provider %s has nothing to reload", p.Type())
		return
	}
	if err := r.Reload(ctx); err != nil {
		cfg.Logger.Error("Reload failed: %v", err)
		return
	}
	cfg.Logger.Info("Reloaded secrets")
}
