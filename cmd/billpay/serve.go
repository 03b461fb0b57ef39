package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/xraph/billpay"
	audithook "github.com/xraph/billpay/audit_hook"
	"github.com/xraph/billpay/internal/config"
	"github.com/xraph/billpay/internal/logger"
	"github.com/xraph/billpay/internal/server"
	"github.com/xraph/billpay/invoice"
	"github.com/xraph/billpay/observability"
	"github.com/xraph/billpay/seed"
	"github.com/xraph/billpay/store/memory"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the billpay HTTP server on an in-memory ledger.

Examples:
  billpay serve
  PORT=8080 billpay serve --config billpay.yaml`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) (err error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.LogConfig{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		TimeFormat: time.RFC3339,
		Output:     cfg.LogOutput,
	})
	if err != nil {
		return err
	}
	defer log.Close()

	invs, err := seed.Resolve(cfg.SeedFile)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	auditLog := log.WithComponent("audit")
	audit := audithook.New(audithook.RecorderFunc(func(_ context.Context, ev *audithook.AuditEvent) error {
		auditLog.Info().
			Str("action", ev.Action).
			Str("resource_id", ev.ResourceID).
			Str("outcome", ev.Outcome).
			Str("severity", ev.Severity).
			Fields(ev.Metadata).
			Msg("audit")
		return nil
	}), audithook.WithLogger(log.Slog("audit-hook")))

	ledger := billpay.New(memory.New(),
		billpay.WithLogger(log.Slog("ledger")),
		billpay.WithPlugin(observability.NewMetricsExtension(observability.NewPrometheusFactory(reg))),
		billpay.WithPlugin(audit),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := startLedger(ctx, ledger, invs); err != nil {
		return err
	}
	defer func() {
		if stopErr := ledger.Stop(); stopErr != nil {
			err = errors.Join(err, stopErr)
		}
	}()

	return serve(ctx, cfg, log.Logger, ledger, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
}

// startLedger starts l and loads invs. On failure l is stopped again.
func startLedger(ctx context.Context, l *billpay.Ledger, invs []*invoice.Invoice) error {
	err := l.Start(ctx)
	if err == nil {
		_, err = l.Seed(ctx, invs)
	}
	if err != nil {
		return errors.Join(err, l.Stop())
	}
	return nil
}

func serve(ctx context.Context, cfg *config.Config, log zerolog.Logger, ledger *billpay.Ledger, metrics http.Handler) error {
	gin.SetMode(gin.ReleaseMode)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      server.New(ledger, log.With().Str("component", "http").Logger(), server.WithMetricsHandler(metrics)).Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server is running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	return nil
}
