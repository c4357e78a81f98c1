package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/humdrum"
	"github.com/aretw0/humdrum/internal/cli"
	httpAdapter "github.com/aretw0/humdrum/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP front controller",
	Long: `Serves every controller of the site at /c/{controller}. Sessions are
tracked with the X-Session-ID header or the humdrum_session cookie.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.Addr, _ = cmd.Flags().GetString("addr")
		}
		if cmd.Flags().Changed("metrics") {
			cfg.Metrics, _ = cmd.Flags().GetBool("metrics")
		}

		streams := httpAdapter.NewStreamManager()
		appOpts := []humdrum.Option{humdrum.WithObserver(streams.Publish)}
		handlerOpts := []httpAdapter.Option{
			httpAdapter.WithStreams(streams),
			httpAdapter.WithLogger(logger),
		}
		if cfg.Metrics {
			metrics, reg := cli.CreateMetrics()
			appOpts = append(appOpts, humdrum.WithHooks(metrics.Hooks()))
			handlerOpts = append(handlerOpts, httpAdapter.WithMetrics(reg))
		}

		setup, err := cli.CreateApp(cmd.Context(), cfg, logger, appOpts...)
		if err != nil {
			return err
		}
		defer setup.Close()

		srv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           httpAdapter.NewHandler(setup.App, handlerOpts...),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("Starting humdrum server", "addr", srv.Addr, "site", cfg.Site, "store", cfg.Store.Type)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			logger.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Graceful shutdown did not complete", "err", err)
				return srv.Close()
			}
			logger.Info("Server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on (overrides config)")
	serveCmd.Flags().Bool("metrics", false, "Expose Prometheus metrics at /metrics")
}
