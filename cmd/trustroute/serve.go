package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/trustroute"
	"github.com/aretw0/trustroute/internal/cli"
	"github.com/aretw0/trustroute/internal/presentation/tui"
	httpAdapter "github.com/aretw0/trustroute/pkg/adapters/http"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the decision HTTP server",
	Long:  `Starts the engine and exposes decisions, outcomes and switch events as a JSON API over HTTP.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTP.Addr = addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := cli.Build(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer rt.Close()

		opts := []httpAdapter.Option{
			httpAdapter.WithSwitch(rt.Controller),
			httpAdapter.WithLogger(logger),
		}
		if rt.Registry != nil {
			opts = append(opts, httpAdapter.WithMetrics(rt.Registry))
		}
		srv := &http.Server{
			Addr:    cfg.HTTP.Addr,
			Handler: httpAdapter.NewHandler(rt.Engine, cfg.Metrics.Path, opts...),
		}

		if tui.IsTerminal(os.Stdout) {
			tui.PrintBanner(os.Stdout, trustroute.Version)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("Starting server", "addr", srv.Addr, "backend", cfg.Store.Backend)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			logger.Info("Start shutdown", "timeout", cfg.HTTP.ShutdownTimeout)

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Graceful shutdown did not complete", "err", err)
				return srv.Close()
			}
			logger.Info("Server stopped gracefully")
			return nil
		})
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Listen address (overrides http.addr)")
}
