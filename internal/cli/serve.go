package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/TwigBush/roleguard/internal/config"
	"github.com/TwigBush/roleguard/internal/di"
	"github.com/TwigBush/roleguard/internal/server"
	"github.com/TwigBush/roleguard/internal/telemetry"
	"github.com/TwigBush/roleguard/internal/version"
)

const shutdownGrace = 10 * time.Second

// Starts the forward-auth server
func cmdServe() *cobra.Command {
	var listen string
	var cors bool

	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve the authorize endpoint for reverse proxies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Listen = listen
			}
			logger := cfg.Log.Logger(os.Stderr)

			shutdownTracing, err := telemetry.Setup(cmd.Context(), cfg.Tracing)
			if err != nil {
				return err
			}
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
				defer cancel()
				if err := shutdownTracing(sctx); err != nil {
					logger.Warn("tracing_shutdown", "err", err)
				}
			}()

			deps, err := di.Provide(cfg, logger)
			if err != nil {
				return err
			}
			defer deps.Close()

			h := server.BuildRouter(server.Deps{
				Guard:      deps.Guard,
				Operations: deps.Table.Operations,
				Metrics:    deps.Metrics.Handler(),
				Logger:     logger,
			}, server.Options{
				EnableCORS:     cors,
				RequestTimeout: cfg.RequestTimeout,
			})

			srv := &http.Server{
				Addr:              cfg.Listen,
				Handler:           h,
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Info("listening",
					"addr", srv.Addr,
					"version", version.Version,
					"backend", cfg.Grants.Backend,
					"operations", deps.Table.Len(),
				)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				sctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
				defer cancel()
				logger.Info("shutting_down")
				return srv.Shutdown(sctx)
			})
			return g.Wait()
		},
	}
	c.Flags().StringVar(&listen, "listen", "", "listen address, overrides the config file")
	c.Flags().BoolVar(&cors, "cors", false, "enable permissive CORS")
	return c
}
