package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"business-finder/internal/api"
	"business-finder/internal/common/config"
	"business-finder/internal/common/observability"
	"business-finder/internal/finder"

	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the search API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Address = addr
			}
			return a.runServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from server.address)")
	return cmd
}

func (a *app) runServe(ctx context.Context) error {
	obs := observability.New(a.cfg.App.Name)
	defer obs.Shutdown()

	store, closeStore, err := finder.NewStore(a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	svc, err := finder.New(finder.Options{
		AppConfig:     a.cfg,
		Provider:      finder.NewProvider(a.cfg, a.logger),
		Store:         store,
		Observability: obs,
		Logger:        a.logger,
	})
	if err != nil {
		return err
	}

	if err := svc.Ready(); err != nil {
		// keep serving so /ready reports the problem
		a.logger.Warn("search provider not ready", map[string]interface{}{"error": err.Error()})
	}

	server := api.NewServer(api.Options{
		Config: &a.cfg.Server,
		Finder: svc,
		Logger: a.logger,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	case <-ctx.Done():
	}

	a.logger.Info("shutting down http server", nil)

	timeout := 10 * time.Second
	if a.cfg.Server.ShutdownTimeout > 0 {
		timeout = config.GetDuration(a.cfg.Server.ShutdownTimeout)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
