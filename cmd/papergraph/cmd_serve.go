package main

import (
	"context"
	stderrors "errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"papergraph-backend/internal/config"
	"papergraph-backend/internal/di"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the graph over HTTP",
		Long: `Serve the REST API until SIGINT or SIGTERM.

The stored snapshot is restored on start. With storage.autosave enabled
every committed change is written back; the graph is flushed once more
on shutdown. In development, config file edits are applied live.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	c, cleanup, err := di.InitializeContainer(ctx, a.cfg, a.logger, di.Version(version))
	if err != nil {
		return err
	}
	defer cleanup()
	logger := c.Logger

	if err := c.Autosaver.Restore(ctx); err != nil {
		return err
	}
	if a.cfg.Storage.Autosave {
		unsubscribe := c.Autosaver.Start()
		defer unsubscribe()
	}

	srv := &http.Server{
		Addr:         a.cfg.Server.Address(),
		Handler:      c.Router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	watcher := config.NewWatcher(a.loader, a.cfg, logger)
	watcher.OnChange(func(next *config.Config) {
		if err := a.logger.SetLevel(next.Logging.Level); err != nil {
			logger.Warn("log level not applied", zap.Error(err))
			return
		}
		logger.Info("log level updated", zap.String("level", next.Logging.Level))
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening",
			zap.String("addr", srv.Addr),
			zap.String("environment", string(a.cfg.Environment)),
			zap.String("paper_id", a.cfg.PaperID),
		)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return watcher.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("Shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		c.Coordinator.Wait()
		return c.Autosaver.Flush(shutdownCtx)
	})

	return g.Wait()
}
