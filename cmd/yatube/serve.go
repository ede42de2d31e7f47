package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yatube/internal/cache"
	"yatube/internal/db"
	"yatube/internal/repository"
	"yatube/internal/router"
	"yatube/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(a *app) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "apply the schema before serving")
	return cmd
}

func (a *app) serve(ctx context.Context, migrate bool) error {
	cfg := a.cfg
	if !a.cfg.Log.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	gdb, err := a.openDB()
	if err != nil {
		return err
	}
	if migrate {
		if err := db.Migrate(gdb, a.logger); err != nil {
			return err
		}
	}

	pageCache, err := cache.New(ctx, cfg.Cache, a.logger)
	if err != nil {
		return err
	}
	media, err := storage.New(ctx, cfg.Storage, a.logger)
	if err != nil {
		return err
	}

	engine, err := router.New(router.Deps{
		Config:  cfg,
		Logger:  a.logger,
		Repo:    repository.New(gdb),
		Cache:   pageCache,
		Storage: media,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:           ":" + cfg.Server.Port,
		Handler:        engine,
		MaxHeaderBytes: 1 << 20,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("Server started", zap.String("addr", srv.Addr), zap.String("site_url", cfg.Server.SiteURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
