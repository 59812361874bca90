package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/lead-console/internal/api"
	"github.com/ignite/lead-console/internal/config"
	"github.com/ignite/lead-console/internal/dashboard"
	"github.com/ignite/lead-console/internal/leadtable"
	"github.com/ignite/lead-console/internal/pipeline"
	"github.com/ignite/lead-console/internal/pkg/logger"
	"github.com/ignite/lead-console/internal/reconcile"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	logger.SetRedactPII(!cfg.Log.DisableRedaction)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		logger.Error("failed to open lead store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	runner := reconcile.NewRunner(store)
	dash := dashboard.NewView(store, runner)
	board := pipeline.NewBoard(store, runner)
	table := leadtable.NewTable(store, runner)

	// Views load independently; a failure here only means the first request
	// loads again.
	var g errgroup.Group
	g.Go(func() error { return dash.Load(ctx) })
	g.Go(func() error { return board.Load(ctx) })
	g.Go(func() error { return table.Load(ctx) })
	if err := g.Wait(); err != nil {
		logger.Warn("initial load incomplete", "error", err)
	}

	handlers := api.NewHandlers(dash, board, table)
	server := api.NewServer(cfg, handlers, api.NewHealthChecker(store, cfg.Store.Driver))

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("starting server", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// let submitted writes reach the store
	flushed := make(chan struct{})
	go func() {
		runner.Wait()
		close(flushed)
	}()
	select {
	case <-flushed:
	case <-shutdownCtx.Done():
		logger.Warn("pending writes abandoned at shutdown")
	}

	logger.Info("server stopped")
}
