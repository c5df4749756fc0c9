// Package server ties the collector, store and HTTP API into one
// process lifecycle.
package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MarketRadar/internal/domain/repository"
	"MarketRadar/internal/handler/api"
	"MarketRadar/internal/usecase"
	"MarketRadar/pkg/config"
	apphttp "MarketRadar/pkg/http"
	"MarketRadar/pkg/logger"
)

// App owns every long-lived component of the process.
type App struct {
	cfg       *config.Config
	log       *logger.Logger
	store     repository.SeriesStore
	collector *usecase.MarketCollector
	handler   *api.MarketHandler
	http      *apphttp.Server
}

func NewApp(
	cfg *config.Config,
	log *logger.Logger,
	store repository.SeriesStore,
	collector *usecase.MarketCollector,
	handler *api.MarketHandler,
	httpServer *apphttp.Server,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		store:     store,
		collector: collector,
		handler:   handler,
		http:      httpServer,
	}
}

// Run starts ingestion and serving, then blocks until SIGINT/SIGTERM
// or until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.collector.Start(ctx); err != nil {
		return err
	}

	a.handler.Register(a.http.Echo())

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.http.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.log.Info("shutdown signal received", logger.String("signal", sig.String()))
	case <-ctx.Done():
		a.log.Info("context cancelled")
	case err := <-errCh:
		if err != nil {
			a.log.Error("http server failed", logger.Error(err))
			a.shutdown()
			return err
		}
	}

	a.shutdown()
	return nil
}

func (a *App) shutdown() {
	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	a.collector.Shutdown()

	if err := a.http.Shutdown(ctx); err != nil {
		a.log.Warn("http shutdown", logger.Error(err))
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn("store close", logger.Error(err))
	}
	a.log.Info("shutdown complete")
}
