package server

import (
	"context"
	"sync"

	drepo "SignalDesk/internal/domain/repository"
	"SignalDesk/internal/usecase"
	"SignalDesk/pkg/config"
	xhttp "SignalDesk/pkg/http"
	applogger "SignalDesk/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	ticker     *usecase.TickDriver
	collector  *usecase.SettlementCollector
	httpServer *xhttp.Server
	publisher  drepo.EventPublisher
}

// New creates a new App. collector may be nil when no settlement feed is configured.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	ticker *usecase.TickDriver,
	collector *usecase.SettlementCollector,
	httpServer *xhttp.Server,
	publisher drepo.EventPublisher,
) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		ticker:     ticker,
		collector:  collector,
		httpServer: httpServer,
		publisher:  publisher,
	}
}

// Run starts the background workers and the HTTP server and blocks until ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.ticker.Run(ctx)
	}()

	if a.collector != nil {
		if err := a.collector.Start(ctx); err != nil {
			// the engine still works without outcomes; signals simply expire
			a.log.Error("settlement feed unavailable", applogger.Error(err))
		} else {
			a.log.Info("settlement feed started", applogger.String("url", a.cfg.Settlement.WebSocketURL))
		}
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("signal desk started",
		applogger.String("env", a.cfg.Environment),
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("scorer", a.cfg.Scorer.Type),
		applogger.String("events", a.cfg.Events.Backend),
		applogger.Bool("settlement_feed", a.collector != nil),
	)

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	cancel()
	wg.Wait()
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.collector != nil {
		if err := a.collector.Stop(); err != nil {
			a.log.Warn("settlement feed stop error", applogger.Error(err))
		}
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("event publisher close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
