//go:build wireinject
// +build wireinject

package di

import (
	"SignalDesk/pkg/config"
	"SignalDesk/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,
		ProvideClock,

		// Domain
		ProvideCatalog,
		ProvideScorer,
		ProvideTimeframePolicy,
		ProvideHistory,

		// Infrastructure
		ProvideEventPublisher,

		// Use cases
		ProvideLifecycle,
		ProvideOrchestrator,
		ProvideTickDriver,
		ProvideSettlementCollector,

		// Presentation
		ProvideRateLimiter,
		ProvideSignalsHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
