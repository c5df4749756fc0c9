//go:build wireinject
// +build wireinject

package di

import (
	"MarketRadar/pkg/config"
	"MarketRadar/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideStore,
		ProvidePublisher,
		ProvideStreamManager,
		ProvideBinanceStreams,

		// Use cases
		ProvideMarketCollector,
		ProvideAnalysisReader,

		// HTTP
		ProvideMarketHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
