//go:build wireinject
// +build wireinject

package di

import (
	"FinCast/pkg/config"
	"FinCast/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideCache,
		ProvideMarketData,

		// Repositories
		ProvideSnapshotStorage,
		ProvideSnapshotPublisher,

		// Use cases
		ProvideSnapshotProcessor,
		ProvideQuoteCollector,
		ProvideKafkaSnapshotsHandler,
		ProvideMarketService,
		ProvideForecastService,

		// HTTP
		ProvideRouter,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
