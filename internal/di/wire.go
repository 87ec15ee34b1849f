//go:build wireinject
// +build wireinject

package di

import (
	"GoldDesk/pkg/config"
	"GoldDesk/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideCandleStore,
		ProvideSnapshotStore,
		ProvideJournalStore,
		ProvideCandlePublisher,
		ProvideMarketSource,
		ProvideCache,

		// Domain services
		ProvideStateMachine,
		ProvideEngine,
		ProvideHub,

		// Use cases
		ProvideSignalUsecase,
		ProvideCandleProcessor,
		ProvideCandleCollector,
		ProvideKafkaCandlesHandler,
		ProvideSnapshotBuilder,
		ProvidePlanUsecase,
		ProvidePatternsUsecase,
		ProvideJournalUsecase,

		// HTTP and application server
		ProvideAPIHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
