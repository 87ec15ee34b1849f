package di

import (
	"context"
	"fmt"
	"time"

	"GoldDesk/internal/domain/models"
	"GoldDesk/internal/domain/repository"
	"GoldDesk/internal/handler/api"
	internalrepo "GoldDesk/internal/repository"
	icache "GoldDesk/internal/service/cache"
	"GoldDesk/internal/service/oanda"
	"GoldDesk/internal/services/killzone"
	"GoldDesk/internal/services/plan"
	"GoldDesk/internal/usecase"
	pkgch "GoldDesk/pkg/clickhouse"
	"GoldDesk/pkg/config"
	pkgkafka "GoldDesk/pkg/kafka"
	"GoldDesk/pkg/logger"
	"GoldDesk/pkg/metrics"
	"GoldDesk/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	level := "info"
	if cfg.Environment == "development" {
		level = "debug"
	}
	return logger.New(&logger.Config{Level: level, Format: "console", Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client and runs the schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, internalrepo.SchemaStatements(cfg.ClickHouse.Database)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCandleStore creates the ClickHouse candle repository.
func ProvideCandleStore(chClient *pkgch.Client, cfg *config.Config) repository.CandleStore {
	return internalrepo.NewClickHouseCandleStore(chClient.DB(), cfg.ClickHouse.Database)
}

// ProvideSnapshotStore creates the daily snapshot repository.
func ProvideSnapshotStore(chClient *pkgch.Client, cfg *config.Config) repository.SnapshotStore {
	return internalrepo.NewClickHouseSnapshotStore(chClient.DB(), cfg.ClickHouse.Database)
}

// ProvideJournalStore creates the trade journal repository.
func ProvideJournalStore(chClient *pkgch.Client, cfg *config.Config) repository.JournalStore {
	return internalrepo.NewClickHouseJournalStore(chClient.DB(), cfg.ClickHouse.Database)
}

// ProvideCandlePublisher creates the Kafka candle publisher.
func ProvideCandlePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaCandlePublisher(producer, cfg.Kafka.Topic)
}

// ProvideMarketSource creates the OANDA REST candle source.
func ProvideMarketSource(cfg *config.Config, l *logger.Logger) repository.MarketSource {
	return oanda.NewClient(oanda.Config{
		APIKey:      cfg.Oanda.APIKey,
		BaseURL:     cfg.Oanda.BaseURL,
		Instrument:  cfg.Oanda.Instrument,
		Granularity: cfg.Oanda.Granularity,
		Price:       cfg.Oanda.Price,
		Timeout:     cfg.Oanda.Timeout,
	}, l)
}

// ProvideStateMachine builds the session state machine from config.
func ProvideStateMachine(cfg *config.Config) (*killzone.StateMachine, error) {
	loc, err := time.LoadLocation(cfg.Session.Location)
	if err != nil {
		return nil, fmt.Errorf("session location: %w", err)
	}

	session := killzone.DefaultSession(loc)
	if cfg.Session.Quota > 0 {
		session.Quota = cfg.Session.Quota
	}
	if cfg.Session.Start != "" {
		if session.Start, err = killzone.ParseTimeOfDay(cfg.Session.Start); err != nil {
			return nil, err
		}
	}
	if cfg.Session.End != "" {
		if session.End, err = killzone.ParseTimeOfDay(cfg.Session.End); err != nil {
			return nil, err
		}
	}
	if len(cfg.Session.Windows) > 0 {
		windows := make([]killzone.Window, 0, len(cfg.Session.Windows))
		for _, w := range cfg.Session.Windows {
			start, err := killzone.ParseTimeOfDay(w.Start)
			if err != nil {
				return nil, err
			}
			end, err := killzone.ParseTimeOfDay(w.End)
			if err != nil {
				return nil, err
			}
			dir, err := models.ParseDirection(w.Direction)
			if err != nil {
				return nil, err
			}
			windows = append(windows, killzone.Window{Start: start, End: end, Direction: dir})
		}
		session.Windows = windows
	}
	return killzone.NewStateMachine(session), nil
}

// ProvideEngine builds the kill-zone engine.
func ProvideEngine(cfg *config.Config, state *killzone.StateMachine) *killzone.Engine {
	ec := killzone.DefaultEngineConfig()
	ec.StopMin = cfg.Engine.StopMin
	ec.StopMax = cfg.Engine.StopMax
	ec.TightStopLimit = cfg.Engine.TightStopLimit
	ec.TargetCount = cfg.Engine.TargetCount
	ec.MinWick = cfg.Engine.MinWick
	ec.TouchTolerance = cfg.Engine.TouchTolerance
	ec.MinRejection = cfg.Engine.MinRejection
	ec.ScanLevels = cfg.Engine.ScanLevels
	return killzone.NewEngine(ec, state)
}

// ProvideCache picks Redis when enabled, in-process TTL cache otherwise.
func ProvideCache(cfg *config.Config) icache.BytesCache {
	if cfg.Cache.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideHub creates the websocket broadcast hub.
func ProvideHub(l *logger.Logger) *api.Hub {
	return api.NewHub(l)
}

// ProvideSignalUsecase wires the engine to metrics and the hub.
func ProvideSignalUsecase(engine *killzone.Engine, m repository.Metrics, l *logger.Logger, hub *api.Hub) *usecase.SignalUsecase {
	return usecase.NewSignalUsecase(engine, m, l, hub)
}

// ProvideCandleProcessor creates the backend-routing processor.
func ProvideCandleProcessor(
	pub repository.Publisher,
	store repository.CandleStore,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.CandleProcessor {
	return usecase.NewCandleProcessor(pub, store, m, cfg.Backend.Type)
}

// ProvideCandleCollector creates the polling collector.
func ProvideCandleCollector(
	source repository.MarketSource,
	processor *usecase.CandleProcessor,
	m repository.Metrics,
	l *logger.Logger,
	signals *usecase.SignalUsecase,
	cfg *config.Config,
) *usecase.CandleCollector {
	return usecase.NewCandleCollector(source, processor, m, l, signals, cfg.Oanda.Instrument, cfg.Oanda.PollInterval)
}

// ProvideKafkaCandlesHandler registers the handler for the candles topic.
func ProvideKafkaCandlesHandler(store repository.CandleStore, m repository.Metrics, cfg *config.Config) *usecase.KafkaCandlesHandler {
	return usecase.NewKafkaCandlesHandler(cfg.Kafka.Topic, store, m)
}

// ProvideSnapshotBuilder creates the daily snapshot builder.
func ProvideSnapshotBuilder(
	source repository.MarketSource,
	store repository.SnapshotStore,
	m repository.Metrics,
	l *logger.Logger,
	cfg *config.Config,
) (*usecase.SnapshotBuilder, error) {
	loc, err := time.LoadLocation(cfg.Session.Location)
	if err != nil {
		return nil, fmt.Errorf("session location: %w", err)
	}
	anchor, err := killzone.ParseTimeOfDay(cfg.Snapshots.AnchorTime)
	if err != nil {
		return nil, err
	}
	return usecase.NewSnapshotBuilder(source, store, m, l, usecase.SnapshotBuilderConfig{
		Instrument:  cfg.Oanda.Instrument,
		Granularity: cfg.Oanda.Granularity,
		Anchor:      anchor,
		UseUTC:      cfg.Snapshots.UseUTC,
		Location:    loc,
		Years:       cfg.Snapshots.Years,
	}), nil
}

// ProvidePlanUsecase creates the cached plan usecase.
func ProvidePlanUsecase(
	store repository.SnapshotStore,
	m repository.Metrics,
	l *logger.Logger,
	c icache.BytesCache,
	cfg *config.Config,
) *usecase.PlanUsecase {
	ttl := cfg.Cache.PlanTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return usecase.NewPlanUsecase(store, m, l, c, ttl, plan.Params{
		Step:        cfg.Plan.Step,
		Proximity:   cfg.Plan.Proximity,
		MinRR:       cfg.Plan.MinRR,
		CohortMin:   cfg.Plan.CohortMin,
		WinRateBuy:  cfg.Plan.WinRateBuy,
		WinRateSell: cfg.Plan.WinRateSell,
		MeanBias:    cfg.Plan.MeanBias,
	})
}

// ProvidePatternsUsecase creates the similarity usecase.
func ProvidePatternsUsecase(journal repository.JournalStore, m repository.Metrics, l *logger.Logger) *usecase.PatternsUsecase {
	return usecase.NewPatternsUsecase(journal, m, l)
}

// ProvideJournalUsecase creates the journal usecase.
func ProvideJournalUsecase(journal repository.JournalStore, m repository.Metrics, l *logger.Logger) *usecase.JournalUsecase {
	return usecase.NewJournalUsecase(journal, m, l)
}

// ProvideAPIHandler creates the HTTP handler.
func ProvideAPIHandler(
	l *logger.Logger,
	signals *usecase.SignalUsecase,
	plans *usecase.PlanUsecase,
	patterns *usecase.PatternsUsecase,
	journal *usecase.JournalUsecase,
	builder *usecase.SnapshotBuilder,
	candles repository.CandleStore,
	hub *api.Hub,
) *api.Handler {
	return api.NewHandler(l, signals, plans, patterns, journal, builder, candles, hub)
}

// kafkaLogPublisher adapts the Kafka producer to the log collector.
type kafkaLogPublisher struct {
	producer *pkgkafka.Producer
}

func (p kafkaLogPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	collector *usecase.CandleCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaCandlesHandler,
	producer *pkgkafka.Producer,
	chClient *pkgch.Client,
	handler *api.Handler,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	// On the kafka backend, error lines also ship as aggregated batches on
	// a sibling topic.
	if cfg.Backend.Type == "kafka" && producer != nil {
		l.AddCollector(&logger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          cfg.Kafka.Topic + ".logs",
			Publisher:      kafkaLogPublisher{producer: producer},
		})
	}
	app := server.New(cfg, l, collector, consumer, kh, chClient)
	app.SetHTTPHandler(handler)
	return app
}
