package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"FinCast/internal/domain/repository"
	"FinCast/internal/handler/api"
	mid "FinCast/internal/middleware"
	internalrepo "FinCast/internal/repository"
	"FinCast/internal/service/fmp"
	"FinCast/internal/usecase"
	pkgcache "FinCast/pkg/cache"
	pkgch "FinCast/pkg/clickhouse"
	"FinCast/pkg/config"
	pkgkafka "FinCast/pkg/kafka"
	applogger "FinCast/pkg/logger"
	"FinCast/pkg/metrics"
	"FinCast/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	if cfg.Environment == "development" || cfg.Environment == "test" {
		format = "console"
	}
	return applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
}

// ProvideClickHouseClient creates a ClickHouse client.
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

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS fincast",
		"CREATE TABLE IF NOT EXISTS fincast.quote_snapshots (ts DateTime, symbol String, price Float64, volume Float64, source String, event_id String) ENGINE=ReplacingMergeTree ORDER BY (symbol, ts, event_id)",
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
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

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideSnapshotStorage creates ClickHouse storage repository.
func ProvideSnapshotStorage(chClient *pkgch.Client, cfg *config.Config) repository.SnapshotStorage {
	return internalrepo.NewClickHouseStorage(chClient.DB(), cfg.ClickHouse.Database+".quote_snapshots")
}

// ProvideSnapshotPublisher creates Kafka publisher repository.
func ProvideSnapshotPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.SnapshotPublisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
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

// ProvideKafkaSnapshotsHandler registers the handler for the snapshots topic.
func ProvideKafkaSnapshotsHandler(store repository.SnapshotStorage, m repository.Metrics, cfg *config.Config) *usecase.KafkaSnapshotsHandler {
	return usecase.NewKafkaSnapshotsHandler(cfg.Kafka.Topic, store, m)
}

// ProvideMarketData creates the upstream API client.
func ProvideMarketData(cfg *config.Config) repository.MarketData {
	opts := []fmp.Option{}
	if cfg.FMP.BaseURL != "" {
		opts = append(opts, fmp.WithBaseURL(cfg.FMP.BaseURL))
	}
	if cfg.FMP.Timeout > 0 {
		opts = append(opts, fmp.WithTimeout(cfg.FMP.Timeout))
	}
	return fmp.New(cfg.FMP.APIKey, opts...)
}

// ProvideCache creates the cache backing the market service: layered
// memory-over-Redis when Redis is enabled, plain in-memory otherwise.
func ProvideCache(cfg *config.Config) (pkgcache.Service, error) {
	if cfg.Redis.Enabled {
		host, port := splitHostPort(cfg.Redis.Addr)
		redisCache, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisHost(host),
			pkgcache.WithRedisPort(port),
			pkgcache.WithRedisPassword(cfg.Redis.Password),
			pkgcache.WithRedisDB(cfg.Redis.DB),
		)
		if err != nil {
			return nil, err
		}
		return pkgcache.NewLayeredCache(redisCache, pkgcache.WithLayeredMemorySize(10000)), nil
	}
	return pkgcache.NewMemoryCache(), nil
}

// splitHostPort parses "host:port", defaulting to localhost:6379.
func splitHostPort(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil || host == "" {
		return "localhost", 6379
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		port = 6379
	}
	return host, port
}

// ProvideSnapshotProcessor creates the snapshot processor use case.
func ProvideSnapshotProcessor(
	pub repository.SnapshotPublisher,
	store repository.SnapshotStorage,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.SnapshotProcessor {
	return usecase.NewSnapshotProcessor(
		pub,
		store,
		m,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideQuoteCollector creates the quote poller use case.
func ProvideQuoteCollector(
	market repository.MarketData,
	processor *usecase.SnapshotProcessor,
	m repository.Metrics,
	log *applogger.Logger,
	cfg *config.Config,
) *usecase.QuoteCollector {
	// Build middleware pipeline between poller and backend
	pipe := mid.NewSnapshotPipeline(processor, m,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewQuoteCollector(market, processor, m, pipe, log, cfg.FMP.Symbols, cfg.FMP.PollInterval)
}

// ProvideMarketService creates the cached market data service.
func ProvideMarketService(market repository.MarketData, cache pkgcache.Service, m repository.Metrics, cfg *config.Config) *usecase.MarketService {
	return usecase.NewMarketService(market, cache, m, usecase.MarketCacheTTL{
		Listings: cfg.Forecast.CacheTTL.Listings,
		Quotes:   cfg.Forecast.CacheTTL.Quotes,
		History:  cfg.Forecast.CacheTTL.History,
	})
}

// ProvideForecastService creates the forecast service.
func ProvideForecastService(market *usecase.MarketService, m repository.Metrics, cfg *config.Config) *usecase.ForecastService {
	return usecase.NewForecastService(market, m, usecase.ForecastLimits{
		MaxSteps:     cfg.Forecast.MaxSteps,
		MaxOrder:     cfg.Forecast.MaxOrder,
		HistoryLimit: cfg.Forecast.HistoryLimit,
	})
}

// ProvideRouter creates the HTTP route registrar.
func ProvideRouter(
	marketSvc *usecase.MarketService,
	forecastSvc *usecase.ForecastService,
	collector *usecase.QuoteCollector,
	log *applogger.Logger,
) *api.Router {
	return api.NewRouter(
		api.NewMarketHandler(marketSvc, collector, log),
		api.NewForecastHandler(forecastSvc, log),
	)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	collector *usecase.QuoteCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaSnapshotsHandler,
	chClient *pkgch.Client,
	router *api.Router,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	app := server.New(cfg, collector, consumer, kh, chClient)
	app.SetHTTPHandler(router)
	if collector != nil {
		app.SnapProc = collector.Processor()
	}
	return app
}
