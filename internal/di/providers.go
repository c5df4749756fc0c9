package di

import (
	"fmt"

	"MarketRadar/internal/domain/repository"
	"MarketRadar/internal/handler/api"
	internalrepo "MarketRadar/internal/repository"
	"MarketRadar/internal/service/binance"
	"MarketRadar/internal/service/ratelimit"
	"MarketRadar/internal/service/stream"
	"MarketRadar/internal/usecase"
	"MarketRadar/pkg/config"
	apphttp "MarketRadar/pkg/http"
	pkgkafka "MarketRadar/pkg/kafka"
	"MarketRadar/pkg/logger"
	"MarketRadar/pkg/metrics"
	"MarketRadar/pkg/server"
)

// ProvideLogger creates the process logger from config.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideStore opens the preferred series backend, falling back to the
// other on failure.
func ProvideStore(cfg *config.Config, log *logger.Logger, m repository.Metrics) (repository.SeriesStore, error) {
	return internalrepo.Open(cfg, log, m)
}

// ProvidePublisher creates the Kafka tick publisher, or nil when Kafka
// is disabled.
func ProvidePublisher(cfg *config.Config) (repository.Publisher, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
		pkgkafka.WithBatch(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideStreamManager creates the WebSocket subscription registry.
func ProvideStreamManager(log *logger.Logger, m repository.Metrics) *stream.Manager {
	return stream.NewManager(log, m)
}

// ProvideBinanceStreams creates the market stream normalizers.
func ProvideBinanceStreams(
	cfg *config.Config,
	mgr *stream.Manager,
	store repository.SeriesStore,
	pub repository.Publisher,
	m repository.Metrics,
	log *logger.Logger,
) *binance.Streams {
	return binance.New(mgr, store, pub, m, log, cfg.Binance.WebSocketURL, cfg.Binance.ReconnectInterval)
}

// ProvideMarketCollector creates the ingestion use case.
func ProvideMarketCollector(
	cfg *config.Config,
	mgr *stream.Manager,
	streams *binance.Streams,
	pub repository.Publisher,
	log *logger.Logger,
) *usecase.MarketCollector {
	intervals := make([]repository.Interval, 0, len(cfg.Binance.KlineIntervals))
	for _, s := range cfg.Binance.KlineIntervals {
		intervals = append(intervals, repository.NormalizeInterval(s))
	}
	return usecase.NewMarketCollector(mgr, streams, pub, log, cfg.Binance.Symbols, intervals)
}

// ProvideAnalysisReader creates the read side use case.
func ProvideAnalysisReader(store repository.SeriesStore) *usecase.AnalysisReader {
	return usecase.NewAnalysisReader(store)
}

// ProvideMarketHandler creates the HTTP handler set.
func ProvideMarketHandler(
	reader *usecase.AnalysisReader,
	collector *usecase.MarketCollector,
	store repository.SeriesStore,
	log *logger.Logger,
) *api.MarketHandler {
	return api.NewMarketHandler(reader, collector, store, log)
}

// ProvideHTTPServer creates the Echo server with the configured
// middleware chain.
func ProvideHTTPServer(cfg *config.Config, log *logger.Logger) *apphttp.Server {
	opts := []apphttp.ServerOption{
		apphttp.WithPort(cfg.Server.Port),
		apphttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, apphttp.WithMetricsEndpoint(cfg.Metrics.Path))
	}
	if cfg.RateLimit.Enabled {
		limiter := ratelimit.NewLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
		opts = append(opts, apphttp.WithMiddleware(limiter.Middleware()))
	}
	return apphttp.NewServer(log, opts...)
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	store repository.SeriesStore,
	collector *usecase.MarketCollector,
	handler *api.MarketHandler,
	httpServer *apphttp.Server,
) *server.App {
	return server.NewApp(cfg, log, store, collector, handler, httpServer)
}
