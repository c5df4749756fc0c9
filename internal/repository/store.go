package repository

import (
	"context"
	"fmt"
	"time"

	"MarketRadar/internal/domain/models"
	repo "MarketRadar/internal/domain/repository"
	"MarketRadar/pkg/config"
	applogger "MarketRadar/pkg/logger"
)

// Open selects the series store backend once at process startup: it attempts
// the preferred backend from config and, if initialization fails, permanently
// falls back to the secondary for the process lifetime. Both failing is fatal
// to startup.
func Open(cfg *config.Config, log *applogger.Logger, metrics repo.Metrics) (repo.SeriesStore, error) {
	retention := retentionFromConfig(cfg)

	order := []string{"redis", "sqlite"}
	if cfg.Storage.Backend == "sqlite" {
		order = []string{"sqlite", "redis"}
	}

	var firstErr error
	for i, backend := range order {
		store, err := openBackend(backend, cfg, retention, log)
		if err == nil {
			if i > 0 {
				log.Warn("preferred store backend unavailable, using fallback",
					applogger.String("preferred", order[0]),
					applogger.String("backend", backend),
					applogger.Error(firstErr),
				)
			} else {
				log.Info("series store ready", applogger.String("backend", backend))
			}
			return &instrumentedStore{inner: store, backend: backend, metrics: metrics}, nil
		}
		if i == 0 {
			firstErr = err
			continue
		}
		return nil, fmt.Errorf("store init failed: %s: %v; fallback %s: %w", order[0], firstErr, backend, err)
	}
	return nil, firstErr
}

func openBackend(backend string, cfg *config.Config, retention repo.RetentionTiers, log *applogger.Logger) (repo.SeriesStore, error) {
	switch backend {
	case "redis":
		return NewRedisStore(RedisConfig{
			Host:     cfg.Storage.Redis.Host,
			Port:     cfg.Storage.Redis.Port,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
			Prefix:   cfg.Storage.Redis.Prefix,
			PoolSize: cfg.Storage.Redis.PoolSize,
		}, retention, log)
	case "sqlite":
		return NewSQLiteStore(cfg.Storage.SQLite.Path, retention, log)
	default:
		return nil, fmt.Errorf("unknown store backend: %s", backend)
	}
}

func retentionFromConfig(cfg *config.Config) repo.RetentionTiers {
	tiers := repo.DefaultRetention()
	for tier, age := range cfg.Storage.Retention {
		tiers[repo.Interval(tier)] = age
	}
	return tiers
}

// instrumentedStore decorates a backend with Prometheus latency observations.
type instrumentedStore struct {
	inner   repo.SeriesStore
	backend string
	metrics repo.Metrics
}

func (s *instrumentedStore) observe(op string, start time.Time, err error) {
	s.metrics.RecordStoreOp(op, s.backend, time.Since(start).Seconds())
	if err != nil {
		s.metrics.RecordError("store_" + op)
	}
}

func (s *instrumentedStore) PutCandle(ctx context.Context, c *models.Candle) error {
	start := time.Now()
	err := s.inner.PutCandle(ctx, c)
	s.observe("put_candle", start, err)
	return err
}

func (s *instrumentedStore) PutTick(ctx context.Context, t *models.Tick) error {
	start := time.Now()
	err := s.inner.PutTick(ctx, t)
	s.observe("put_tick", start, err)
	return err
}

func (s *instrumentedStore) GetCandles(ctx context.Context, symbol string, iv repo.Interval, limit int) ([]models.Candle, error) {
	start := time.Now()
	out, err := s.inner.GetCandles(ctx, symbol, iv, limit)
	s.observe("get_candles", start, err)
	return out, err
}

func (s *instrumentedStore) PutNews(ctx context.Context, source string, rec *models.NewsRecord) error {
	start := time.Now()
	err := s.inner.PutNews(ctx, source, rec)
	s.observe("put_news", start, err)
	return err
}

func (s *instrumentedStore) GetNews(ctx context.Context, limit int, f repo.NewsFilter) ([]models.NewsRecord, error) {
	start := time.Now()
	out, err := s.inner.GetNews(ctx, limit, f)
	s.observe("get_news", start, err)
	return out, err
}

func (s *instrumentedStore) PutAnalysisSnapshot(ctx context.Context, snap *models.AnalysisSnapshot) error {
	start := time.Now()
	err := s.inner.PutAnalysisSnapshot(ctx, snap)
	s.observe("put_snapshot", start, err)
	return err
}

func (s *instrumentedStore) LatestAnalysisSnapshot(ctx context.Context) (*models.AnalysisSnapshot, error) {
	start := time.Now()
	out, err := s.inner.LatestAnalysisSnapshot(ctx)
	if err == repo.ErrNoSnapshot {
		// Absence is a defined result, not a store failure.
		s.metrics.RecordStoreOp("latest_snapshot", s.backend, time.Since(start).Seconds())
		return nil, err
	}
	s.observe("latest_snapshot", start, err)
	return out, err
}

func (s *instrumentedStore) Health(ctx context.Context) error {
	return s.inner.Health(ctx)
}

func (s *instrumentedStore) Close() error {
	return s.inner.Close()
}
