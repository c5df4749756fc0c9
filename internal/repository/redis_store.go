package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"MarketRadar/internal/domain/models"
	repo "MarketRadar/internal/domain/repository"
	applogger "MarketRadar/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the Redis series store.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string
	PoolSize int
}

// redisStore implements SeriesStore on Redis. Candle series live in sorted
// sets scored by timestamp so retention and ordering are range operations;
// news and analysis records are JSON values referenced from timeline sorted
// sets plus plain-set secondary indices.
type redisStore struct {
	client    *redis.Client
	prefix    string
	retention repo.RetentionTiers
	log       *applogger.Logger
	now       func() time.Time
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg RedisConfig, retention repo.RetentionTiers, log *applogger.Logger) (repo.SeriesStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "marketradar"
	}
	return &redisStore{
		client:    client,
		prefix:    prefix,
		retention: retention,
		log:       log,
		now:       time.Now,
	}, nil
}

func (s *redisStore) key(parts ...string) string {
	k := s.prefix
	for _, p := range parts {
		k += ":" + p
	}
	return k
}

func (s *redisStore) candleKey(symbol string, iv repo.Interval) string {
	return s.key("ts", "candle", symbol, string(iv))
}

func (s *redisStore) PutCandle(ctx context.Context, c *models.Candle) error {
	if c == nil {
		return fmt.Errorf("candle is nil")
	}
	iv := repo.Interval(c.Interval)
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal candle: %w", err)
	}

	key := s.candleKey(c.Symbol, iv)
	ttl := s.retention.MaxAge(iv)
	score := strconv.FormatInt(c.Timestamp, 10)

	// One member per timestamp: drop any prior record at the same score
	// before adding, so an overwrite never duplicates the series entry.
	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, score, score)
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(c.Timestamp), Member: string(b)})
	pipe.ZRemRangeByScore(ctx, key, "-inf", "("+strconv.FormatInt(s.cutoff(iv), 10))
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("put candle %s/%s: %w", c.Symbol, c.Interval, err)
	}
	return nil
}

func (s *redisStore) PutTick(ctx context.Context, t *models.Tick) error {
	if t == nil {
		return fmt.Errorf("tick is nil")
	}
	return s.PutCandle(ctx, t.Candle())
}

func (s *redisStore) GetCandles(ctx context.Context, symbol string, iv repo.Interval, limit int) ([]models.Candle, error) {
	if limit <= 0 {
		return nil, nil
	}
	key := s.candleKey(symbol, iv)

	// Most-recent first from the backend, then re-sorted ascending; expired
	// entries are excluded by score.
	members, err := s.client.ZRevRangeByScore(ctx, key, &redis.ZRangeBy{
		Min:   strconv.FormatInt(s.cutoff(iv), 10),
		Max:   "+inf",
		Count: int64(limit),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("get candles %s/%s: %w", symbol, iv, err)
	}

	out := make([]models.Candle, 0, len(members))
	for _, m := range members {
		var c models.Candle
		if err := json.Unmarshal([]byte(m), &c); err != nil {
			s.log.Warn("skipping unreadable candle entry",
				applogger.String("symbol", symbol),
				applogger.String("interval", string(iv)),
				applogger.Error(err),
			)
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

func (s *redisStore) PutNews(ctx context.Context, source string, rec *models.NewsRecord) error {
	if rec == nil || rec.ID == "" {
		return fmt.Errorf("news record requires an id")
	}
	if rec.Source == "" {
		rec.Source = source
	}
	if rec.Timestamp == 0 {
		rec.Timestamp = s.now().Unix()
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal news: %w", err)
	}

	ttl := s.retention.MaxAge(repo.RetentionNews)

	// The record write and its index writes are separate commands; a reader
	// tolerates an index entry whose record is gone.
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key("news", "item", rec.ID), b, ttl)
	pipe.ZAdd(ctx, s.key("news", "timeline"), redis.Z{Score: float64(rec.Timestamp), Member: rec.ID})
	for _, cat := range rec.Categories {
		pipe.SAdd(ctx, s.key("news", "category", cat), rec.ID)
		pipe.Expire(ctx, s.key("news", "category", cat), ttl)
	}
	for _, asset := range rec.RelatedAssets {
		pipe.SAdd(ctx, s.key("news", "asset", asset), rec.ID)
		pipe.Expire(ctx, s.key("news", "asset", asset), ttl)
	}
	pipe.ZRemRangeByScore(ctx, s.key("news", "timeline"), "-inf",
		"("+strconv.FormatInt(s.cutoff(repo.RetentionNews), 10))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("put news %s: %w", rec.ID, err)
	}
	return nil
}

func (s *redisStore) GetNews(ctx context.Context, limit int, f repo.NewsFilter) ([]models.NewsRecord, error) {
	if limit <= 0 {
		return nil, nil
	}

	var ids []string
	var err error
	switch {
	case f.Category != "":
		ids, err = s.client.SMembers(ctx, s.key("news", "category", f.Category)).Result()
	case f.Asset != "":
		ids, err = s.client.SMembers(ctx, s.key("news", "asset", f.Asset)).Result()
	default:
		ids, err = s.client.ZRevRangeByScore(ctx, s.key("news", "timeline"), &redis.ZRangeBy{
			Min:   strconv.FormatInt(s.cutoff(repo.RetentionNews), 10),
			Max:   "+inf",
			Count: int64(limit),
		}).Result()
	}
	if err != nil {
		return nil, fmt.Errorf("get news ids: %w", err)
	}

	cut := s.cutoff(repo.RetentionNews)
	out := make([]models.NewsRecord, 0, len(ids))
	for _, id := range ids {
		raw, err := s.client.Get(ctx, s.key("news", "item", id)).Bytes()
		if errors.Is(err, redis.Nil) {
			// Index entry outlived the record; degraded, not fatal.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get news %s: %w", id, err)
		}
		var rec models.NewsRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			s.log.Warn("skipping unreadable news entry", applogger.String("id", id), applogger.Error(err))
			continue
		}
		if rec.Timestamp < cut {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *redisStore) PutAnalysisSnapshot(ctx context.Context, snap *models.AnalysisSnapshot) error {
	if snap == nil {
		return fmt.Errorf("snapshot is nil")
	}
	if snap.Timestamp == 0 {
		snap.Timestamp = s.now().Unix()
	}
	if snap.ID == "" {
		snap.ID = fmt.Sprintf("analysis_%d", snap.Timestamp)
	}
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	ttl := s.retention.MaxAge(repo.RetentionAnalysis)
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key("analysis", "item", snap.ID), b, ttl)
	pipe.ZAdd(ctx, s.key("analysis", "timeline"), redis.Z{Score: float64(snap.Timestamp), Member: snap.ID})
	pipe.ZRemRangeByScore(ctx, s.key("analysis", "timeline"), "-inf",
		"("+strconv.FormatInt(s.cutoff(repo.RetentionAnalysis), 10))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("put snapshot %s: %w", snap.ID, err)
	}
	return nil
}

func (s *redisStore) LatestAnalysisSnapshot(ctx context.Context) (*models.AnalysisSnapshot, error) {
	ids, err := s.client.ZRevRangeByScore(ctx, s.key("analysis", "timeline"), &redis.ZRangeBy{
		Min:   strconv.FormatInt(s.cutoff(repo.RetentionAnalysis), 10),
		Max:   "+inf",
		Count: 8,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("latest snapshot ids: %w", err)
	}
	for _, id := range ids {
		raw, err := s.client.Get(ctx, s.key("analysis", "item", id)).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get snapshot %s: %w", id, err)
		}
		var snap models.AnalysisSnapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			return nil, fmt.Errorf("decode snapshot %s: %w", id, err)
		}
		return &snap, nil
	}
	return nil, repo.ErrNoSnapshot
}

func (s *redisStore) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}

// cutoff returns the oldest still-visible timestamp for a tier.
func (s *redisStore) cutoff(iv repo.Interval) int64 {
	return s.now().Add(-s.retention.MaxAge(iv)).Unix()
}
