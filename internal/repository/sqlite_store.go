package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"MarketRadar/internal/domain/models"
	repo "MarketRadar/internal/domain/repository"
	applogger "MarketRadar/pkg/logger"

	_ "modernc.org/sqlite"
)

// sqliteStore implements SeriesStore on SQLite via database/sql. It is the
// durable fallback backend: candles carry an expires_at deadline assigned on
// write, reads filter on it and writes reclaim expired rows for the touched
// series.
type sqliteStore struct {
	db        *sql.DB
	mu        sync.Mutex
	retention repo.RetentionTiers
	log       *applogger.Logger
	now       func() time.Time
}

// NewSQLiteStore opens (or creates) the database file and runs migrations.
func NewSQLiteStore(path string, retention repo.RetentionTiers, log *applogger.Logger) (repo.SeriesStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Single writer; the driver serializes, and WAL keeps readers unblocked.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &sqliteStore{db: db, retention: retention, log: log, now: time.Now}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *sqliteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS candles (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol         TEXT NOT NULL,
			interval       TEXT NOT NULL,
			open           REAL NOT NULL,
			high           REAL NOT NULL,
			low            REAL NOT NULL,
			close          REAL NOT NULL,
			volume         REAL NOT NULL,
			quote_volume   REAL NOT NULL DEFAULT 0,
			percent_change REAL NOT NULL DEFAULT 0,
			timestamp      INTEGER NOT NULL,
			expires_at     INTEGER NOT NULL,
			UNIQUE(symbol, interval, timestamp)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_candles_series ON candles(symbol, interval, timestamp)`,

		`CREATE TABLE IF NOT EXISTS news_records (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			news_id     TEXT UNIQUE NOT NULL,
			source      TEXT NOT NULL,
			timestamp   INTEGER NOT NULL,
			expires_at  INTEGER NOT NULL,
			record_json TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_news_ts ON news_records(timestamp)`,

		`CREATE TABLE IF NOT EXISTS news_categories (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			news_id  TEXT NOT NULL,
			category TEXT NOT NULL,
			UNIQUE(news_id, category)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_news_category ON news_categories(category)`,

		`CREATE TABLE IF NOT EXISTS news_assets (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			news_id TEXT NOT NULL,
			asset   TEXT NOT NULL,
			UNIQUE(news_id, asset)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_news_asset ON news_assets(asset)`,

		`CREATE TABLE IF NOT EXISTS analysis_snapshots (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			snapshot_id   TEXT UNIQUE NOT NULL,
			timestamp     INTEGER NOT NULL,
			expires_at    INTEGER NOT NULL,
			snapshot_json TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analysis_ts ON analysis_snapshots(timestamp)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

func (s *sqliteStore) PutCandle(ctx context.Context, c *models.Candle) error {
	if c == nil {
		return fmt.Errorf("candle is nil")
	}
	iv := repo.Interval(c.Interval)
	expires := s.now().Add(s.retention.MaxAge(iv)).Unix()

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO candles (symbol, interval, open, high, low, close, volume, quote_volume, percent_change, timestamp, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol, interval, timestamp) DO UPDATE SET
			open = excluded.open, high = excluded.high, low = excluded.low,
			close = excluded.close, volume = excluded.volume,
			quote_volume = excluded.quote_volume, percent_change = excluded.percent_change,
			expires_at = excluded.expires_at`,
		c.Symbol, c.Interval, c.Open, c.High, c.Low, c.Close, c.Volume, c.QuoteVolume, c.PercentChange, c.Timestamp, expires,
	)
	if err != nil {
		return fmt.Errorf("put candle %s/%s: %w", c.Symbol, c.Interval, err)
	}

	// Lazy reclaim for the series just written.
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM candles WHERE symbol = ? AND interval = ? AND expires_at <= ?`,
		c.Symbol, c.Interval, s.now().Unix(),
	); err != nil {
		s.log.Warn("candle reclaim failed",
			applogger.String("symbol", c.Symbol),
			applogger.String("interval", c.Interval),
			applogger.Error(err),
		)
	}
	return nil
}

func (s *sqliteStore) PutTick(ctx context.Context, t *models.Tick) error {
	if t == nil {
		return fmt.Errorf("tick is nil")
	}
	return s.PutCandle(ctx, t.Candle())
}

func (s *sqliteStore) GetCandles(ctx context.Context, symbol string, iv repo.Interval, limit int) ([]models.Candle, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, interval, open, high, low, close, volume, quote_volume, percent_change, timestamp
		FROM candles
		WHERE symbol = ? AND interval = ? AND expires_at > ?
		ORDER BY timestamp DESC
		LIMIT ?`,
		symbol, string(iv), s.now().Unix(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("get candles %s/%s: %w", symbol, iv, err)
	}
	defer rows.Close()

	tmp := make([]models.Candle, 0, limit)
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Symbol, &c.Interval, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume, &c.QuoteVolume, &c.PercentChange, &c.Timestamp); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		tmp = append(tmp, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	// reverse to ASC
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	return tmp, nil
}

func (s *sqliteStore) PutNews(ctx context.Context, source string, rec *models.NewsRecord) error {
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
	expires := s.now().Add(s.retention.MaxAge(repo.RetentionNews)).Unix()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO news_records (news_id, source, timestamp, expires_at, record_json)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(news_id) DO UPDATE SET
			source = excluded.source, timestamp = excluded.timestamp,
			expires_at = excluded.expires_at, record_json = excluded.record_json`,
		rec.ID, rec.Source, rec.Timestamp, expires, string(b),
	); err != nil {
		return fmt.Errorf("put news %s: %w", rec.ID, err)
	}

	// Secondary index rows follow the primary write and may fail
	// independently; filtered queries degrade, timeline reads do not.
	for _, cat := range rec.Categories {
		if _, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO news_categories (news_id, category) VALUES (?, ?)`,
			rec.ID, cat,
		); err != nil {
			s.log.Warn("news category index write failed",
				applogger.String("id", rec.ID),
				applogger.String("category", cat),
				applogger.Error(err),
			)
		}
	}
	for _, asset := range rec.RelatedAssets {
		if _, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO news_assets (news_id, asset) VALUES (?, ?)`,
			rec.ID, asset,
		); err != nil {
			s.log.Warn("news asset index write failed",
				applogger.String("id", rec.ID),
				applogger.String("asset", asset),
				applogger.Error(err),
			)
		}
	}
	return nil
}

func (s *sqliteStore) GetNews(ctx context.Context, limit int, f repo.NewsFilter) ([]models.NewsRecord, error) {
	if limit <= 0 {
		return nil, nil
	}

	q := `SELECT n.record_json FROM news_records n`
	args := []any{}
	switch {
	case f.Category != "":
		q += ` WHERE n.news_id IN (SELECT news_id FROM news_categories WHERE category = ?)`
		args = append(args, f.Category)
	case f.Asset != "":
		q += ` WHERE n.news_id IN (SELECT news_id FROM news_assets WHERE asset = ?)`
		args = append(args, f.Asset)
	default:
		q += ` WHERE 1=1`
	}
	q += ` AND n.expires_at > ? ORDER BY n.timestamp DESC LIMIT ?`
	args = append(args, s.now().Unix(), limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get news: %w", err)
	}
	defer rows.Close()

	out := make([]models.NewsRecord, 0, limit)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan news: %w", err)
		}
		var rec models.NewsRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			s.log.Warn("skipping unreadable news row", applogger.Error(err))
			continue
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *sqliteStore) PutAnalysisSnapshot(ctx context.Context, snap *models.AnalysisSnapshot) error {
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
	expires := s.now().Add(s.retention.MaxAge(repo.RetentionAnalysis)).Unix()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO analysis_snapshots (snapshot_id, timestamp, expires_at, snapshot_json)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(snapshot_id) DO UPDATE SET
			timestamp = excluded.timestamp, expires_at = excluded.expires_at,
			snapshot_json = excluded.snapshot_json`,
		snap.ID, snap.Timestamp, expires, string(b),
	); err != nil {
		return fmt.Errorf("put snapshot %s: %w", snap.ID, err)
	}
	return nil
}

func (s *sqliteStore) LatestAnalysisSnapshot(ctx context.Context) (*models.AnalysisSnapshot, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `
		SELECT snapshot_json FROM analysis_snapshots
		WHERE expires_at > ?
		ORDER BY timestamp DESC
		LIMIT 1`,
		s.now().Unix(),
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repo.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("latest snapshot: %w", err)
	}

	var snap models.AnalysisSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}

func (s *sqliteStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
